// Package service implements the deal management use cases behind the HTTP
// API: CRUD, board moves, archival, activity logging and pipeline metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/internal/deals/transport"
	"dealflow_backend/platform/apperr"
	"dealflow_backend/platform/logger"
	"dealflow_backend/platform/phone"

	"github.com/google/uuid"
)

// Repo is the persistence surface the service depends on.
type Repo interface {
	List(ctx context.Context, includeArchived bool) ([]repository.Deal, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Deal, error)
	GetBySlug(ctx context.Context, slug string) (repository.Deal, error)
	Create(ctx context.Context, params repository.CreateDealParams) (repository.Deal, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateDealParams) (repository.Deal, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	ListActivities(ctx context.Context, dealID uuid.UUID) ([]repository.Activity, error)
	CreateActivity(ctx context.Context, dealID uuid.UUID, date time.Time, note string) (repository.Activity, error)
}

// Service implements deal management.
type Service struct {
	repo Repo
	log  *logger.Logger
}

// New creates a deals service.
func New(repo Repo, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns deals, newest-touched first. Archived rows are excluded unless
// requested; a non-empty query keeps only deals whose brand, contact name or
// contact email contains it case-insensitively.
func (s *Service) List(ctx context.Context, includeArchived bool, query string) ([]repository.Deal, error) {
	deals, err := s.repo.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return deals, nil
	}

	filtered := make([]repository.Deal, 0, len(deals))
	for _, d := range deals {
		if matchesQuery(d, query) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

func matchesQuery(d repository.Deal, query string) bool {
	if strings.Contains(strings.ToLower(d.Brand), query) {
		return true
	}
	if d.ContactName != nil && strings.Contains(strings.ToLower(*d.ContactName), query) {
		return true
	}
	if d.ContactEmail != nil && strings.Contains(strings.ToLower(*d.ContactEmail), query) {
		return true
	}
	return false
}

// Get fetches a single deal.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Deal, error) {
	deal, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Deal{}, apperr.NotFound("deal not found")
	}
	return deal, err
}

// freeSlug derives a slug for brand and probes numeric suffixes until one is
// unused, keeping slugs unique across interactive creation too.
func (s *Service) freeSlug(ctx context.Context, brand string) (string, error) {
	base := domain.Slugify(brand)
	if base == "" {
		return "", apperr.Validation("brand must contain at least one letter or digit")
	}

	slug := base
	for i := 2; ; i++ {
		_, err := s.repo.GetBySlug(ctx, slug)
		if errors.Is(err, repository.ErrNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", slug, err)
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Create inserts a new deal from an interactive form submission.
func (s *Service) Create(ctx context.Context, req transport.CreateDealRequest) (repository.Deal, error) {
	slug, err := s.freeSlug(ctx, req.Brand)
	if err != nil {
		return repository.Deal{}, err
	}

	params := repository.CreateDealParams{
		Brand:          req.Brand,
		Slug:           slug,
		Stage:          domain.StagePitch,
		Priority:       domain.PriorityMedium,
		Value:          req.Value,
		ContactName:    req.ContactName,
		ContactEmail:   req.ContactEmail,
		ContactSource:  req.ContactSource,
		LastContact:    req.LastContact,
		NextAction:     req.NextAction,
		NextActionDate: req.NextActionDate,
		WaitingOn:      req.WaitingOn,
		Notes:          req.Notes,
	}
	if req.Stage != nil {
		params.Stage = *req.Stage
	}
	if req.Priority != nil {
		params.Priority = *req.Priority
	}
	if req.ContactPhone != nil {
		normalized := phone.NormalizeE164(*req.ContactPhone)
		params.ContactPhone = &normalized
	}

	deal, err := s.repo.Create(ctx, params)
	if err != nil {
		return repository.Deal{}, fmt.Errorf("create deal: %w", err)
	}

	s.log.Info("deal created", "deal_id", deal.ID, "brand", deal.Brand, "slug", deal.Slug)
	return deal, nil
}

// Update patches a deal with the submitted fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateDealRequest) (repository.Deal, error) {
	params := repository.UpdateDealParams{
		Brand:          req.Brand,
		Stage:          req.Stage,
		Priority:       req.Priority,
		Value:          req.Value,
		ContactName:    req.ContactName,
		ContactEmail:   req.ContactEmail,
		ContactSource:  req.ContactSource,
		LastContact:    req.LastContact,
		NextAction:     req.NextAction,
		NextActionDate: req.NextActionDate,
		WaitingOn:      req.WaitingOn,
		FollowUpCount:  req.FollowUpCount,
		Notes:          req.Notes,
		Archived:       req.Archived,
	}
	if req.ContactPhone != nil {
		normalized := phone.NormalizeE164(*req.ContactPhone)
		params.ContactPhone = &normalized
	}

	deal, err := s.repo.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Deal{}, apperr.NotFound("deal not found")
	}
	return deal, err
}

// Move puts a deal in another pipeline stage and logs the move. The
// destination is either an explicit stage or another deal whose stage is
// adopted. Moving a deal to its current stage is a no-op.
func (s *Service) Move(ctx context.Context, id uuid.UUID, req transport.MoveDealRequest) (repository.Deal, error) {
	deal, err := s.Get(ctx, id)
	if err != nil {
		return repository.Deal{}, err
	}

	var stage string
	switch {
	case req.TargetDealID != nil:
		target, err := s.Get(ctx, *req.TargetDealID)
		if err != nil {
			return repository.Deal{}, apperr.NotFound("target deal not found")
		}
		stage = target.Stage
	case req.Stage != nil:
		stage = *req.Stage
	default:
		return repository.Deal{}, apperr.Validation("either stage or targetDealId is required")
	}

	if !domain.IsKnownStage(stage) {
		return repository.Deal{}, apperr.Validation(fmt.Sprintf("unknown stage %q", stage))
	}
	if deal.Stage == stage {
		return deal, nil
	}

	updated, err := s.repo.Update(ctx, id, repository.UpdateDealParams{Stage: &stage})
	if err != nil {
		return repository.Deal{}, fmt.Errorf("move deal: %w", err)
	}

	if _, err := s.repo.CreateActivity(ctx, id, time.Now(), "Moved to "+stage); err != nil {
		s.log.Error("move activity write failed", "deal_id", id, "error", err)
	}
	return updated, nil
}

// SetArchived flips the archived flag. The row stays in the store.
func (s *Service) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	err := s.repo.SetArchived(ctx, id, archived)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("deal not found")
	}
	return err
}

// Activities returns a deal's activity log, newest first.
func (s *Service) Activities(ctx context.Context, dealID uuid.UUID) ([]repository.Activity, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return nil, err
	}
	return s.repo.ListActivities(ctx, dealID)
}

// AddActivity appends a manual log entry. A missing date defaults to now.
func (s *Service) AddActivity(ctx context.Context, dealID uuid.UUID, req transport.AddActivityRequest) (repository.Activity, error) {
	if _, err := s.Get(ctx, dealID); err != nil {
		return repository.Activity{}, err
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	return s.repo.CreateActivity(ctx, dealID, date, req.Note)
}

// Metrics aggregates the pipeline for the dashboard. Pipeline value counts
// active (non-archived, engaged) deals only; unparseable value strings
// contribute zero.
func (s *Service) Metrics(ctx context.Context, now time.Time) (transport.MetricsResponse, error) {
	deals, err := s.repo.List(ctx, true)
	if err != nil {
		return transport.MetricsResponse{}, err
	}

	metrics := transport.MetricsResponse{ByStage: make(map[string]int)}
	today := now.Truncate(24 * time.Hour)

	for _, d := range deals {
		metrics.ByStage[d.Stage]++

		if d.Archived {
			metrics.TotalArchived++
			continue
		}
		metrics.TotalActive++

		if domain.IsEngaged(d.Stage) {
			metrics.PipelineValue += domain.AmountFromValue(d.Value)
		}
		if d.WaitingOn != nil {
			switch *d.WaitingOn {
			case domain.WaitingOnBrand:
				metrics.WaitingOnBrand++
			case domain.WaitingOnUs:
				metrics.WaitingOnUs++
			}
		}
		if d.NextActionDate != nil && d.NextActionDate.Before(today) {
			metrics.OverdueActions++
		}
	}

	return metrics, nil
}
