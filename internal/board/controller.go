// Package board keeps an in-memory projection of the deal collection
// consistent with the persisted store under interactive mutation. Mutations
// are applied optimistically and rolled back by refetching the full
// collection when the store rejects the write.
package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/platform/apperr"
	"dealflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the slice of the deals repository the board writes through.
type Store interface {
	List(ctx context.Context, includeArchived bool) ([]repository.Deal, error)
	Create(ctx context.Context, params repository.CreateDealParams) (repository.Deal, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateDealParams) (repository.Deal, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	CreateActivity(ctx context.Context, dealID uuid.UUID, date time.Time, note string) (repository.Activity, error)
}

// DropTarget identifies where a dragged card was released: either a column
// (stage) or another card (deal id).
type DropTarget struct {
	Stage  string
	DealID *uuid.UUID
}

// OnColumn targets a stage column directly.
func OnColumn(stage string) DropTarget {
	return DropTarget{Stage: stage}
}

// OnCard targets another card; the move resolves to that card's stage.
func OnCard(id uuid.UUID) DropTarget {
	return DropTarget{DealID: &id}
}

// Controller is the board state controller. All methods are safe for
// concurrent use; the in-memory list always holds the full collection,
// archived rows included, and display filtering is applied on read.
type Controller struct {
	mu    sync.RWMutex
	store Store
	log   *logger.Logger

	deals []repository.Deal

	showArchived bool
	search       string
}

// New creates a board controller. Call Load before reading state.
func New(store Store, log *logger.Logger) *Controller {
	return &Controller{store: store, log: log}
}

// Load replaces the in-memory projection with a fresh snapshot from the
// store. Also used internally to discard optimistic state after a failed
// write.
func (c *Controller) Load(ctx context.Context) error {
	deals, err := c.store.List(ctx, true)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	c.mu.Lock()
	c.deals = deals
	c.mu.Unlock()
	return nil
}

// SetShowArchived toggles whether archived deals appear in Visible output.
func (c *Controller) SetShowArchived(show bool) {
	c.mu.Lock()
	c.showArchived = show
	c.mu.Unlock()
}

// SetSearch sets the free-text display filter. Empty clears it.
func (c *Controller) SetSearch(query string) {
	c.mu.Lock()
	c.search = strings.ToLower(strings.TrimSpace(query))
	c.mu.Unlock()
}

func matchesSearch(d repository.Deal, query string) bool {
	if query == "" {
		return true
	}
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

// Visible returns the deals that pass the current display filters.
func (c *Controller) Visible() []repository.Deal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]repository.Deal, 0, len(c.deals))
	for _, d := range c.deals {
		if d.Archived && !c.showArchived {
			continue
		}
		if !matchesSearch(d, c.search) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Columns groups the visible deals by stage, in pipeline order.
func (c *Controller) Columns() map[string][]repository.Deal {
	columns := make(map[string][]repository.Deal, len(domain.Stages))
	for _, stage := range domain.Stages {
		columns[stage] = nil
	}
	for _, d := range c.Visible() {
		columns[d.Stage] = append(columns[d.Stage], d)
	}
	return columns
}

// Get returns the in-memory copy of a deal.
func (c *Controller) Get(id uuid.UUID) (repository.Deal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.deals {
		if d.ID == id {
			return d, true
		}
	}
	return repository.Deal{}, false
}

func (c *Controller) indexOf(id uuid.UUID) int {
	for i, d := range c.deals {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// resolveStage turns a drop target into the destination stage.
func (c *Controller) resolveStage(target DropTarget) (string, error) {
	if target.DealID != nil {
		under, ok := c.Get(*target.DealID)
		if !ok {
			return "", apperr.NotFound("drop target card not found")
		}
		return under.Stage, nil
	}
	if !domain.IsKnownStage(target.Stage) {
		return "", apperr.Validation(fmt.Sprintf("unknown stage %q", target.Stage))
	}
	return target.Stage, nil
}

// Move applies a drag move. The stage change lands in memory first; if the
// store rejects it the full collection is refetched instead of attempting a
// fine-grained rollback. A successful move appends a "Moved to {stage}"
// activity dated at the moment of the move. Dropping a card on its own stage
// is a no-op: no write, no activity.
func (c *Controller) Move(ctx context.Context, id uuid.UUID, target DropTarget) error {
	stage, err := c.resolveStage(target)
	if err != nil {
		return err
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return apperr.NotFound("deal not found")
	}
	if c.deals[i].Stage == stage {
		c.mu.Unlock()
		return nil
	}
	c.deals[i].Stage = stage
	c.deals[i].UpdatedAt = time.Now()
	c.mu.Unlock()

	if _, err := c.store.Update(ctx, id, repository.UpdateDealParams{Stage: &stage}); err != nil {
		c.log.Error("move rejected by store", "deal_id", id, "stage", stage, "error", err)
		if loadErr := c.Load(ctx); loadErr != nil {
			c.log.Error("board refetch after failed move also failed", "error", loadErr)
		}
		return fmt.Errorf("move deal: %w", err)
	}

	now := time.Now()
	if _, err := c.store.CreateActivity(ctx, id, now, "Moved to "+stage); err != nil {
		// The move itself stuck; a lost log line is not worth reverting it.
		c.log.Error("move activity write failed", "deal_id", id, "error", err)
	}
	return nil
}

// Save persists a form submission. A new record is inserted and prepended to
// the in-memory list; an existing record is patched with the submitted fields
// merged over its prior state.
func (c *Controller) Save(ctx context.Context, id *uuid.UUID, params repository.UpdateDealParams) (repository.Deal, error) {
	if id == nil {
		return c.create(ctx, params)
	}
	return c.patch(ctx, *id, params)
}

func (c *Controller) create(ctx context.Context, params repository.UpdateDealParams) (repository.Deal, error) {
	if params.Brand == nil || strings.TrimSpace(*params.Brand) == "" {
		return repository.Deal{}, apperr.Validation("brand is required")
	}

	slug := domain.Slugify(*params.Brand)
	if slug == "" {
		return repository.Deal{}, apperr.Validation("brand must contain at least one letter or digit")
	}

	create := repository.CreateDealParams{
		Brand:          *params.Brand,
		Slug:           slug,
		Stage:          domain.StagePitch,
		Priority:       domain.PriorityMedium,
		Value:          params.Value,
		ContactName:    params.ContactName,
		ContactEmail:   params.ContactEmail,
		ContactPhone:   params.ContactPhone,
		ContactSource:  params.ContactSource,
		LastContact:    params.LastContact,
		NextAction:     params.NextAction,
		NextActionDate: params.NextActionDate,
		WaitingOn:      params.WaitingOn,
		Notes:          params.Notes,
	}
	if params.Stage != nil {
		create.Stage = *params.Stage
	}
	if params.Priority != nil {
		create.Priority = *params.Priority
	}

	deal, err := c.store.Create(ctx, create)
	if err != nil {
		return repository.Deal{}, fmt.Errorf("create deal: %w", err)
	}

	c.mu.Lock()
	c.deals = append([]repository.Deal{deal}, c.deals...)
	c.mu.Unlock()
	return deal, nil
}

func (c *Controller) patch(ctx context.Context, id uuid.UUID, params repository.UpdateDealParams) (repository.Deal, error) {
	deal, err := c.store.Update(ctx, id, params)
	if err != nil {
		return repository.Deal{}, fmt.Errorf("update deal: %w", err)
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.deals[i] = deal
	}
	c.mu.Unlock()
	return deal, nil
}

// Archive flags a deal archived. The record stays in the in-memory list;
// whether it still displays depends on the archived toggle.
func (c *Controller) Archive(ctx context.Context, id uuid.UUID) error {
	if err := c.store.SetArchived(ctx, id, true); err != nil {
		return fmt.Errorf("archive deal: %w", err)
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.deals[i].Archived = true
		c.deals[i].UpdatedAt = time.Now()
	}
	c.mu.Unlock()
	return nil
}
