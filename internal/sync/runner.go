package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealflow_backend/internal/clickup"
	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TaskFeed is the read-only external task collaborator.
type TaskFeed interface {
	ListTasks(ctx context.Context) ([]clickup.Task, error)
}

// Store is the slice of the deals repository the sync processes write through.
type Store interface {
	SlugRefs(ctx context.Context) ([]repository.SlugRef, error)
	GetBySlug(ctx context.Context, slug string) (repository.Deal, error)
	Create(ctx context.Context, params repository.CreateDealParams) (repository.Deal, error)
	CreateBatch(ctx context.Context, deals []repository.CreateDealParams) error
	SetStageArchived(ctx context.Context, id uuid.UUID, stage string, archived bool) error
	Reengage(ctx context.Context, id uuid.UUID, stage string, waitingOn, nextAction string) error
}

// Runner executes the batch sync processes against the live collaborators.
// Runs are expected to be non-concurrent; the runner never retries on its own.
type Runner struct {
	feed  TaskFeed
	store Store
	log   *logger.Logger
}

// NewRunner creates a sync runner.
func NewRunner(feed TaskFeed, store Store, log *logger.Logger) *Runner {
	return &Runner{feed: feed, store: store, log: log}
}

// fetch loads the task feed and the deal snapshot concurrently. A failure of
// either aborts the whole run.
func (r *Runner) fetch(ctx context.Context) ([]clickup.Task, []repository.SlugRef, error) {
	var (
		tasks []clickup.Task
		refs  []repository.SlugRef
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = r.feed.ListTasks(gctx)
		if err != nil {
			return fmt.Errorf("fetch task feed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		refs, err = r.store.SlugRefs(gctx)
		if err != nil {
			return fmt.Errorf("fetch deal snapshot: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return tasks, refs, nil
}

// ReconcileResult reports one reconciliation run.
type ReconcileResult struct {
	Plan     Plan
	DryRun   bool
	Inserted int
	Updated  int
	Failed   int
}

// Reconcile runs the reconciliation engine. In dry-run mode the plan is built
// and returned without any write. In live mode inserts go out as one batch
// (a failure aborts only the insert phase) and updates go out row by row
// (each failure is logged and aborts only that row).
func (r *Runner) Reconcile(ctx context.Context, dryRun bool) (ReconcileResult, error) {
	tasks, refs, err := r.fetch(ctx)
	if err != nil {
		return ReconcileResult{}, err
	}
	r.log.Info("fetched sync inputs", "tasks", len(tasks), "existing_deals", len(refs))

	plan := BuildPlan(tasks, refs)
	result := ReconcileResult{Plan: plan, DryRun: dryRun}
	if dryRun {
		return result, nil
	}

	if len(plan.Inserts) > 0 {
		if err := r.store.CreateBatch(ctx, plan.Inserts); err != nil {
			r.log.Error("insert batch failed", "count", len(plan.Inserts), "error", err)
			result.Failed += len(plan.Inserts)
		} else {
			result.Inserted = len(plan.Inserts)
		}
	}

	for _, update := range plan.Updates {
		if err := r.store.SetStageArchived(ctx, update.ID, update.Stage, update.Archived); err != nil {
			r.log.Error("update failed", "brand", update.Brand, "deal_id", update.ID, "error", err)
			result.Failed++
			continue
		}
		result.Updated++
	}

	r.log.SyncRun("reconcile", result.Inserted, result.Updated, result.Failed)
	return result, nil
}

// ReengageResult reports one re-engagement run.
type ReengageResult struct {
	Classification Classification
	DryRun         bool
	Created        int
	Updated        int
	Failed         int
}

// Reengage runs the re-engagement classifier. Classification is computed in
// full before any write. For each eligible candidate the target row is
// resolved in order: an inactive deal under the base slug is revived in
// place; else an existing reengagement row is revived; else a new row is
// inserted. Re-running with unchanged input therefore produces updates, never
// duplicates.
func (r *Runner) Reengage(ctx context.Context, dryRun bool, now time.Time) (ReengageResult, error) {
	tasks, refs, err := r.fetch(ctx)
	if err != nil {
		return ReengageResult{}, err
	}

	classification := Classify(tasks, refs, now)
	result := ReengageResult{Classification: classification, DryRun: dryRun}
	if dryRun {
		return result, nil
	}

	baseBySlug := make(map[string]repository.SlugRef, len(refs))
	for _, ref := range refs {
		baseBySlug[ref.Slug] = ref
	}

	for _, candidate := range classification.Eligible() {
		nextAction := nextActionForStage(candidate.Stage)

		if ref, ok := baseBySlug[candidate.Slug]; ok {
			if err := r.store.Reengage(ctx, ref.ID, candidate.Stage, domain.WaitingOnUs, nextAction); err != nil {
				r.log.Error("reengage update failed", "brand", candidate.Task.Name, "deal_id", ref.ID, "error", err)
				result.Failed++
				continue
			}
			result.Updated++
			continue
		}

		reengSlug := candidate.Slug + ReengagementSlugSuffix
		existing, err := r.store.GetBySlug(ctx, reengSlug)
		switch {
		case err == nil:
			if err := r.store.Reengage(ctx, existing.ID, candidate.Stage, domain.WaitingOnUs, nextAction); err != nil {
				r.log.Error("reengage update failed", "brand", candidate.Task.Name, "deal_id", existing.ID, "error", err)
				result.Failed++
				continue
			}
			result.Updated++
		case errors.Is(err, repository.ErrNotFound):
			if _, err := r.store.Create(ctx, reengagementDeal(candidate)); err != nil {
				r.log.Error("reengage insert failed", "brand", candidate.Task.Name, "error", err)
				result.Failed++
				continue
			}
			result.Created++
		default:
			r.log.Error("reengage lookup failed", "slug", reengSlug, "error", err)
			result.Failed++
		}
	}

	r.log.SyncRun("reengage", result.Created, result.Updated, result.Failed)
	return result, nil
}
