// Package repository provides Postgres persistence for deals and their
// activity log.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a deal does not exist.
var ErrNotFound = errors.New("deal not found")

// Repository persists deals and deal activities.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new deals repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Deal is a brand-partnership row.
type Deal struct {
	ID             uuid.UUID
	Brand          string
	Slug           string
	Stage          string
	Priority       string
	Value          *string
	ContactName    *string
	ContactEmail   *string
	ContactPhone   *string
	ContactSource  *string
	LastContact    *time.Time
	NextAction     *string
	NextActionDate *time.Time
	WaitingOn      *string
	FollowUpCount  int
	Notes          *string
	Archived       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SlugRef is the minimal deal snapshot the sync processes key on.
type SlugRef struct {
	ID    uuid.UUID
	Slug  string
	Stage string
}

const dealColumns = `id, brand, slug, stage, priority, value,
	contact_name, contact_email, contact_phone, contact_source,
	last_contact, next_action, next_action_date, waiting_on,
	follow_up_count, notes, archived, created_at, updated_at`

func scanDeal(row pgx.Row) (Deal, error) {
	var d Deal
	err := row.Scan(
		&d.ID, &d.Brand, &d.Slug, &d.Stage, &d.Priority, &d.Value,
		&d.ContactName, &d.ContactEmail, &d.ContactPhone, &d.ContactSource,
		&d.LastContact, &d.NextAction, &d.NextActionDate, &d.WaitingOn,
		&d.FollowUpCount, &d.Notes, &d.Archived, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// List returns all deals, most recently touched first. Archived deals are
// included only when includeArchived is set.
func (r *Repository) List(ctx context.Context, includeArchived bool) ([]Deal, error) {
	query := fmt.Sprintf(`SELECT %s FROM deals`, dealColumns)
	if !includeArchived {
		query += ` WHERE archived = false`
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]Deal, 0)
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}

	return deals, rows.Err()
}

// GetByID fetches a single deal.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Deal, error) {
	query := fmt.Sprintf(`SELECT %s FROM deals WHERE id = $1`, dealColumns)
	d, err := scanDeal(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	return d, err
}

// GetBySlug fetches a single deal by its slug. Slugs are unique, so a lookup
// returns zero or one row.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Deal, error) {
	query := fmt.Sprintf(`SELECT %s FROM deals WHERE slug = $1`, dealColumns)
	d, err := scanDeal(r.pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	return d, err
}

// SlugRefs returns the (slug, id, stage) snapshot of every deal, the input
// the reconciliation and re-engagement processes partition against.
func (r *Repository) SlugRefs(ctx context.Context) ([]SlugRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, stage FROM deals`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]SlugRef, 0)
	for rows.Next() {
		var ref SlugRef
		if err := rows.Scan(&ref.ID, &ref.Slug, &ref.Stage); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// CreateDealParams holds the caller-supplied fields for a new deal.
type CreateDealParams struct {
	Brand          string
	Slug           string
	Stage          string
	Priority       string
	Value          *string
	ContactName    *string
	ContactEmail   *string
	ContactPhone   *string
	ContactSource  *string
	LastContact    *time.Time
	NextAction     *string
	NextActionDate *time.Time
	WaitingOn      *string
	FollowUpCount  int
	Notes          *string
	Archived       bool
}

// Create inserts a single deal and returns the stored row.
func (r *Repository) Create(ctx context.Context, params CreateDealParams) (Deal, error) {
	query := fmt.Sprintf(`
		INSERT INTO deals (
			brand, slug, stage, priority, value,
			contact_name, contact_email, contact_phone, contact_source,
			last_contact, next_action, next_action_date, waiting_on,
			follow_up_count, notes, archived
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING %s`, dealColumns)

	return scanDeal(r.pool.QueryRow(ctx, query,
		params.Brand, params.Slug, params.Stage, params.Priority, params.Value,
		params.ContactName, params.ContactEmail, params.ContactPhone, params.ContactSource,
		params.LastContact, params.NextAction, params.NextActionDate, params.WaitingOn,
		params.FollowUpCount, params.Notes, params.Archived,
	))
}

// CreateBatch inserts many deals in a single transaction. The whole batch
// succeeds or fails as one write.
func (r *Repository) CreateBatch(ctx context.Context, deals []CreateDealParams) error {
	if len(deals) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, params := range deals {
		batch.Queue(`
			INSERT INTO deals (
				brand, slug, stage, priority, value,
				contact_name, contact_email, contact_phone, contact_source,
				last_contact, next_action, next_action_date, waiting_on,
				follow_up_count, notes, archived
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			params.Brand, params.Slug, params.Stage, params.Priority, params.Value,
			params.ContactName, params.ContactEmail, params.ContactPhone, params.ContactSource,
			params.LastContact, params.NextAction, params.NextActionDate, params.WaitingOn,
			params.FollowUpCount, params.Notes, params.Archived,
		)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for range deals {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateDealParams holds a partial update; nil fields are left untouched.
type UpdateDealParams struct {
	Brand          *string
	Stage          *string
	Priority       *string
	Value          *string
	ContactName    *string
	ContactEmail   *string
	ContactPhone   *string
	ContactSource  *string
	LastContact    *time.Time
	NextAction     *string
	NextActionDate *time.Time
	WaitingOn      *string
	FollowUpCount  *int
	Notes          *string
	Archived       *bool
}

// Update applies a partial update to a deal and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateDealParams) (Deal, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{id}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Brand != nil {
		addSet("brand", *params.Brand)
	}
	if params.Stage != nil {
		addSet("stage", *params.Stage)
	}
	if params.Priority != nil {
		addSet("priority", *params.Priority)
	}
	if params.Value != nil {
		addSet("value", *params.Value)
	}
	if params.ContactName != nil {
		addSet("contact_name", *params.ContactName)
	}
	if params.ContactEmail != nil {
		addSet("contact_email", *params.ContactEmail)
	}
	if params.ContactPhone != nil {
		addSet("contact_phone", *params.ContactPhone)
	}
	if params.ContactSource != nil {
		addSet("contact_source", *params.ContactSource)
	}
	if params.LastContact != nil {
		addSet("last_contact", *params.LastContact)
	}
	if params.NextAction != nil {
		addSet("next_action", *params.NextAction)
	}
	if params.NextActionDate != nil {
		addSet("next_action_date", *params.NextActionDate)
	}
	if params.WaitingOn != nil {
		addSet("waiting_on", *params.WaitingOn)
	}
	if params.FollowUpCount != nil {
		addSet("follow_up_count", *params.FollowUpCount)
	}
	if params.Notes != nil {
		addSet("notes", *params.Notes)
	}
	if params.Archived != nil {
		addSet("archived", *params.Archived)
	}

	query := fmt.Sprintf(`UPDATE deals SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), dealColumns)

	d, err := scanDeal(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	return d, err
}

// SetStageArchived updates only the sync-owned fields of an existing deal.
// Manually curated fields are never touched by this path.
func (r *Repository) SetStageArchived(ctx context.Context, id uuid.UUID, stage string, archived bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deals SET stage = $2, archived = $3, updated_at = now()
		WHERE id = $1
	`, id, stage, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reengage updates the re-engagement-owned fields of an existing deal,
// pulling it back onto the active board.
func (r *Repository) Reengage(ctx context.Context, id uuid.UUID, stage string, waitingOn, nextAction string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deals
		SET stage = $2, waiting_on = $3, next_action = $4, archived = false, updated_at = now()
		WHERE id = $1
	`, id, stage, waitingOn, nextAction)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetArchived flips the archived flag without removing the row.
func (r *Repository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deals SET archived = $2, updated_at = now()
		WHERE id = $1
	`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
