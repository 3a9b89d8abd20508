package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Activity is an append-only log entry attached to exactly one deal. Entries
// are never updated or deleted except via cascade with their deal.
type Activity struct {
	ID        uuid.UUID
	DealID    uuid.UUID
	Date      time.Time
	Note      string
	CreatedAt time.Time
}

// ListActivities returns a deal's activity log, newest first.
func (r *Repository) ListActivities(ctx context.Context, dealID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, deal_id, date, note, created_at
		FROM deal_activities
		WHERE deal_id = $1
		ORDER BY date DESC, created_at DESC
	`, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.DealID, &a.Date, &a.Note, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// CreateActivity appends a log entry to a deal.
func (r *Repository) CreateActivity(ctx context.Context, dealID uuid.UUID, date time.Time, note string) (Activity, error) {
	var a Activity
	err := r.pool.QueryRow(ctx, `
		INSERT INTO deal_activities (deal_id, date, note)
		VALUES ($1, $2, $3)
		RETURNING id, deal_id, date, note, created_at
	`, dealID, date, note).Scan(&a.ID, &a.DealID, &a.Date, &a.Note, &a.CreatedAt)
	return a, err
}
