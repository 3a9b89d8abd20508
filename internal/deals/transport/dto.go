// Package transport defines the request and response DTOs for the deals API.
package transport

import (
	"time"

	"dealflow_backend/internal/deals/repository"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDealRequest struct {
	Brand          string     `json:"brand" validate:"required,min=1,max=200"`
	Stage          *string    `json:"stage,omitempty" validate:"omitempty,oneof=pitch outreach negotiation agreed contract content approval scheduled delivered invoiced paid complete paused"`
	Priority       *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Value          *string    `json:"value,omitempty" validate:"omitempty,max=100"`
	ContactName    *string    `json:"contactName,omitempty" validate:"omitempty,max=200"`
	ContactEmail   *string    `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone   *string    `json:"contactPhone,omitempty" validate:"omitempty,min=5,max=30"`
	ContactSource  *string    `json:"contactSource,omitempty" validate:"omitempty,max=100"`
	LastContact    *time.Time `json:"lastContact,omitempty"`
	NextAction     *string    `json:"nextAction,omitempty" validate:"omitempty,max=500"`
	NextActionDate *time.Time `json:"nextActionDate,omitempty"`
	WaitingOn      *string    `json:"waitingOn,omitempty" validate:"omitempty,oneof=brand us"`
	Notes          *string    `json:"notes,omitempty"`
}

type UpdateDealRequest struct {
	Brand          *string    `json:"brand,omitempty" validate:"omitempty,min=1,max=200"`
	Stage          *string    `json:"stage,omitempty" validate:"omitempty,oneof=pitch outreach negotiation agreed contract content approval scheduled delivered invoiced paid complete paused"`
	Priority       *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Value          *string    `json:"value,omitempty" validate:"omitempty,max=100"`
	ContactName    *string    `json:"contactName,omitempty" validate:"omitempty,max=200"`
	ContactEmail   *string    `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone   *string    `json:"contactPhone,omitempty" validate:"omitempty,min=5,max=30"`
	ContactSource  *string    `json:"contactSource,omitempty" validate:"omitempty,max=100"`
	LastContact    *time.Time `json:"lastContact,omitempty"`
	NextAction     *string    `json:"nextAction,omitempty" validate:"omitempty,max=500"`
	NextActionDate *time.Time `json:"nextActionDate,omitempty"`
	WaitingOn      *string    `json:"waitingOn,omitempty" validate:"omitempty,oneof=brand us"`
	FollowUpCount  *int       `json:"followUpCount,omitempty" validate:"omitempty,min=0"`
	Notes          *string    `json:"notes,omitempty"`
	Archived       *bool      `json:"archived,omitempty"`
}

// MoveDealRequest moves a deal to another column. Exactly one of stage or
// targetDealId must be set; a target deal resolves to that deal's stage.
type MoveDealRequest struct {
	Stage        *string    `json:"stage,omitempty" validate:"omitempty,oneof=pitch outreach negotiation agreed contract content approval scheduled delivered invoiced paid complete paused"`
	TargetDealID *uuid.UUID `json:"targetDealId,omitempty"`
}

type ArchiveDealRequest struct {
	Archived bool `json:"archived"`
}

type AddActivityRequest struct {
	Date *time.Time `json:"date,omitempty"`
	Note string     `json:"note" validate:"required,min=1,max=2000"`
}

// Response DTOs

type DealResponse struct {
	ID             uuid.UUID  `json:"id"`
	Brand          string     `json:"brand"`
	Slug           string     `json:"slug"`
	Stage          string     `json:"stage"`
	Priority       string     `json:"priority"`
	Value          *string    `json:"value,omitempty"`
	ContactName    *string    `json:"contactName,omitempty"`
	ContactEmail   *string    `json:"contactEmail,omitempty"`
	ContactPhone   *string    `json:"contactPhone,omitempty"`
	ContactSource  *string    `json:"contactSource,omitempty"`
	LastContact    *time.Time `json:"lastContact,omitempty"`
	NextAction     *string    `json:"nextAction,omitempty"`
	NextActionDate *time.Time `json:"nextActionDate,omitempty"`
	WaitingOn      *string    `json:"waitingOn,omitempty"`
	FollowUpCount  int        `json:"followUpCount"`
	Notes          *string    `json:"notes,omitempty"`
	Archived       bool       `json:"archived"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// FromDeal maps a stored row to its API representation.
func FromDeal(d repository.Deal) DealResponse {
	return DealResponse{
		ID:             d.ID,
		Brand:          d.Brand,
		Slug:           d.Slug,
		Stage:          d.Stage,
		Priority:       d.Priority,
		Value:          d.Value,
		ContactName:    d.ContactName,
		ContactEmail:   d.ContactEmail,
		ContactPhone:   d.ContactPhone,
		ContactSource:  d.ContactSource,
		LastContact:    d.LastContact,
		NextAction:     d.NextAction,
		NextActionDate: d.NextActionDate,
		WaitingOn:      d.WaitingOn,
		FollowUpCount:  d.FollowUpCount,
		Notes:          d.Notes,
		Archived:       d.Archived,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// FromDeals maps a list of stored rows.
func FromDeals(deals []repository.Deal) []DealResponse {
	out := make([]DealResponse, 0, len(deals))
	for _, d := range deals {
		out = append(out, FromDeal(d))
	}
	return out
}

type ActivityResponse struct {
	ID        uuid.UUID `json:"id"`
	DealID    uuid.UUID `json:"dealId"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromActivity maps a stored activity row.
func FromActivity(a repository.Activity) ActivityResponse {
	return ActivityResponse{ID: a.ID, DealID: a.DealID, Date: a.Date, Note: a.Note, CreatedAt: a.CreatedAt}
}

// FromActivities maps a deal's activity log.
func FromActivities(activities []repository.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, FromActivity(a))
	}
	return out
}

// MetricsResponse summarizes the pipeline for the dashboard.
type MetricsResponse struct {
	TotalActive    int            `json:"totalActive"`
	TotalArchived  int            `json:"totalArchived"`
	PipelineValue  int            `json:"pipelineValue"`
	ByStage        map[string]int `json:"byStage"`
	WaitingOnBrand int            `json:"waitingOnBrand"`
	WaitingOnUs    int            `json:"waitingOnUs"`
	OverdueActions int            `json:"overdueActions"`
}
