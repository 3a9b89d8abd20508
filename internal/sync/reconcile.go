package sync

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"dealflow_backend/internal/clickup"
	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"

	"github.com/google/uuid"
)

// ContactSourceImport tags deals manufactured from the task feed.
const ContactSourceImport = "ClickUp Import"

// maxSyncedNoteLength caps the task description carried into a deal's notes,
// counted in runes so the cut never splits a multibyte character.
const maxSyncedNoteLength = 500

// StageUpdate is an update action for a deal whose slug matched an existing
// row. Only the sync-owned fields are carried; manually curated fields
// (contacts, notes, priority) are never overwritten by sync.
type StageUpdate struct {
	ID       uuid.UUID
	Brand    string
	Stage    string
	Archived bool
}

// Plan is the pure output of the reconciliation engine: what to insert, what
// to update, and a per-stage count of the full task set for reporting.
type Plan struct {
	Inserts     []repository.CreateDealParams
	Updates     []StageUpdate
	StageCounts map[string]int
	// ExcludedReminders counts tasks dropped because their name marks them as
	// checklist reminders rather than deals.
	ExcludedReminders int
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// isReminderTask reports whether a task name marks a sub-task reminder
// ("Response Received?") rather than a deal.
func isReminderTask(name string) bool {
	return strings.Contains(name, "?")
}

// candidateFromTask builds the deal a task would become. Pure.
func candidateFromTask(task clickup.Task) repository.CreateDealParams {
	stage := StageForStatus(task.Status.Status)

	var lastContact *time.Time
	if ts, ok := task.UpdatedAt(); ok {
		day := ts.Truncate(24 * time.Hour)
		lastContact = &day
	}

	var nextActionDate *time.Time
	if ts, ok := task.DueAt(); ok {
		day := ts.Truncate(24 * time.Hour)
		nextActionDate = &day
	}

	var notes *string
	if task.Description != "" {
		trimmed := truncateRunes(task.Description, maxSyncedNoteLength)
		notes = &trimmed
	}

	source := ContactSourceImport
	return repository.CreateDealParams{
		Brand:          task.Name,
		Slug:           domain.Slugify(task.Name),
		Stage:          stage,
		Priority:       domain.PriorityMedium,
		Value:          task.Rate(),
		ContactSource:  &source,
		LastContact:    lastContact,
		NextActionDate: nextActionDate,
		WaitingOn:      domain.WaitingOnForStage(stage),
		Notes:          notes,
		Archived:       domain.ArchiveOnSync(stage),
	}
}

// BuildPlan partitions fetched tasks against the existing deal snapshot.
//
// Reminder tasks are excluded before partitioning but still counted in the
// per-stage summary, which covers the full fetched set. A candidate whose
// slug matches a stored deal becomes an update of that row; a slug colliding
// only within this batch is disambiguated with a numeric suffix, probing
// upward until free.
func BuildPlan(tasks []clickup.Task, existing []repository.SlugRef) Plan {
	plan := Plan{
		Inserts:     make([]repository.CreateDealParams, 0),
		Updates:     make([]StageUpdate, 0),
		StageCounts: make(map[string]int),
	}

	existingBySlug := make(map[string]repository.SlugRef, len(existing))
	usedSlugs := make(map[string]struct{}, len(existing))
	for _, ref := range existing {
		existingBySlug[ref.Slug] = ref
		usedSlugs[ref.Slug] = struct{}{}
	}

	for _, task := range tasks {
		plan.StageCounts[StageForStatus(task.Status.Status)]++

		if isReminderTask(task.Name) {
			plan.ExcludedReminders++
			continue
		}

		candidate := candidateFromTask(task)
		if candidate.Slug == "" {
			continue
		}

		if ref, ok := existingBySlug[candidate.Slug]; ok {
			plan.Updates = append(plan.Updates, StageUpdate{
				ID:       ref.ID,
				Brand:    candidate.Brand,
				Stage:    candidate.Stage,
				Archived: candidate.Archived,
			})
			continue
		}

		if _, taken := usedSlugs[candidate.Slug]; taken {
			for i := 2; ; i++ {
				probe := fmt.Sprintf("%s-%d", candidate.Slug, i)
				if _, taken := usedSlugs[probe]; !taken {
					candidate.Slug = probe
					break
				}
			}
		}

		usedSlugs[candidate.Slug] = struct{}{}
		plan.Inserts = append(plan.Inserts, candidate)
	}

	return plan
}
