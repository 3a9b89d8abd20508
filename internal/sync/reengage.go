package sync

import (
	"fmt"
	"time"

	"dealflow_backend/internal/clickup"
	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
)

// ContactSourcePreviousClient tags deals revived by the re-engagement flow.
const ContactSourcePreviousClient = "Previous Client"

// ReengagementSlugSuffix disambiguates a revived deal from its archived
// original.
const ReengagementSlugSuffix = "-reengagement"

// Fixed next actions for revived deals.
const (
	NextActionPitch      = "Reach out for new opportunity"
	NextActionCircleBack = "Circle back when relevant"
)

// Candidate is a completed/paid task eligible for re-engagement.
type Candidate struct {
	Task        clickup.Task
	Slug        string
	Stage       string
	Rate        *string
	LastUpdated time.Time
	Age         time.Duration
}

// ActiveSkip records a task skipped because its deal is still actively
// engaged and must never be reopened as a duplicate.
type ActiveSkip struct {
	Brand string
	Stage string
}

// Classification is the pure output of the re-engagement classifier: three
// disjoint buckets computed before any write, independent of whether a
// dry-run or live mode follows.
type Classification struct {
	ToPitch       []Candidate
	ToCircleBack  []Candidate
	TooRecent     []Candidate
	SkippedActive []ActiveSkip
}

// Classify buckets completed/paid tasks by the age of their last update.
// Tasks with any other status are ignored; tasks whose base slug belongs to a
// deal still in an engaged stage are skipped regardless of age.
func Classify(tasks []clickup.Task, existing []repository.SlugRef, now time.Time) Classification {
	var c Classification

	existingBySlug := make(map[string]repository.SlugRef, len(existing))
	for _, ref := range existing {
		existingBySlug[ref.Slug] = ref
	}

	for _, task := range tasks {
		status := task.Status.Status
		if status != clickup.StatusCompleted && status != clickup.StatusPaymentReceived {
			continue
		}

		lastUpdated, ok := task.UpdatedAt()
		if !ok {
			continue
		}

		slug := domain.Slugify(task.Name)
		if slug == "" {
			continue
		}

		if ref, found := existingBySlug[slug]; found && domain.IsEngaged(ref.Stage) {
			c.SkippedActive = append(c.SkippedActive, ActiveSkip{Brand: task.Name, Stage: ref.Stage})
			continue
		}

		age := now.Sub(lastUpdated)
		candidate := Candidate{
			Task:        task,
			Slug:        slug,
			Stage:       domain.ReengagementStageForAge(age),
			Rate:        task.Rate(),
			LastUpdated: lastUpdated,
			Age:         age,
		}

		switch candidate.Stage {
		case domain.StagePitch:
			c.ToPitch = append(c.ToPitch, candidate)
		case domain.StagePaused:
			c.ToCircleBack = append(c.ToCircleBack, candidate)
		default:
			c.TooRecent = append(c.TooRecent, candidate)
		}
	}

	return c
}

// Eligible returns the candidates that will be written, pitch bucket first.
func (c Classification) Eligible() []Candidate {
	out := make([]Candidate, 0, len(c.ToPitch)+len(c.ToCircleBack))
	out = append(out, c.ToPitch...)
	out = append(out, c.ToCircleBack...)
	return out
}

// nextActionForStage returns the fixed instruction for a revived deal.
func nextActionForStage(stage string) string {
	if stage == domain.StagePitch {
		return NextActionPitch
	}
	return NextActionCircleBack
}

// reengagementDeal builds the insert row for a candidate with no existing
// deal to update.
func reengagementDeal(candidate Candidate) repository.CreateDealParams {
	source := ContactSourcePreviousClient
	waitingOn := domain.WaitingOnUs
	nextAction := nextActionForStage(candidate.Stage)
	lastContact := candidate.LastUpdated.Truncate(24 * time.Hour)

	value := "unknown"
	if candidate.Rate != nil {
		value = *candidate.Rate
	}
	notes := fmt.Sprintf("Previously worked together. Original deal value: %s", value)

	return repository.CreateDealParams{
		Brand:         candidate.Task.Name,
		Slug:          candidate.Slug + ReengagementSlugSuffix,
		Stage:         candidate.Stage,
		Priority:      domain.PriorityMedium,
		Value:         candidate.Rate,
		ContactSource: &source,
		LastContact:   &lastContact,
		NextAction:    &nextAction,
		WaitingOn:     &waitingOn,
		Notes:         &notes,
		Archived:      false,
	}
}
