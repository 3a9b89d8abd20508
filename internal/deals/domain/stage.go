// Package domain holds the pure pipeline rules for brand-partnership deals:
// stage definitions, slug derivation, waiting-on derivation and value parsing.
package domain

// Pipeline stages, in board order.
const (
	StagePitch       = "pitch"
	StageOutreach    = "outreach"
	StageNegotiation = "negotiation"
	StageAgreed      = "agreed"
	StageContract    = "contract"
	StageContent     = "content"
	StageApproval    = "approval"
	StageScheduled   = "scheduled"
	StageDelivered   = "delivered"
	StageInvoiced    = "invoiced"
	StagePaid        = "paid"
	StageComplete    = "complete"
	StagePaused      = "paused"
)

// Stages lists all pipeline stages in board column order.
var Stages = []string{
	StagePitch,
	StageOutreach,
	StageNegotiation,
	StageAgreed,
	StageContract,
	StageContent,
	StageApproval,
	StageScheduled,
	StageDelivered,
	StageInvoiced,
	StagePaid,
	StageComplete,
	StagePaused,
}

// StageLabels maps stages to display labels.
var StageLabels = map[string]string{
	StagePitch:       "Pitch",
	StageOutreach:    "Outreach",
	StageNegotiation: "Negotiation",
	StageAgreed:      "Agreed",
	StageContract:    "Contract",
	StageContent:     "Content",
	StageApproval:    "Approval",
	StageScheduled:   "Scheduled",
	StageDelivered:   "Delivered",
	StageInvoiced:    "Invoiced",
	StagePaid:        "Paid",
	StageComplete:    "Complete",
	StagePaused:      "Paused",
}

var knownStages = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Stages))
	for _, s := range Stages {
		m[s] = struct{}{}
	}
	return m
}()

// IsKnownStage reports whether stage is one of the pipeline stages.
func IsKnownStage(stage string) bool {
	_, ok := knownStages[stage]
	return ok
}

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// IsKnownPriority reports whether priority is one of the allowed values.
func IsKnownPriority(priority string) bool {
	return priority == PriorityLow || priority == PriorityMedium || priority == PriorityHigh
}

// Waiting-on parties.
const (
	WaitingOnBrand = "brand"
	WaitingOnUs    = "us"
)

// WaitingOnForStage derives which party owes the next action when a deal is
// manufactured from an external task. It returns nil when no party is pending.
// It never overrides a manually-set waiting_on on existing rows.
func WaitingOnForStage(stage string) *string {
	switch stage {
	case StageOutreach, StageNegotiation, StageContract, StageApproval:
		v := WaitingOnBrand
		return &v
	case StageContent, StageDelivered, StageInvoiced:
		v := WaitingOnUs
		return &v
	default:
		return nil
	}
}

// ArchiveOnSync reports whether a deal manufactured from an external task in
// the given stage should be created archived. Complete and paused deals are
// kept out of the default board view.
func ArchiveOnSync(stage string) bool {
	return stage == StageComplete || stage == StagePaused
}

// IsEngaged reports whether a deal in the given stage is actively being worked.
// Deals in these stages must never be reopened by the re-engagement flow.
func IsEngaged(stage string) bool {
	return stage != StageComplete && stage != StagePaid && stage != StagePaused
}
