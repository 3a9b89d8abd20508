// Package sync merges the ClickUp task feed into the deals table: the
// reconciliation engine partitions fetched tasks into inserts and updates,
// and the re-engagement classifier revives cooled-off past clients.
package sync

import "dealflow_backend/internal/deals/domain"

// statusToStage maps ClickUp status labels to pipeline stages.
var statusToStage = map[string]string{
	"brands to pitch":     domain.StagePitch,
	"dm/pitch sent":       domain.StageOutreach,
	"circle back":         domain.StagePaused,
	"in negotiations":     domain.StageNegotiation,
	"agreed in principle": domain.StageAgreed,
	"contract review":     domain.StageContract,
	"content creation":    domain.StageContent,
	"client approval":     domain.StageApproval,
	"scheduled":           domain.StageScheduled,
	"content delivered":   domain.StageDelivered,
	"invoice submitted":   domain.StageInvoiced,
	"payment received":    domain.StagePaid,
	"completed":           domain.StageComplete,
}

// StageForStatus maps an external status label to a pipeline stage. The
// mapping is total: unrecognized labels fall back to pitch.
func StageForStatus(status string) string {
	if stage, ok := statusToStage[status]; ok {
		return stage
	}
	return domain.StagePitch
}
