package domain

import "time"

// Months are modeled as 30 days for re-engagement age math.
const reengagementMonth = 30 * 24 * time.Hour

const (
	// ReengageWarmAge is the cooling-off period after which a past client is
	// worth circling back to.
	ReengageWarmAge = 3 * reengagementMonth
	// ReengageColdAge is the age after which a past client needs a fresh pitch.
	ReengageColdAge = 6 * reengagementMonth
)

// ReengagementStageForAge decides whether a completed/paid deal of the given
// age should be revived, and at which stage:
//
//	age > 6 months: pitch (cold, fresh outreach)
//	age > 3 months: paused (warm, circle back)
//	otherwise:      "" (too recent, no action)
//
// Both boundaries are strictly greater than: an age of exactly 180 days still
// falls in the circle-back band.
func ReengagementStageForAge(age time.Duration) string {
	switch {
	case age > ReengageColdAge:
		return StagePitch
	case age > ReengageWarmAge:
		return StagePaused
	default:
		return ""
	}
}
