package domain

import (
	"testing"
	"time"
)

func TestWaitingOnForStage(t *testing.T) {
	brandStages := []string{StageOutreach, StageNegotiation, StageContract, StageApproval}
	for _, stage := range brandStages {
		got := WaitingOnForStage(stage)
		if got == nil || *got != WaitingOnBrand {
			t.Fatalf("WaitingOnForStage(%q) = %v, want brand", stage, got)
		}
	}

	usStages := []string{StageContent, StageDelivered, StageInvoiced}
	for _, stage := range usStages {
		got := WaitingOnForStage(stage)
		if got == nil || *got != WaitingOnUs {
			t.Fatalf("WaitingOnForStage(%q) = %v, want us", stage, got)
		}
	}

	neither := []string{StagePitch, StageAgreed, StageScheduled, StagePaid, StageComplete, StagePaused, "bogus"}
	for _, stage := range neither {
		if got := WaitingOnForStage(stage); got != nil {
			t.Fatalf("WaitingOnForStage(%q) = %q, want nil", stage, *got)
		}
	}
}

func TestArchiveOnSync(t *testing.T) {
	if !ArchiveOnSync(StageComplete) || !ArchiveOnSync(StagePaused) {
		t.Fatal("complete and paused deals should be created archived")
	}
	for _, stage := range []string{StagePitch, StagePaid, StageInvoiced} {
		if ArchiveOnSync(stage) {
			t.Fatalf("stage %q should not be archived on sync", stage)
		}
	}
}

func TestIsEngaged(t *testing.T) {
	for _, stage := range []string{StageComplete, StagePaid, StagePaused} {
		if IsEngaged(stage) {
			t.Fatalf("stage %q should not count as engaged", stage)
		}
	}
	for _, stage := range []string{StagePitch, StageContent, StageInvoiced} {
		if !IsEngaged(stage) {
			t.Fatalf("stage %q should count as engaged", stage)
		}
	}
}

func TestReengagementStageForAgeBoundaries(t *testing.T) {
	const day = 24 * time.Hour

	cases := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"fresh", 10 * day, ""},
		{"90 days flat stays too recent", 90 * day, ""},
		{"just past 90 days", 90*day + time.Millisecond, StagePaused},
		{"just under 90 days", 90*day - time.Millisecond, ""},
		{"120 days", 120 * day, StagePaused},
		{"180 days flat stays warm", 180 * day, StagePaused},
		{"just past 180 days", 180*day + time.Millisecond, StagePitch},
		{"just under 180 days", 180*day - time.Millisecond, StagePaused},
		{"two years", 730 * day, StagePitch},
		{"zero", 0, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReengagementStageForAge(tc.age)
			if got != tc.want {
				t.Fatalf("ReengagementStageForAge(%v) = %q, want %q", tc.age, got, tc.want)
			}
		})
	}
}
