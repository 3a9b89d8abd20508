package sync

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// FormatAge humanizes a duration for report output ("3 days", "4 months",
// "2 years").
func FormatAge(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days > 365:
		return fmt.Sprintf("%d years", days/365)
	case days > 30:
		return fmt.Sprintf("%d months", days/30)
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// WriteReport prints a reconciliation result in human-readable form, grouped
// by action bucket.
func (res ReconcileResult) WriteReport(w io.Writer) {
	plan := res.Plan

	fmt.Fprintf(w, "To insert: %d new deals\n", len(plan.Inserts))
	fmt.Fprintf(w, "To update: %d existing deals\n", len(plan.Updates))
	if plan.ExcludedReminders > 0 {
		fmt.Fprintf(w, "Excluded %d reminder tasks\n", plan.ExcludedReminders)
	}

	if res.DryRun {
		fmt.Fprintln(w, "\n[DRY RUN] Would insert:")
		for _, deal := range plan.Inserts {
			fmt.Fprintf(w, "  - %s (%s)\n", deal.Brand, deal.Stage)
		}
		fmt.Fprintln(w, "\n[DRY RUN] Would update:")
		for _, update := range plan.Updates {
			fmt.Fprintf(w, "  - %s -> %s\n", update.Brand, update.Stage)
		}
	} else {
		fmt.Fprintf(w, "\nInserted %d, updated %d, failed %d\n", res.Inserted, res.Updated, res.Failed)
	}

	fmt.Fprintln(w, "\nDeals by stage:")
	type stageCount struct {
		stage string
		count int
	}
	counts := make([]stageCount, 0, len(plan.StageCounts))
	for stage, count := range plan.StageCounts {
		counts = append(counts, stageCount{stage, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].stage < counts[j].stage
	})
	for _, sc := range counts {
		fmt.Fprintf(w, "  %s: %d\n", sc.stage, sc.count)
	}
}

func writeCandidates(w io.Writer, candidates []Candidate, withRate bool) {
	for _, c := range candidates {
		line := fmt.Sprintf("  - %s (%s ago)", c.Task.Name, FormatAge(c.Age))
		if withRate && c.Rate != nil {
			line += fmt.Sprintf(" - was %s", *c.Rate)
		}
		fmt.Fprintln(w, line)
	}
}

// WriteReport prints a re-engagement result: the three buckets, skipped
// active deals, and (in live mode) write counts.
func (res ReengageResult) WriteReport(w io.Writer) {
	c := res.Classification

	for _, skip := range c.SkippedActive {
		fmt.Fprintf(w, "  skipped %s - already active in %s\n", skip.Brand, skip.Stage)
	}

	fmt.Fprintln(w, "\nAnalysis:")
	fmt.Fprintf(w, "  To pitch (>6 months): %d\n", len(c.ToPitch))
	fmt.Fprintf(w, "  Circle back (3-6 months): %d\n", len(c.ToCircleBack))
	fmt.Fprintf(w, "  Too recent (<3 months): %d\n", len(c.TooRecent))

	if len(c.ToPitch) > 0 {
		fmt.Fprintln(w, "\nPITCH (cold - needs fresh outreach):")
		writeCandidates(w, c.ToPitch, true)
	}
	if len(c.ToCircleBack) > 0 {
		fmt.Fprintln(w, "\nCIRCLE BACK (warm - reconnect):")
		writeCandidates(w, c.ToCircleBack, true)
	}
	if len(c.TooRecent) > 0 {
		fmt.Fprintln(w, "\nSKIPPED (too recent):")
		writeCandidates(w, c.TooRecent, false)
	}

	if res.DryRun {
		fmt.Fprintln(w, "\n[DRY RUN] No changes made. Run without --dry-run to import.")
		return
	}

	fmt.Fprintf(w, "\nCreated %d new re-engagement deals\n", res.Created)
	fmt.Fprintf(w, "Updated %d existing deals\n", res.Updated)
	if res.Failed > 0 {
		fmt.Fprintf(w, "Failed %d writes\n", res.Failed)
	}
}
