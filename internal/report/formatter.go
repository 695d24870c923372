package report

import (
	"fmt"
	"sort"
	"strings"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/recorder"
	"ResourceCycle/internal/stats"
)

func percent(available, capacity int64) string {
	if capacity <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(available)/float64(capacity)*100)
}

// FormatRun renders every step of a run followed by its summary.
func FormatRun(name string, res *model.RunResult) string {
	var b strings.Builder
	s := res.Summary

	b.WriteString(fmt.Sprintf("Scenario: %s (%s)\n", name, s.Mode))
	b.WriteString(fmt.Sprintf("Start: %d", s.InitialAvailable))
	if s.CapacityMax > 0 {
		b.WriteString(fmt.Sprintf(" of %d (%s)", s.CapacityMax, percent(s.InitialAvailable, s.CapacityMax)))
	}
	b.WriteString("\n\n")

	if len(res.Records) == 0 {
		b.WriteString("  no steps ran: pool was empty\n")
	} else {
		b.WriteString(fmt.Sprintf("%5s %8s %8s %10s %8s %7s\n", "step", "before", "refill", "withdrawn", "after", "level"))
		for _, r := range res.Records {
			b.WriteString(fmt.Sprintf("%5d %8d %8d %10d %8d %7s\n",
				r.Index, r.AvailableBefore, r.AmountReplenished, r.AmountWithdrawn, r.AvailableAfter,
				percent(r.AvailableAfter, s.CapacityMax)))
		}
	}
	b.WriteString("\n")
	b.WriteString(FormatSummary(&s))
	return b.String()
}

// FormatSummary renders the final figures of a run.
func FormatSummary(s *model.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Stopped: %s after %d steps\n", s.StopReason, s.Steps))
	b.WriteString(fmt.Sprintf("Consumed: %d | Replenished: %d | Remaining: %d",
		s.ConsumedTotal, s.ReplenishedTotal, s.FinalAvailable))
	if s.CapacityMax > 0 {
		b.WriteString(fmt.Sprintf(" (%.1f%%)", s.PercentRemaining))
	}
	b.WriteString("\n")
	if s.Mode == model.ModeTarget {
		status := "met"
		if !s.TargetMet {
			status = fmt.Sprintf("short by %d", s.Target-s.TotalWithdrawn)
		}
		b.WriteString(fmt.Sprintf("Target: %d | Withdrawn: %d | %s\n", s.Target, s.TotalWithdrawn, status))
	}
	return b.String()
}

// FormatBatch renders the outcome distribution of a batch.
func FormatBatch(bs *stats.BatchStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Batch: %s | %d runs | seeds %d..%d\n\n",
		bs.Scenario, bs.Runs, bs.BaseSeed, bs.BaseSeed+int64(bs.Runs)-1))
	b.WriteString(fmt.Sprintf("Steps: mean %.2f | stddev %.2f | p50 %.0f | p90 %.0f | max %d\n",
		bs.StepsMean, bs.StepsStdDev, bs.StepsP50, bs.StepsP90, bs.StepsMax))
	b.WriteString(fmt.Sprintf("Replenished mean: %.2f\n", bs.ReplenishedMean))
	b.WriteString(fmt.Sprintf("Final available mean: %.2f\n", bs.FinalAvailableMean))
	if bs.TargetMetRate > 0 || bs.StopReasons[model.StateTargetMet] > 0 {
		b.WriteString(fmt.Sprintf("Target met: %.1f%%\n", bs.TargetMetRate*100))
	}

	reasons := make([]string, 0, len(bs.StopReasons))
	for r := range bs.StopReasons {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	b.WriteString("Stop reasons:\n")
	for _, r := range reasons {
		n := bs.StopReasons[model.State(r)]
		b.WriteString(fmt.Sprintf("  %-18s %d (%.1f%%)\n", r, n, float64(n)/float64(bs.Runs)*100))
	}
	return b.String()
}

// FormatHistory renders stored runs, newest first.
func FormatHistory(rows []recorder.RunRow) string {
	if len(rows) == 0 {
		return "no recorded runs\n"
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s  %-20s %-13s %-17s steps=%-3d consumed=%-5d final=%d\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.Scenario, r.Mode, r.StopReason,
			r.Steps, r.ConsumedTotal, r.FinalAvailable))
	}
	return b.String()
}
