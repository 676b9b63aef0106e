package schedule

import "time"

// Summary aggregates the dashboard KPIs for one schedule.
type Summary struct {
	TotalJobs   int     `json:"total_jobs"`
	InProgress  int     `json:"in_progress"`
	DueThisWeek int     `json:"due_this_week"`
	Overdue     int     `json:"overdue"`
	AvgLeadDays float64 `json:"avg_lead_days"`
}

// Summarize computes the KPIs as of now. "Due this week" counts incomplete
// jobs whose due date falls between now and seven days out, inclusive of
// today. Average lead time is the mean DurationDays over completed jobs
// that have one.
func Summarize(s Schedule, now time.Time) Summary {
	sum := Summary{TotalJobs: len(s)}
	weekEnd := now.AddDate(0, 0, 7)

	leadTotal := 0
	leadCount := 0
	for _, job := range s {
		if job.Status == StatusInProgress {
			sum.InProgress++
		}
		if job.Overdue() {
			sum.Overdue++
		}
		if job.DueDate != nil && job.Status != StatusComplete &&
			!job.DueDate.Before(startOfDay(now)) && !job.DueDate.After(weekEnd) {
			sum.DueThisWeek++
		}
		if job.Status == StatusComplete && job.DurationDays != nil {
			leadTotal += *job.DurationDays
			leadCount++
		}
	}
	if leadCount > 0 {
		sum.AvgLeadDays = float64(leadTotal) / float64(leadCount)
	}
	return sum
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
