package schedule

import (
	"strings"
	"time"
)

// Filter narrows a schedule after normalization. Zero-valued criteria are
// ignored, so the empty Filter passes every row through.
type Filter struct {
	// Statuses keeps rows whose Status is in the set.
	Statuses []string
	// Branch, Customer and Priority require exact matches.
	Branch   string
	Customer string
	Priority string
	// Search is a case-insensitive substring match over JobID, JobName and
	// Notes.
	Search string
	// StartFrom/StartTo bound StartDate (inclusive); rows without a
	// StartDate are dropped when either bound is set.
	StartFrom *time.Time
	StartTo   *time.Time
}

// Apply returns the rows matching every set criterion, in input order.
func (f Filter) Apply(s Schedule) Schedule {
	out := make(Schedule, 0, len(s))
	for _, job := range s {
		if f.matches(job) {
			out = append(out, job)
		}
	}
	return out
}

func (f Filter) matches(j Job) bool {
	if len(f.Statuses) > 0 && !containsString(f.Statuses, j.Status) {
		return false
	}
	if f.Branch != "" && j.Branch != f.Branch {
		return false
	}
	if f.Customer != "" && j.CustomerName != f.Customer {
		return false
	}
	if f.Priority != "" && j.Priority != f.Priority {
		return false
	}
	if f.StartFrom != nil || f.StartTo != nil {
		if j.StartDate == nil {
			return false
		}
		if f.StartFrom != nil && j.StartDate.Before(*f.StartFrom) {
			return false
		}
		if f.StartTo != nil && j.StartDate.After(*f.StartTo) {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(j.JobID), needle) &&
			!strings.Contains(strings.ToLower(j.JobName), needle) &&
			!strings.Contains(strings.ToLower(j.Notes), needle) {
			return false
		}
	}
	return true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
