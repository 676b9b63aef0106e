package schedule

import "time"

// Job is one canonical schedule row. Field names, their JSON spellings and
// the Status literals are the wire contract consumers bind to.
type Job struct {
	JobID               string     `json:"JobID"`
	JobName             string     `json:"JobName"`
	Branch              string     `json:"Branch"`
	CustomerName        string     `json:"CustomerName"`
	Priority            string     `json:"Priority"`
	Status              string     `json:"Status"`
	Quantity            int        `json:"Quantity"`
	StartDate           *time.Time `json:"StartDate"`
	CustomerRequestDate *time.Time `json:"CustomerRequestDate"`
	ShipDate            *time.Time `json:"ShipDate"`
	DueDate             *time.Time `json:"DueDate"`
	Notes               string     `json:"Notes"`
	DaysLate            int        `json:"DaysLate"`
	DurationDays        *int       `json:"DurationDays,omitempty"`
}

// Schedule is an ordered canonical record set, produced together with its
// warning list and never mutated after return.
type Schedule []Job

// Overdue reports whether the job has slipped past its due date.
func (j Job) Overdue() bool {
	return j.DaysLate > 0
}
