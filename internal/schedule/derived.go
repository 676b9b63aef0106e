package schedule

import "time"

// DerivedFields holds the two computed per-row metrics.
type DerivedFields struct {
	DaysLate     []int
	DurationDays []*int
}

// ComputeDerived calculates lateness and duration for every row.
//
// DaysLate is the whole-day difference between now and DueDate for rows
// whose due date is strictly in the past and whose status is not Complete;
// all other rows get 0. DurationDays is the whole-day difference
// CustomerRequestDate − StartDate, set only when both dates are present; it
// may be negative when the source data is inconsistent and is not clamped.
//
// The caller captures "now" once per pipeline run so all rows in one run
// are lateness-consistent.
func ComputeDerived(rows int, dates map[string][]*time.Time, status []string, now time.Time) DerivedFields {
	out := DerivedFields{
		DaysLate:     make([]int, rows),
		DurationDays: make([]*int, rows),
	}
	due := dates[FieldDueDate]
	start := dates[FieldStartDate]
	request := dates[FieldCustomerRequestDate]

	for i := 0; i < rows; i++ {
		if d := at(due, i); d != nil && d.Before(now) && statusAt(status, i) != StatusComplete {
			out.DaysLate[i] = wholeDays(now.Sub(*d))
		}
		s, r := at(start, i), at(request, i)
		if s != nil && r != nil {
			days := wholeDays(r.Sub(*s))
			out.DurationDays[i] = &days
		}
	}
	return out
}

func at(col []*time.Time, i int) *time.Time {
	if i < 0 || i >= len(col) {
		return nil
	}
	return col[i]
}

func statusAt(status []string, i int) string {
	if i < 0 || i >= len(status) {
		return ""
	}
	return status[i]
}

// wholeDays floors a duration to whole days, matching day arithmetic on
// normalized timedeltas (-12h is -1 day, not 0).
func wholeDays(d time.Duration) int {
	secs := int64(d / time.Second)
	if secs >= 0 {
		return int(secs / 86400)
	}
	return int((secs - 86399) / 86400)
}
