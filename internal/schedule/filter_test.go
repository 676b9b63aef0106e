package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleSchedule(t *testing.T) Schedule {
	loc := eastern(t)
	may := time.Date(2025, 5, 1, 0, 0, 0, 0, loc)
	june := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	return Schedule{
		{JobID: "J-1", JobName: "Bracket", Branch: "North", CustomerName: "Acme", Priority: "High", Status: StatusPlanned, StartDate: &may, Notes: "rush order"},
		{JobID: "J-2", JobName: "Plate", Branch: "South", CustomerName: "Globex", Priority: "Low", Status: StatusComplete, StartDate: &june},
		{JobID: "J-3", JobName: "Frame", Branch: "North", CustomerName: "Acme", Priority: "Medium", Status: StatusInProgress},
	}
}

func TestFilter_EmptyFilterPassesEverything(t *testing.T) {
	s := sampleSchedule(t)

	assert.Len(t, Filter{}.Apply(s), len(s))
}

func TestFilter_ByStatusSet(t *testing.T) {
	out := Filter{Statuses: []string{StatusPlanned, StatusInProgress}}.Apply(sampleSchedule(t))

	assert.Len(t, out, 2)
	assert.Equal(t, "J-1", out[0].JobID)
	assert.Equal(t, "J-3", out[1].JobID)
}

func TestFilter_ByBranchCustomerPriority(t *testing.T) {
	s := sampleSchedule(t)

	assert.Len(t, Filter{Branch: "North"}.Apply(s), 2)
	assert.Len(t, Filter{Customer: "Globex"}.Apply(s), 1)
	assert.Len(t, Filter{Branch: "North", Priority: "High"}.Apply(s), 1)
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	out := Filter{Search: "RUSH"}.Apply(sampleSchedule(t))

	assert.Len(t, out, 1)
	assert.Equal(t, "J-1", out[0].JobID)
}

func TestFilter_StartDateRangeDropsUndatedRows(t *testing.T) {
	loc := eastern(t)
	from := time.Date(2025, 5, 15, 0, 0, 0, 0, loc)

	out := Filter{StartFrom: &from}.Apply(sampleSchedule(t))

	assert.Len(t, out, 1)
	assert.Equal(t, "J-2", out[0].JobID)
}

func TestSummarize_KPIs(t *testing.T) {
	loc := eastern(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)
	soon := time.Date(2025, 6, 12, 0, 0, 0, 0, loc)
	far := time.Date(2025, 8, 1, 0, 0, 0, 0, loc)
	nine := 9
	three := 3

	s := Schedule{
		{Status: StatusInProgress, DueDate: &soon},
		{Status: StatusPlanned, DueDate: &far},
		{Status: StatusPlanned, DaysLate: 4},
		{Status: StatusComplete, DurationDays: &nine},
		{Status: StatusComplete, DurationDays: &three},
	}

	sum := Summarize(s, now)

	assert.Equal(t, 5, sum.TotalJobs)
	assert.Equal(t, 1, sum.InProgress)
	assert.Equal(t, 1, sum.DueThisWeek)
	assert.Equal(t, 1, sum.Overdue)
	assert.InDelta(t, 6.0, sum.AvgLeadDays, 0.001)
}

func TestSummarize_EmptySchedule(t *testing.T) {
	sum := Summarize(Schedule{}, time.Now())

	assert.Equal(t, 0, sum.TotalJobs)
	assert.Equal(t, 0.0, sum.AvgLeadDays)
}
