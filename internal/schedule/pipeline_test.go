package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProcessor(t *testing.T, now time.Time) *Processor {
	t.Helper()
	p, err := NewProcessor(WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return p
}

func fixedNow(t *testing.T) time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, eastern(t))
}

func TestProcess_EmptyInputShortCircuits(t *testing.T) {
	p := testProcessor(t, fixedNow(t))

	jobs, warnings := p.Process(NewTable([]string{"anything"}, nil))

	assert.Empty(t, jobs)
	assert.Empty(t, warnings)

	jobs, warnings = p.Process(nil)
	assert.Empty(t, jobs)
	assert.Empty(t, warnings)
}

func TestProcess_EndToEnd(t *testing.T) {
	p := testProcessor(t, fixedNow(t))

	raw := NewTable(
		[]string{"MHS Job #", "Name", "Work Center", "Owner", "status", "Qty", "Start Date", "End Date", "Due Date", "Comments"},
		[][]string{
			{"MHS-001", "Bracket run", "Mill 2", "Acme", "in progress", "25", "2025-06-01", "2025-06-05", "2025-06-20", "rush"},
			{"MHS-002", "Plate order", "", "", "done", "", "2024-01-01", "2024-01-10", "2025-06-01", ""},
		},
	)

	jobs, warnings := p.Process(raw)

	require.Len(t, jobs, 2)
	assert.Empty(t, warnings)

	first := jobs[0]
	assert.Equal(t, "MHS-001", first.JobID)
	assert.Equal(t, "Bracket run", first.JobName)
	assert.Equal(t, "Mill 2", first.Branch)
	assert.Equal(t, "Acme", first.CustomerName)
	assert.Equal(t, "Medium", first.Priority, "missing priority column defaults")
	assert.Equal(t, StatusInProgress, first.Status)
	assert.Equal(t, 25, first.Quantity)
	require.NotNil(t, first.StartDate)
	require.NotNil(t, first.CustomerRequestDate)
	require.NotNil(t, first.DueDate)
	assert.Nil(t, first.ShipDate)
	assert.Equal(t, "rush", first.Notes)
	assert.Equal(t, 0, first.DaysLate, "due date in the future")
	require.NotNil(t, first.DurationDays)
	assert.Equal(t, 4, *first.DurationDays)

	second := jobs[1]
	assert.Equal(t, StatusComplete, second.Status)
	assert.Equal(t, 0, second.DaysLate, "complete jobs are never late")
	require.NotNil(t, second.DurationDays)
	assert.Equal(t, 9, *second.DurationDays)
	assert.Equal(t, 1, second.Quantity, "empty quantity cell defaults")
}

// Every output row exposes exactly the canonical field set with non-date,
// non-enum fields never empty of a defined value.
func TestProcess_CompletenessOnSparseInput(t *testing.T) {
	p := testProcessor(t, fixedNow(t))

	jobs, _ := p.Process(NewTable([]string{"mystery column"}, [][]string{{"x"}, {"y"}}))

	require.Len(t, jobs, 2)
	for i, job := range jobs {
		assert.NotEmpty(t, job.JobID)
		assert.Equal(t, "Unassigned", job.Branch)
		assert.Equal(t, "Unassigned", job.CustomerName)
		assert.Equal(t, "Medium", job.Priority)
		assert.Equal(t, StatusUnknown, job.Status, "row %d: no status-like column", i)
		assert.Equal(t, 1, job.Quantity)
		assert.Nil(t, job.StartDate)
		assert.Nil(t, job.DueDate)
		assert.Equal(t, 0, job.DaysLate)
		assert.Nil(t, job.DurationDays)
	}
}

func TestProcess_OverdueJobAccruesDaysLate(t *testing.T) {
	p := testProcessor(t, fixedNow(t))

	jobs, warnings := p.Process(NewTable(
		[]string{"job", "Status", "Due Date"},
		[][]string{{"J-1", "Planned", "2025-06-09"}},
	))

	require.Len(t, jobs, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, jobs[0].DaysLate, "due yesterday, planned -> one day late")
}

func TestProcess_ParseFailureWarningPropagates(t *testing.T) {
	p := testProcessor(t, fixedNow(t))

	jobs, warnings := p.Process(NewTable(
		[]string{"job", "Due Date"},
		[][]string{{"J-1", "N/A"}, {"J-2", "2025-06-20"}},
	))

	require.Len(t, jobs, 2)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Failed to parse 1 dates in DueDate", warnings[0])
	assert.Nil(t, jobs[0].DueDate)
	assert.NotNil(t, jobs[1].DueDate)
}

// Running the pipeline over an already-canonical table changes no names and
// no values other than recomputing DaysLate against the captured clock.
func TestProcess_IdempotentOnCanonicalInput(t *testing.T) {
	p := testProcessor(t, fixedNow(t))

	canonical := NewTable(
		[]string{"JobID", "JobName", "Branch", "CustomerName", "Priority", "Status", "Quantity", "StartDate", "CustomerRequestDate", "DueDate", "Notes"},
		[][]string{{"J-7", "Frame", "North", "Globex", "High", "Hold", "3", "2025-05-01", "2025-05-06", "2025-07-01", "check fit"}},
	)

	first, w1 := p.Process(canonical)
	second, w2 := p.Process(canonical)

	assert.Empty(t, w1)
	assert.Empty(t, w2)
	assert.Equal(t, first, second)
	job := first[0]
	assert.Equal(t, "J-7", job.JobID)
	assert.Equal(t, "North", job.Branch)
	assert.Equal(t, "High", job.Priority)
	assert.Equal(t, StatusHold, job.Status)
	assert.Equal(t, 3, job.Quantity)
	require.NotNil(t, job.DurationDays)
	assert.Equal(t, 5, *job.DurationDays)
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	p := testProcessor(t, fixedNow(t))
	raw := NewTable([]string{"job", "status"}, [][]string{{"J-1", "done"}})

	_, _ = p.Process(raw)

	assert.Equal(t, "done", raw.Cell(0, "status"), "input table must stay untouched")
	assert.Equal(t, []string{"job", "status"}, raw.Headers())
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 12, parseQuantity("12"))
	assert.Equal(t, 2, parseQuantity(" 2.0 "))
	assert.Equal(t, 1, parseQuantity(""))
	assert.Equal(t, 1, parseQuantity("a dozen"))
	assert.Equal(t, 0, parseQuantity("0"))
}
