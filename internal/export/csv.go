// Package export renders canonical schedules into tabular output formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jonathan/schedule-board/internal/schedule"
)

// Columns is the export column order. It matches the canonical field set so
// an exported file round-trips through the pipeline unchanged.
var Columns = []string{
	schedule.FieldJobID,
	schedule.FieldJobName,
	schedule.FieldBranch,
	schedule.FieldCustomerName,
	schedule.FieldPriority,
	schedule.FieldStatus,
	schedule.FieldQuantity,
	schedule.FieldStartDate,
	schedule.FieldCustomerRequestDate,
	schedule.FieldShipDate,
	schedule.FieldDueDate,
	schedule.FieldNotes,
	schedule.FieldDaysLate,
	schedule.FieldDurationDays,
}

const dateLayout = "2006-01-02"

// Rows converts a schedule to string cells in Columns order, without the
// header row. Unset dates and durations become empty cells.
func Rows(s schedule.Schedule) [][]string {
	rows := make([][]string, 0, len(s))
	for _, j := range s {
		duration := ""
		if j.DurationDays != nil {
			duration = strconv.Itoa(*j.DurationDays)
		}
		rows = append(rows, []string{
			j.JobID,
			j.JobName,
			j.Branch,
			j.CustomerName,
			j.Priority,
			j.Status,
			strconv.Itoa(j.Quantity),
			formatDate(j.StartDate),
			formatDate(j.CustomerRequestDate),
			formatDate(j.ShipDate),
			formatDate(j.DueDate),
			j.Notes,
			strconv.Itoa(j.DaysLate),
			duration,
		})
	}
	return rows
}

// WriteCSV writes the schedule as CSV with a header row.
func WriteCSV(w io.Writer, s schedule.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range Rows(s) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
