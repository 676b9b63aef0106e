// Package schedule implements the normalization pipeline that turns raw,
// inconsistently-labeled spreadsheet rows into the canonical job schedule.
// The pipeline never fails on bad data: quality issues degrade to defaults
// plus entries in the returned warning list.
package schedule

// Table is an ordered, loosely-typed record set as it arrives from a
// spreadsheet or CSV source: headers in source order, cells as raw text,
// no schema guarantee.
type Table struct {
	headers []string
	cols    map[string][]string
	rows    int
}

// NewTable builds a table from a header row and cell rows. Ragged rows are
// padded with empty cells; rows longer than the header are truncated. A
// repeated header name keeps its first position but takes the values of its
// last occurrence.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{
		headers: make([]string, 0, len(headers)),
		cols:    make(map[string][]string, len(headers)),
		rows:    len(rows),
	}
	for i, h := range headers {
		col := make([]string, len(rows))
		for r, row := range rows {
			if i < len(row) {
				col[r] = row[i]
			}
		}
		if _, ok := t.cols[h]; !ok {
			t.headers = append(t.headers, h)
		}
		t.cols[h] = col
	}
	return t
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.headers))
	copy(out, t.headers)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Has reports whether a column with the exact given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]string, bool) {
	col, ok := t.cols[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(col))
	copy(out, col)
	return out, true
}

// Cell returns the cell at the given row in the named column, or the empty
// string if the column does not exist.
func (t *Table) Cell(row int, name string) string {
	col, ok := t.cols[name]
	if !ok || row < 0 || row >= len(col) {
		return ""
	}
	return col[row]
}

// SetColumn replaces the named column's cells, appending the column if it
// does not exist. Values shorter than the table are padded with empty cells.
func (t *Table) SetColumn(name string, values []string) {
	col := make([]string, t.rows)
	copy(col, values)
	if _, ok := t.cols[name]; !ok {
		t.headers = append(t.headers, name)
	}
	t.cols[name] = col
}

// Rename produces a new table with headers renamed per the mapping. Headers
// absent from the mapping are kept as-is.
//
// When two or more source headers map to the same target name, the later
// header in column order silently overwrites the earlier one. This
// last-write-wins behavior is a known sharp edge of the source format, kept
// deliberately; see the duplicate-target tests.
func (t *Table) Rename(mapping map[string]string) *Table {
	out := &Table{
		headers: make([]string, 0, len(t.headers)),
		cols:    make(map[string][]string, len(t.headers)),
		rows:    t.rows,
	}
	for _, h := range t.headers {
		target := h
		if mapped, ok := mapping[h]; ok {
			target = mapped
		}
		col := make([]string, len(t.cols[h]))
		copy(col, t.cols[h])
		if _, ok := out.cols[target]; !ok {
			out.headers = append(out.headers, target)
		}
		out.cols[target] = col
	}
	return out
}
