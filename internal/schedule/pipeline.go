package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Processor composes the normalization stages: column mapping, date
// normalization, status canonicalization and derived-field computation, in
// that fixed order. A Processor holds only read-only tables and is safe for
// concurrent use on independent inputs.
type Processor struct {
	mapper *ColumnMapper
	dates  *DateNormalizer
	status *StatusNormalizer
	loc    *time.Location
	now    func() time.Time
}

// Option customizes a Processor.
type Option func(*Processor)

// WithAliases replaces the built-in alias tables, typically after merging
// per-deployment overrides.
func WithAliases(a *Aliases) Option {
	return func(p *Processor) {
		p.mapper = NewColumnMapper(a)
	}
}

// WithClock fixes the "now" source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor builds a Processor targeting the fixed schedule zone.
func NewProcessor(opts ...Option) (*Processor, error) {
	loc, err := LoadLocation()
	if err != nil {
		return nil, err
	}
	p := &Processor{
		mapper: NewColumnMapper(nil),
		dates:  NewDateNormalizer(loc),
		status: &StatusNormalizer{},
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs the full pipeline over one raw record set and returns the
// canonical schedule together with the ordered warning list. Data-quality
// issues never fail the run; at worst every row falls back to defaults. An
// empty input short-circuits to an empty schedule with no warnings.
func (p *Processor) Process(raw *Table) (Schedule, []string) {
	if raw == nil || raw.Len() == 0 {
		return Schedule{}, nil
	}

	t := p.mapper.Apply(raw)
	dates, warnings := p.dates.Apply(t)
	p.status.Apply(t)
	statusCol, _ := t.Column(FieldStatus)

	now := p.now().In(p.loc)
	derived := ComputeDerived(t.Len(), dates, statusCol, now)

	jobs := make(Schedule, t.Len())
	for i := range jobs {
		jobs[i] = Job{
			JobID:               t.Cell(i, FieldJobID),
			JobName:             t.Cell(i, FieldJobName),
			Branch:              t.Cell(i, FieldBranch),
			CustomerName:        t.Cell(i, FieldCustomerName),
			Priority:            t.Cell(i, FieldPriority),
			Status:              statusCol[i],
			Quantity:            parseQuantity(t.Cell(i, FieldQuantity)),
			StartDate:           at(dates[FieldStartDate], i),
			CustomerRequestDate: at(dates[FieldCustomerRequestDate], i),
			ShipDate:            at(dates[FieldShipDate], i),
			DueDate:             at(dates[FieldDueDate], i),
			Notes:               t.Cell(i, FieldNotes),
			DaysLate:            derived.DaysLate[i],
			DurationDays:        derived.DurationDays[i],
		}
	}
	return jobs, warnings
}

// parseQuantity reads a quantity cell, tolerating numeric text in integer or
// decimal form. Anything unreadable falls back to the default of 1.
func parseQuantity(raw string) int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 1
	}
	if q, err := strconv.Atoi(v); err == nil {
		return q
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 1
}
