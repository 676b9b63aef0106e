package schedule

import (
	"strconv"
	"strings"
)

// Canonical field names. Every downstream consumer (API, export, write-back)
// binds to these exact, case-sensitive names.
const (
	FieldJobID               = "JobID"
	FieldJobName             = "JobName"
	FieldBranch              = "Branch"
	FieldCustomerName        = "CustomerName"
	FieldPriority            = "Priority"
	FieldStatus              = "Status"
	FieldQuantity            = "Quantity"
	FieldStartDate           = "StartDate"
	FieldCustomerRequestDate = "CustomerRequestDate"
	FieldShipDate            = "ShipDate"
	FieldDueDate             = "DueDate"
	FieldNotes               = "Notes"
	FieldDaysLate            = "DaysLate"
	FieldDurationDays        = "DurationDays"
)

// DateFields lists the date-bearing canonical fields in the fixed order the
// normalizer processes them.
var DateFields = []string{FieldStartDate, FieldCustomerRequestDate, FieldShipDate, FieldDueDate}

// DateRole pairs a canonical date field with the header keywords that imply
// it. Roles are tested in slice order; the first role with a keyword that is
// a substring of the normalized header wins, and a header matches at most
// one role.
type DateRole struct {
	Field    string
	Keywords []string
}

// Aliases holds the header-matching tables for column inference: the ordered
// date-role keyword sets and the exact-match alias table for identity
// fields. Instances are built once at startup and treated as read-only.
type Aliases struct {
	DateRoles []DateRole
	Fields    map[string]string
}

// DefaultAliases returns a fresh copy of the built-in alias tables, so that
// per-deployment overrides never leak into other callers.
func DefaultAliases() *Aliases {
	a := &Aliases{
		DateRoles: []DateRole{
			{Field: FieldStartDate, Keywords: []string{"start", "startdate", "start_date", "begin", "begindate"}},
			{Field: FieldCustomerRequestDate, Keywords: []string{"customerrequest", "customer_request", "end", "enddate", "end_date", "finish", "finishdate"}},
			{Field: FieldShipDate, Keywords: []string{"ship", "shipdate", "ship_date", "shipping"}},
			{Field: FieldDueDate, Keywords: []string{"due", "duedate", "due_date", "deadline"}},
		},
		Fields: map[string]string{
			"mhsjob":              FieldJobID,
			"jobid":               FieldJobID,
			"id":                  FieldJobID,
			"job":                 FieldJobID,
			"jobname":             FieldJobName,
			"name":                FieldJobName,
			"branch":              FieldBranch,
			"workcenter":          FieldBranch,
			"resource":            FieldBranch,
			"machine":             FieldBranch,
			"customername":        FieldCustomerName,
			"owner":               FieldCustomerName,
			"assignee":            FieldCustomerName,
			"assignedto":          FieldCustomerName,
			"customerrequestdate": FieldCustomerRequestDate,
			"enddate":             FieldCustomerRequestDate,
			"shipdate":            FieldShipDate,
			"priority":            FieldPriority,
			"quantity":            FieldQuantity,
			"qty":                 FieldQuantity,
			"notes":               FieldNotes,
			"comments":            FieldNotes,
			"description":         FieldNotes,
		},
	}
	return a
}

// Merge adds per-deployment alias overrides on top of the built-in tables.
// Field aliases are keyed by their normalized form; role keywords are
// appended to the matching date role.
func (a *Aliases) Merge(fields map[string]string, roleKeywords map[string][]string) {
	for raw, field := range fields {
		a.Fields[normalizeHeader(raw)] = field
	}
	for field, keywords := range roleKeywords {
		for i := range a.DateRoles {
			if a.DateRoles[i].Field == field {
				a.DateRoles[i].Keywords = append(a.DateRoles[i].Keywords, keywords...)
			}
		}
	}
}

// normalizeHeader lowercases a raw header and strips spaces, '#' and
// underscores, the variations the alias tables are insensitive to.
func normalizeHeader(h string) string {
	h = strings.ToLower(h)
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "#", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}

// requiredDefault is a canonical field the mapper guarantees to exist,
// paired with its literal default. Status and the date fields are
// deliberately absent: the status normalizer owns the Status column (so the
// no-status-column case stays observable) and date fields stay absent when
// the source has no matching column.
type requiredDefault struct {
	field   string
	literal string
}

var requiredDefaults = []requiredDefault{
	{FieldJobName, ""},
	{FieldBranch, "Unassigned"},
	{FieldCustomerName, "Unassigned"},
	{FieldPriority, "Medium"},
	{FieldQuantity, "1"},
	{FieldNotes, ""},
}

// ColumnMapper infers canonical field identities from raw headers and
// guarantees the required identity fields exist.
type ColumnMapper struct {
	aliases *Aliases
}

// NewColumnMapper builds a mapper over the given alias tables.
func NewColumnMapper(aliases *Aliases) *ColumnMapper {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &ColumnMapper{aliases: aliases}
}

// Apply renames every recognized header to its canonical name and injects
// defaults for required fields that are still missing. The date-role pass
// takes precedence over the field alias pass for any single header. This
// stage cannot fail.
func (m *ColumnMapper) Apply(t *Table) *Table {
	rename := make(map[string]string)
	for _, h := range t.Headers() {
		norm := normalizeHeader(h)
		if field, ok := m.dateRole(norm); ok {
			rename[h] = field
			continue
		}
		if field, ok := m.aliases.Fields[norm]; ok {
			rename[h] = field
		}
	}
	out := t.Rename(rename)

	if !out.Has(FieldJobID) {
		ids := make([]string, out.Len())
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		out.SetColumn(FieldJobID, ids)
	}
	for _, def := range requiredDefaults {
		if out.Has(def.field) {
			continue
		}
		col := make([]string, out.Len())
		for i := range col {
			col[i] = def.literal
		}
		out.SetColumn(def.field, col)
	}
	return out
}

// dateRole returns the first date role with a keyword contained in the
// normalized header.
func (m *ColumnMapper) dateRole(norm string) (string, bool) {
	for _, role := range m.aliases.DateRoles {
		for _, kw := range role.Keywords {
			if strings.Contains(norm, kw) {
				return role.Field, true
			}
		}
	}
	return "", false
}
