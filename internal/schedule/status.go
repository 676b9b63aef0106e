package schedule

import "strings"

// Canonical status values. "Unknown" appears only when the source had no
// status-like column at all; otherwise every row carries one of the four
// enum values.
const (
	StatusPlanned    = "Planned"
	StatusInProgress = "In-Progress"
	StatusComplete   = "Complete"
	StatusHold       = "Hold"
	StatusUnknown    = "Unknown"
)

// Statuses lists the four enum values in display order.
var Statuses = []string{StatusPlanned, StatusInProgress, StatusComplete, StatusHold}

var statusAliases = map[string]string{
	"planned":     StatusPlanned,
	"pending":     StatusPlanned,
	"in progress": StatusInProgress,
	"in-progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"complete":    StatusComplete,
	"completed":   StatusComplete,
	"done":        StatusComplete,
	"hold":        StatusHold,
	"on hold":     StatusHold,
	"paused":      StatusHold,
}

// StatusNormalizer canonicalizes the Status column to the fixed enum.
type StatusNormalizer struct{}

// Apply locates the status column and rewrites its values in place.
//
// Column search: an exact (case-insensitive) "Status" header wins; failing
// that, the first header containing the substring "status" is renamed. If no
// such header exists, every row is set to "Unknown" — deliberately distinct
// from the per-value fallback below, so consumers can tell "no status data
// at all" from "status present but unrecognized".
//
// Value mapping: trim, lowercase, alias-map. Anything unmatched, including
// empty cells, becomes "Planned". This stage cannot fail.
func (s *StatusNormalizer) Apply(t *Table) {
	if !t.Has(FieldStatus) {
		found := ""
		for _, h := range t.Headers() {
			if strings.EqualFold(h, FieldStatus) {
				found = h
				break
			}
		}
		if found == "" {
			for _, h := range t.Headers() {
				if strings.Contains(strings.ToLower(h), "status") {
					found = h
					break
				}
			}
		}
		if found == "" {
			col := make([]string, t.Len())
			for i := range col {
				col[i] = StatusUnknown
			}
			t.SetColumn(FieldStatus, col)
			return
		}
		renamed := t.Rename(map[string]string{found: FieldStatus})
		*t = *renamed
	}

	col, _ := t.Column(FieldStatus)
	for i, v := range col {
		key := strings.ToLower(strings.TrimSpace(v))
		if canonical, ok := statusAliases[key]; ok {
			col[i] = canonical
		} else {
			col[i] = StatusPlanned
		}
	}
	t.SetColumn(FieldStatus, col)
}
