package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // zone data must resolve even on zoneless hosts

	"github.com/araddon/dateparse"
)

// DefaultTimezone is the fixed zone every schedule instant is expressed in.
const DefaultTimezone = "America/New_York"

// LoadLocation loads the fixed schedule zone.
func LoadLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", DefaultTimezone, err)
	}
	return loc, nil
}

// DateNormalizer parses the recognized date columns into timezone-aware
// instants in the fixed schedule zone.
//
// Two DST policies apply when localizing a timezone-naive value:
//   - ambiguous local times (the repeated hour during fall-back) are resolved
//     by inference from surrounding values in the same column;
//   - nonexistent local times (the skipped hour during spring-forward) are
//     shifted forward to the first valid instant after the gap.
type DateNormalizer struct {
	loc *time.Location
}

// NewDateNormalizer builds a normalizer targeting the given zone.
func NewDateNormalizer(loc *time.Location) *DateNormalizer {
	return &DateNormalizer{loc: loc}
}

// Apply parses every recognized date column of the mapped table. Unparseable
// values become nil and are counted into a per-column warning. A column-level
// localization failure is non-fatal: the column is kept unlocalized (wall
// clock attached to UTC) and a warning carrying the error text is appended.
// Columns not recognized as date fields are left untouched.
func (n *DateNormalizer) Apply(t *Table) (map[string][]*time.Time, []string) {
	out := make(map[string][]*time.Time, len(DateFields))
	var warnings []string
	for _, field := range DateFields {
		col, ok := t.Column(field)
		if !ok {
			continue
		}
		parsed := make([]*time.Time, len(col))
		failures := 0
		for i, raw := range col {
			v := strings.TrimSpace(raw)
			if v == "" {
				failures++
				continue
			}
			ts, err := dateparse.ParseIn(v, time.UTC)
			if err != nil {
				failures++
				continue
			}
			parsed[i] = &ts
		}
		if failures > 0 {
			warnings = append(warnings, fmt.Sprintf("Failed to parse %d dates in %s", failures, field))
		}
		localized, err := n.localizeColumn(parsed)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Error parsing %s: %v", field, err))
			out[field] = parsed
			continue
		}
		out[field] = localized
	}
	return out, warnings
}

// localizeColumn localizes every parsed value of one column. Values that
// already carry a zone offset are converted; naive values go through the DST
// policies. An ambiguity that cannot be resolved from context fails the
// whole column, mirroring the column-wise localization of the source system.
func (n *DateNormalizer) localizeColumn(vals []*time.Time) ([]*time.Time, error) {
	out := make([]*time.Time, len(vals))
	var prevOffset *int
	for i, v := range vals {
		if v == nil {
			continue
		}
		if _, off := v.Zone(); off != 0 {
			lv := v.In(n.loc)
			out[i] = &lv
			_, o := lv.Zone()
			prevOffset = &o
			continue
		}
		resolved, err := n.localize(*v, prevOffset, vals[i+1:])
		if err != nil {
			return nil, err
		}
		out[i] = &resolved
		_, o := resolved.Zone()
		prevOffset = &o
	}
	return out, nil
}

// localize maps one naive wall-clock reading into the schedule zone.
func (n *DateNormalizer) localize(wall time.Time, prevOffset *int, rest []*time.Time) (time.Time, error) {
	cands := n.candidates(wall)
	switch len(cands) {
	case 1:
		return cands[0], nil
	case 0:
		return n.shiftForward(wall), nil
	}

	// Ambiguous: prefer the offset of the nearest previously resolved value.
	if prevOffset != nil {
		for _, c := range cands {
			if _, off := c.Zone(); off == *prevOffset {
				return c, nil
			}
		}
	}
	// Otherwise infer from the next unambiguous value in the column.
	for _, nx := range rest {
		if nx == nil {
			continue
		}
		if _, off := nx.Zone(); off != 0 {
			continue
		}
		nc := n.candidates(*nx)
		if len(nc) != 1 {
			continue
		}
		_, off := nc[0].Zone()
		for _, c := range cands {
			if _, o := c.Zone(); o == off {
				return c, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("cannot infer DST offset for ambiguous local time %s",
		wall.Format("2006-01-02 15:04:05"))
}

// candidates returns every instant in the schedule zone whose wall clock
// matches the given reading: one for a normal time, two for an ambiguous
// time, none for a nonexistent time. Results are in instant order.
func (n *DateNormalizer) candidates(wall time.Time) []time.Time {
	y, mo, d := wall.Date()
	h, mi, s := wall.Clock()
	guess := time.Date(y, mo, d, h, mi, s, wall.Nanosecond(), n.loc)

	var cands []time.Time
	seen := make(map[int64]bool)
	for _, probe := range []time.Time{guess.Add(-24 * time.Hour), guess, guess.Add(24 * time.Hour)} {
		_, off := probe.Zone()
		c := time.Date(y, mo, d, h, mi, s, wall.Nanosecond(), time.FixedZone("", off)).In(n.loc)
		if !sameWall(c, wall) || seen[c.UnixNano()] {
			continue
		}
		seen[c.UnixNano()] = true
		cands = append(cands, c)
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].Before(cands[j]) })
	return cands
}

// shiftForward resolves a nonexistent wall-clock reading to the first valid
// instant after the DST gap, found by binary-searching the zone transition.
func (n *DateNormalizer) shiftForward(wall time.Time) time.Time {
	y, mo, d := wall.Date()
	h, mi, s := wall.Clock()
	guess := time.Date(y, mo, d, h, mi, s, wall.Nanosecond(), n.loc)

	_, offBefore := guess.Add(-24 * time.Hour).Zone()
	_, offAfter := guess.Add(24 * time.Hour).Zone()
	if offBefore == offAfter {
		return guess
	}

	lo := time.Date(y, mo, d, h, mi, s, 0, time.FixedZone("", offAfter)).Unix()
	hi := time.Date(y, mo, d, h, mi, s, 0, time.FixedZone("", offBefore)).Unix()
	if hi < lo {
		lo, hi = hi, lo
	}
	// Invariant: lo is before the transition, hi at or after it. Zone
	// transitions fall on whole seconds, so integer search is exact.
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if _, off := time.Unix(mid, 0).In(n.loc).Zone(); off == offBefore {
			lo = mid
		} else {
			hi = mid
		}
	}
	return time.Unix(hi, 0).In(n.loc)
}

// sameWall reports whether a localized instant reads the same wall clock as
// the naive value it came from.
func sameWall(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by || am != bm || ad != bd {
		return false
	}
	ah, ami, as := a.Clock()
	bh, bmi, bs := b.Clock()
	return ah == bh && ami == bmi && as == bs
}
