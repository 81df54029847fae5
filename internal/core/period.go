package core

import (
	"fmt"
	"net/url"
	"strings"
)

// PeriodKind is the time granularity of a dashboard selection.
type PeriodKind string

const (
	Monthly   PeriodKind = "monthly"
	Quarterly PeriodKind = "quarterly"
	Annually  PeriodKind = "annually"
)

// DefaultYear is the year preselected for Monthly and Quarterly periods.
const DefaultYear = "2024"

var (
	kinds    = []PeriodKind{Monthly, Quarterly, Annually}
	years    = []string{"2024", "2023", "2022", "2021"}
	quarters = []string{"Q1", "Q2", "Q3", "Q4"}
	months   = []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
)

// Kinds returns every supported period kind in display order.
func Kinds() []PeriodKind {
	return append([]PeriodKind(nil), kinds...)
}

// ParsePeriodKind accepts the wire form ("monthly") or the display form
// ("Monthly") of a kind.
func ParsePeriodKind(s string) (PeriodKind, error) {
	k := PeriodKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriodKind, s)
	}
	return k, nil
}

// Canonical returns the wire form of k, accepting the display form in any
// case. Unknown kinds come back unchanged so Validate can report them.
func (k PeriodKind) Canonical() PeriodKind {
	if c, err := ParsePeriodKind(string(k)); err == nil {
		return c
	}
	return k
}

func (k PeriodKind) Valid() bool {
	switch k {
	case Monthly, Quarterly, Annually:
		return true
	}
	return false
}

func (k PeriodKind) String() string { return string(k) }

// DisplayName returns the capitalised name shown in the period dropdown.
func (k PeriodKind) DisplayName() string {
	switch k {
	case Monthly:
		return "Monthly"
	case Quarterly:
		return "Quarterly"
	case Annually:
		return "Annually"
	}
	return ""
}

// DerivedLabel returns the unit noun for the kind: month, quarter or year.
// Only the three known kinds are mapped; anything else yields "".
func (k PeriodKind) DerivedLabel() string {
	switch k {
	case Monthly:
		return "month"
	case Quarterly:
		return "quarter"
	case Annually:
		return "year"
	}
	return ""
}

// Description is the stat card caption, e.g. "This quarter".
func (k PeriodKind) Description() string {
	if l := k.DerivedLabel(); l != "" {
		return "This " + l
	}
	return ""
}

// Years returns the selectable years, most recent first.
func Years() []string {
	return append([]string(nil), years...)
}

// Options returns the closed label set for a kind. Annually periods are
// labelled by year.
func Options(k PeriodKind) []string {
	switch k {
	case Monthly:
		return append([]string(nil), months...)
	case Quarterly:
		return append([]string(nil), quarters...)
	case Annually:
		return Years()
	}
	return nil
}

// IsOption reports whether label belongs to the option set of k.
func IsOption(k PeriodKind, label string) bool {
	for _, o := range Options(k) {
		if o == label {
			return true
		}
	}
	return false
}

// IsYear reports whether y is one of the selectable years.
func IsYear(y string) bool {
	for _, v := range years {
		if v == y {
			return true
		}
	}
	return false
}

// PeriodKey identifies one dataset. Keys are comparable and safe to use as
// map keys. Annually keys carry the year in Label and leave Year empty.
type PeriodKey struct {
	Kind  PeriodKind `json:"kind"`
	Label string     `json:"label"`
	Year  string     `json:"year,omitempty"`
}

// NewPeriodKey builds the lookup key for a selection. The year is dropped
// for Annually since it is already the label.
func NewPeriodKey(kind PeriodKind, label, year string) PeriodKey {
	if kind == Annually {
		return PeriodKey{Kind: kind, Label: label}
	}
	return PeriodKey{Kind: kind, Label: label, Year: year}
}

// DefaultKey is the key a lookup falls back to when the requested period is
// missing: January 2024, Q1 2024, or the most recent year.
func DefaultKey(kind PeriodKind) PeriodKey {
	switch kind {
	case Monthly:
		return NewPeriodKey(Monthly, months[0], DefaultYear)
	case Quarterly:
		return NewPeriodKey(Quarterly, quarters[0], DefaultYear)
	case Annually:
		return NewPeriodKey(Annually, years[0], "")
	}
	return PeriodKey{}
}

// String renders the key as kind:label[:year] with every component escaped,
// so a label containing ':' cannot collide with another key.
func (k PeriodKey) String() string {
	var b strings.Builder
	b.WriteString(url.QueryEscape(string(k.Kind)))
	b.WriteByte(':')
	b.WriteString(url.QueryEscape(k.Label))
	if k.Year != "" {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(k.Year))
	}
	return b.String()
}

// ParsePeriodKey is the inverse of PeriodKey.String.
func ParsePeriodKey(s string) (PeriodKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return PeriodKey{}, fmt.Errorf("malformed period key %q", s)
	}
	unescaped := make([]string, len(parts))
	for i, p := range parts {
		v, err := url.QueryUnescape(p)
		if err != nil {
			return PeriodKey{}, fmt.Errorf("malformed period key %q: %w", s, err)
		}
		unescaped[i] = v
	}
	kind, err := ParsePeriodKind(unescaped[0])
	if err != nil {
		return PeriodKey{}, err
	}
	year := ""
	if len(unescaped) == 3 {
		year = unescaped[2]
	}
	return NewPeriodKey(kind, unescaped[1], year), nil
}
