package core

import "fmt"

// Selection is the (kind, label, year) tuple picked in the dashboard. It is
// owned by the caller; every transition returns a new value.
type Selection struct {
	Kind  PeriodKind `json:"kind"`
	Label string     `json:"label"`
	Year  string     `json:"year"`
}

// EventType names the field a selection event changes.
type EventType string

const (
	EventKind  EventType = "kind"
	EventLabel EventType = "label"
	EventYear  EventType = "year"
)

// Event is a single dropdown pick.
type Event struct {
	Type  EventType `json:"type"`
	Value string    `json:"value"`
}

func DefaultSelection() Selection {
	return Selection{Kind: Monthly, Label: Options(Monthly)[0], Year: DefaultYear}
}

// WithKind switches kind and resets label to the first option of the new
// kind and year to DefaultYear.
func (s Selection) WithKind(k PeriodKind) (Selection, error) {
	if !k.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownPeriodKind, k)
	}
	return Selection{Kind: k, Label: Options(k)[0], Year: DefaultYear}, nil
}

func (s Selection) WithLabel(label string) (Selection, error) {
	if !IsOption(s.Kind, label) {
		return s, fmt.Errorf("%w: %q for %s", ErrUnknownLabel, label, s.Kind)
	}
	s.Label = label
	return s, nil
}

func (s Selection) WithYear(year string) (Selection, error) {
	if !IsYear(year) {
		return s, fmt.Errorf("%w: %q", ErrUnknownYear, year)
	}
	s.Year = year
	return s, nil
}

// Apply dispatches an event to the matching transition.
func (s Selection) Apply(e Event) (Selection, error) {
	switch e.Type {
	case EventKind:
		k, err := ParsePeriodKind(e.Value)
		if err != nil {
			return s, err
		}
		return s.WithKind(k)
	case EventLabel:
		return s.WithLabel(e.Value)
	case EventYear:
		return s.WithYear(e.Value)
	}
	return s, fmt.Errorf("unknown selection event %q", e.Type)
}

// Validate reports a selection outside the closed option sets. Annually
// ignores the year, which may be empty.
func (s Selection) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPeriodKind, s.Kind)
	}
	if !IsOption(s.Kind, s.Label) {
		return fmt.Errorf("%w: %q for %s", ErrUnknownLabel, s.Label, s.Kind)
	}
	if s.Kind == Annually && s.Year == "" {
		return nil
	}
	if !IsYear(s.Year) {
		return fmt.Errorf("%w: %q", ErrUnknownYear, s.Year)
	}
	return nil
}

// Key is the lookup key for the current selection.
func (s Selection) Key() PeriodKey {
	return NewPeriodKey(s.Kind, s.Label, s.Year)
}
