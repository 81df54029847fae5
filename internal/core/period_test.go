package core

import (
	"errors"
	"testing"
)

func TestDerivedLabel(t *testing.T) {
	cases := map[PeriodKind]string{
		Monthly:   "month",
		Quarterly: "quarter",
		Annually:  "year",
		"weekly":  "",
	}
	for k, want := range cases {
		if got := k.DerivedLabel(); got != want {
			t.Fatalf("%q: expected %q, got %q", k, want, got)
		}
	}
	if got := Quarterly.Description(); got != "This quarter" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestParsePeriodKind(t *testing.T) {
	cases := []struct {
		in   string
		want PeriodKind
		ok   bool
	}{
		{"monthly", Monthly, true},
		{"Quarterly", Quarterly, true},
		{" ANNUALLY ", Annually, true},
		{"weekly", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParsePeriodKind(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrUnknownPeriodKind) {
			t.Fatalf("%q expected ErrUnknownPeriodKind, got %v", tc.in, err)
		}
	}
}

func TestNewPeriodKey(t *testing.T) {
	m := NewPeriodKey(Monthly, "January", "2024")
	if m.Year != "2024" || m.Label != "January" {
		t.Fatalf("unexpected monthly key %+v", m)
	}
	a := NewPeriodKey(Annually, "2023", "2024")
	if a.Year != "" || a.Label != "2023" {
		t.Fatalf("annual key must ignore year, got %+v", a)
	}
	if NewPeriodKey(Annually, "2023", "2021") != a {
		t.Fatalf("annual keys with different years should be equal")
	}
}

func TestPeriodKeyStringNoCollision(t *testing.T) {
	a := NewPeriodKey(Monthly, "Jan:2024", "2023")
	b := NewPeriodKey(Monthly, "Jan", "2024:2023")
	if a.String() == b.String() {
		t.Fatalf("keys collide: %s", a.String())
	}
	if got := NewPeriodKey(Monthly, "January", "2024").String(); got != "monthly:January:2024" {
		t.Fatalf("unexpected key string %q", got)
	}
	for _, k := range []PeriodKey{a, b, DefaultKey(Annually)} {
		back, err := ParsePeriodKey(k.String())
		if err != nil {
			t.Fatalf("parse %q: %v", k.String(), err)
		}
		if back != k {
			t.Fatalf("expected %+v, got %+v", k, back)
		}
	}
}

func TestDefaultKey(t *testing.T) {
	cases := map[PeriodKind]PeriodKey{
		Monthly:   {Kind: Monthly, Label: "January", Year: "2024"},
		Quarterly: {Kind: Quarterly, Label: "Q1", Year: "2024"},
		Annually:  {Kind: Annually, Label: "2024"},
	}
	for k, want := range cases {
		if got := DefaultKey(k); got != want {
			t.Fatalf("%s: expected %+v, got %+v", k, want, got)
		}
	}
}

func TestOptions(t *testing.T) {
	if got := Options(Monthly); len(got) != 12 || got[0] != "January" {
		t.Fatalf("unexpected monthly options %v", got)
	}
	if got := Options(Quarterly); len(got) != 4 || got[0] != "Q1" {
		t.Fatalf("unexpected quarterly options %v", got)
	}
	if got := Options(Annually); len(got) != 4 || got[0] != "2024" {
		t.Fatalf("unexpected annual options %v", got)
	}
	opts := Options(Monthly)
	opts[0] = "mutated"
	if Options(Monthly)[0] != "January" {
		t.Fatalf("options must be copied")
	}
}

func TestPeriodKindCanonical(t *testing.T) {
	tests := map[PeriodKind]PeriodKind{
		"Monthly":    Monthly,
		"QUARTERLY":  Quarterly,
		" annually ": Annually,
		"monthly":    Monthly,
		"weekly":     "weekly",
	}
	for in, want := range tests {
		if got := in.Canonical(); got != want {
			t.Errorf("%q.Canonical() = %q, want %q", in, got, want)
		}
	}
}
