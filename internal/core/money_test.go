package core

import "testing"

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1250, "12.50"},
		{100000, "1000.00"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := FormatMinor(tc.in); got != tc.out {
			t.Fatalf("FormatMinor(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestParseWholeUnits(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{" 12 ", 1200, true},
		{"0", 0, true},
		{"1.5", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"92233720368547759", 0, false}, // overflows once scaled
	}
	for _, tc := range cases {
		got, err := ParseWholeUnits(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseMinor(t *testing.T) {
	if got, err := ParseMinor("4599"); err != nil || got != 4599 {
		t.Fatalf("expected 4599, got %d (err=%v)", got, err)
	}
	if _, err := ParseMinor("45.99"); err == nil {
		t.Fatalf("expected error for fractional minor units")
	}
}
