package core

import "testing"

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0.25", 25, true},
		{"0,25", 25, true},
		{"178.5", 17850, true},
		{"180", 18000, true},
		{"1.005", 101, true}, // half-up on third decimal
		{"1.004", 100, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: expected ok, got %v", tc.in, err)
			}
			if got.Hundredths != tc.want {
				t.Fatalf("%q: got %d, want %d", tc.in, got.Hundredths, tc.want)
			}
		} else if err == nil {
			t.Fatalf("%q: expected error, got %d", tc.in, got.Hundredths)
		}
	}
}

func TestDecimalString(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{25, "0.25"},
		{17850, "178.5"},
		{18000, "180"},
		{-150, "-1.5"},
	}
	for _, tc := range cases {
		if got := (Decimal{Hundredths: tc.in}).String(); got != tc.want {
			t.Fatalf("%d: got %q, want %q", tc.in, got, tc.want)
		}
	}
}
