package world

import "testing"

func TestClockAdvanceWrapsAtMidnight(t *testing.T) {
	c := Clock{Minutes: 1439, Day: 3}
	if wraps := c.Advance(1, 2); wraps != 1 {
		t.Fatalf("expected one wrap, got %d", wraps)
	}
	if c.Day != 4 || c.Minutes != 1 {
		t.Fatalf("unexpected clock %+v", c)
	}
}

func TestClockDaytimeWindow(t *testing.T) {
	cases := []struct {
		minutes float64
		day     bool
	}{
		{359.9, false},
		{360, true},
		{1199.9, true},
		{1200, false},
		{0, false},
	}
	for _, tc := range cases {
		c := Clock{Minutes: tc.minutes, Day: 1}
		if got := c.IsDaytime(); got != tc.day {
			t.Fatalf("minutes=%v: IsDaytime=%v want %v", tc.minutes, got, tc.day)
		}
	}
}

func TestClockIgnoresNonPositiveInput(t *testing.T) {
	c := NewClock()
	if c.Advance(-1, 6) != 0 || c.Advance(1, 0) != 0 || c.Minutes != 360 {
		t.Fatalf("clock moved on bad input: %+v", c)
	}
	if got := c.String(); got != "Day 1 06:00" {
		t.Fatalf("String=%q", got)
	}
}
