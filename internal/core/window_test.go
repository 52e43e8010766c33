package core

import (
	"testing"
	"time"
)

func TestStatementWindowStart(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, loc)

	cases := []struct {
		w    StatementWindow
		want time.Time
	}{
		{Today, time.Date(2025, 3, 15, 0, 0, 0, 0, loc)},
		{Last7Days, time.Date(2025, 3, 8, 14, 30, 0, 0, loc)},
		{CurrentMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		if got := tc.w.Start(now, loc); !got.Equal(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.w, got, tc.want)
		}
	}
}

func TestStatementWindowStartUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC is still the previous day in BRT.
	now := time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC)
	got := Today.Start(now, loc)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
