package dates

import (
	"reflect"
	"testing"
	"time"
)

// 2024-01-01 is a Monday
var monday = time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractPhrases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no dates",
			text: "Buy milk and eggs",
			want: nil,
		},
		{
			name: "absolute keyword",
			text: "Remind me to call mom tomorrow at 5pm, high priority.",
			want: []string{"tomorrow"},
		},
		{
			name: "pattern priority before scan order",
			text: "On 3/15 or friday, not later than next week, maybe Today",
			want: []string{"today", "next week", "friday", "3/15"},
		},
		{
			name: "duplicates preserved",
			text: "today and today again",
			want: []string{"today", "today"},
		},
		{
			name: "relative counts",
			text: "in 3 days, 5 days from now or after 2 days",
			want: []string{"in 3 days", "5 days from now", "after 2 days"},
		},
		{
			name: "month does not match mon",
			text: "Pay rent next month",
			want: []string{"next month"},
		},
		{
			name: "numeric variants",
			text: "between 2024-02-10 and 12.31.2024",
			want: []string{"2024-02-10", "12.31.2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractPhrases(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractPhrases(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		phrase string
		ref    time.Time
		want   time.Time
		ok     bool
	}{
		{"today", "today", monday, day(2024, 1, 1), true},
		{"tomorrow", "Tomorrow", monday, day(2024, 1, 2), true},
		{"yesterday", "yesterday", monday, day(2023, 12, 31), true},
		{"next week", "next week", monday, day(2024, 1, 8), true},
		{"this week", "this week", monday, day(2024, 1, 1), true},
		{"weekday later this week", "friday", monday, day(2024, 1, 5), true},
		{"abbreviated weekday", "wed", monday, day(2024, 1, 3), true},
		{"same weekday is a week out", "monday", monday, day(2024, 1, 8), true},
		{"earlier weekday wraps", "sunday", monday, day(2024, 1, 7), true},
		{"in n days", "in 3 days", monday, day(2024, 1, 4), true},
		{"in one day", "in 1 day", monday, day(2024, 1, 2), true},
		{"n days from now", "10 days from now", monday, day(2024, 1, 11), true},
		{"after n days", "after 31 days", monday, day(2024, 2, 1), true},
		{"next month", "next month", monday, day(2024, 2, 1), true},
		{"next month clamps", "next month", time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), day(2024, 2, 29), true},
		{"next month over year end", "next month", time.Date(2024, 12, 15, 8, 0, 0, 0, time.UTC), day(2025, 1, 15), true},
		{"next year", "next year", monday, day(2025, 1, 1), true},
		{"this month unresolved", "this month", monday, time.Time{}, false},
		{"month first with year", "3/15/2024", monday, day(2024, 3, 15), true},
		{"dash with year", "03-15-2024", monday, day(2024, 3, 15), true},
		{"dot with year", "3.15.2024", monday, day(2024, 3, 15), true},
		{"iso", "2024-07-04", monday, day(2024, 7, 4), true},
		{"two digit year", "7/4/25", monday, day(2025, 7, 4), true},
		{"day first when month impossible", "25/12/2024", monday, day(2024, 12, 25), true},
		{"no year stays in reference year", "3/15", monday, day(2024, 3, 15), true},
		{"no year rolls forward when past", "3/15", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), day(2025, 3, 15), true},
		{"no year same day is kept", "6/1", time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC), day(2024, 6, 1), true},
		{"leap day outside leap year", "2/29", time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), time.Time{}, false},
		{"invalid numeric", "13/45", monday, time.Time{}, false},
		{"not a date", "groceries", monday, time.Time{}, false},
		{"empty", "   ", monday, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Resolve(tt.phrase, tt.ref)
			if ok != tt.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v (got %v)", tt.phrase, ok, tt.ok, got)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.phrase, got, tt.want)
			}
		})
	}
}

func TestResolve_WeekdayAlwaysWithinNextSevenDays(t *testing.T) {
	t.Parallel()

	names := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

	for offset := 0; offset < 14; offset++ {
		ref := time.Date(2024, 2, 20, 23, 59, 0, 0, time.UTC).AddDate(0, 0, offset)
		refDay := StartOfDay(ref)
		for _, name := range names {
			got, ok := Resolve(name, ref)
			if !ok {
				t.Fatalf("Resolve(%q, %v) was not resolved", name, ref)
			}
			if !got.After(refDay) {
				t.Errorf("Resolve(%q, %v) = %v, expected a day after the reference day", name, ref, got)
			}
			if got.After(refDay.AddDate(0, 0, 7)) {
				t.Errorf("Resolve(%q, %v) = %v, expected at most 7 days ahead", name, ref, got)
			}
			if _, exists := weekdays[name]; exists && got.Weekday() != weekdays[name] {
				t.Errorf("Resolve(%q) landed on %s", name, got.Weekday())
			}
		}
	}
}

func TestResolve_UsesReferenceLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-8", -8*60*60)
	ref := time.Date(2024, 1, 1, 22, 0, 0, 0, loc)

	got, ok := Resolve("tomorrow", ref)
	if !ok {
		t.Fatal("Expected tomorrow to resolve")
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Errorf("Resolve(tomorrow) = %v, want %v", got, want)
	}
}
