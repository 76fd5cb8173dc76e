// Package dates finds date-referring phrases in chat text and resolves them to calendar days
// relative to a reference instant.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// extractionPatterns are applied in order; the order is the priority of the returned phrases.
var extractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:today|tomorrow|yesterday)\b`),
	regexp.MustCompile(`\b(?:next|this)\s+(?:week|month|year)\b`),
	regexp.MustCompile(`\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun)\b`),
	regexp.MustCompile(`\bin\s+\d+\s+days?\b`),
	regexp.MustCompile(`\b\d+\s+days?\s+from\s+now\b`),
	regexp.MustCompile(`\bafter\s+\d+\s+days?\b`),
	regexp.MustCompile(`\b\d{1,4}[/.-]\d{1,2}(?:[/.-]\d{1,4})?\b`),
}

var (
	todayPattern     = regexp.MustCompile(`\btoday\b`)
	tomorrowPattern  = regexp.MustCompile(`\btomorrow\b`)
	yesterdayPattern = regexp.MustCompile(`\byesterday\b`)
	nextWeekPattern  = regexp.MustCompile(`\bnext\s+week\b`)
	thisWeekPattern  = regexp.MustCompile(`\bthis\s+week\b`)
	nextMonthPattern = regexp.MustCompile(`\bnext\s+month\b`)
	nextYearPattern  = regexp.MustCompile(`\bnext\s+year\b`)
	weekdayPattern   = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun)\b`)
	numericPattern   = regexp.MustCompile(`\b\d{1,4}[/.-]\d{1,2}(?:[/.-]\d{1,4})?\b`)

	relativeDayPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bin\s+(\d+)\s+days?\b`),
		regexp.MustCompile(`\b(\d+)\s+days?\s+from\s+now\b`),
		regexp.MustCompile(`\bafter\s+(\d+)\s+days?\b`),
	}
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// numericLayout is one accepted numeric date format
type numericLayout struct {
	layout  string
	hasYear bool
}

// numericLayouts are tried in order and the first successful parse wins.
// Day-first layouts only succeed where the month-first reading is impossible.
var numericLayouts = []numericLayout{
	{"1/2/2006", true},
	{"1-2-2006", true},
	{"1.2.2006", true},
	{"2006-1-2", true},
	{"2006/1/2", true},
	{"2006.1.2", true},
	{"1/2/06", true},
	{"1-2-06", true},
	{"2/1/2006", true},
	{"2-1-2006", true},
	{"1/2", false},
	{"1-2", false},
	{"1.2", false},
}

// ExtractPhrases returns every date-referring phrase found in text, lower-cased.
// Phrases are grouped by pattern priority and ordered left to right within a pattern;
// duplicates are kept.
func ExtractPhrases(text string) []string {
	lower := strings.ToLower(text)

	var phrases []string
	for _, pattern := range extractionPatterns {
		phrases = append(phrases, pattern.FindAllString(lower, -1)...)
	}
	return phrases
}

// Resolve converts a date phrase to the start of the day it refers to, relative to ref.
// The result is in ref's location. It returns false when the phrase is not understood.
func Resolve(phrase string, ref time.Time) (time.Time, bool) {
	text := strings.ToLower(strings.TrimSpace(phrase))
	if text == "" {
		return time.Time{}, false
	}

	day := StartOfDay(ref)

	switch {
	case todayPattern.MatchString(text):
		return day, true
	case tomorrowPattern.MatchString(text):
		return day.AddDate(0, 0, 1), true
	case yesterdayPattern.MatchString(text):
		return day.AddDate(0, 0, -1), true
	case nextWeekPattern.MatchString(text):
		return day.AddDate(0, 0, 7), true
	case thisWeekPattern.MatchString(text):
		return day, true
	}

	if m := weekdayPattern.FindStringSubmatch(text); m != nil {
		return nextWeekday(day, weekdays[m[1]]), true
	}

	if days, ok := relativeDays(text); ok {
		return day.AddDate(0, 0, days), true
	}

	switch {
	case nextMonthPattern.MatchString(text):
		return addMonthsClamped(day, 1), true
	case nextYearPattern.MatchString(text):
		return addMonthsClamped(day, 12), true
	}

	if literal := numericPattern.FindString(text); literal != "" {
		return parseNumeric(literal, day)
	}

	return time.Time{}, false
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// nextWeekday returns the first day strictly after day that falls on target
func nextWeekday(day time.Time, target time.Weekday) time.Time {
	ahead := int(target) - int(day.Weekday())
	if ahead <= 0 {
		ahead += 7
	}
	return day.AddDate(0, 0, ahead)
}

func relativeDays(text string) (int, bool) {
	for _, pattern := range relativeDayPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// addMonthsClamped moves day forward by n calendar months, keeping the day of month
// or clamping it to the last day of the target month.
func addMonthsClamped(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, day.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, day.Location())
}

func parseNumeric(literal string, day time.Time) (time.Time, bool) {
	for _, candidate := range numericLayouts {
		parsed, err := time.Parse(candidate.layout, literal)
		if err != nil {
			continue
		}

		if candidate.hasYear {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, day.Location()), true
		}

		resolved, ok := dateInYear(day.Year(), parsed.Month(), parsed.Day(), day.Location())
		if !ok {
			return time.Time{}, false
		}
		if resolved.Before(day) {
			resolved, ok = dateInYear(day.Year()+1, parsed.Month(), parsed.Day(), day.Location())
			if !ok {
				return time.Time{}, false
			}
		}
		return resolved, true
	}
	return time.Time{}, false
}

// dateInYear builds the date and reports false when it does not exist in that year (Feb 29)
func dateInYear(year int, month time.Month, d int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, d, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
