package service

import (
	"time"

	"venueplanner/modules/recurring/entity"
)

// NextOccurrence computes the next date the template fires. With a nil
// reference it returns the first occurrence, which is the start date itself
// when that date matches the pattern. Otherwise it returns the first match
// strictly after the reference. Nil means the series has ended.
func NextOccurrence(t *entity.RecurringEventTemplate, after *time.Time) *time.Time {
	var next *time.Time

	switch t.Pattern {
	case entity.PatternDaily:
		next = nextDaily(t.StartDate, after)
	case entity.PatternWeekly:
		next = nextWeekly(t, after)
	case entity.PatternMonthly:
		next = nextMonthly(t, after)
	case entity.PatternYearly:
		next = nextYearly(t.StartDate, after)
	default:
		return nil
	}

	if next == nil {
		return nil
	}
	if t.EndDate != nil && next.After(*t.EndDate) {
		return nil
	}
	return next
}

func nextDaily(start time.Time, after *time.Time) *time.Time {
	if after == nil || after.Before(start) {
		return &start
	}
	next := start
	for !next.After(*after) {
		next = next.AddDate(0, 0, 1)
	}
	return &next
}

func nextWeekly(t *entity.RecurringEventTemplate, after *time.Time) *time.Time {
	// No day-of-week filter: fire every seven days from the start date.
	if len(t.DaysOfWeek) == 0 {
		if after == nil || after.Before(t.StartDate) {
			start := t.StartDate
			return &start
		}
		next := t.StartDate
		for !next.After(*after) {
			next = next.AddDate(0, 0, 7)
		}
		return &next
	}

	allowed := make(map[time.Weekday]bool, len(t.DaysOfWeek))
	for _, d := range t.DaysOfWeek {
		allowed[time.Weekday(d)] = true
	}

	cursor := t.StartDate
	if after != nil && !after.Before(t.StartDate) {
		for !cursor.After(*after) {
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	// At most one full week of scanning is ever needed.
	for i := 0; i < 8; i++ {
		if allowed[cursor.Weekday()] {
			return &cursor
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return nil
}

func nextMonthly(t *entity.RecurringEventTemplate, after *time.Time) *time.Time {
	day := t.StartDate.Day()
	if t.DayOfMonth != nil {
		day = *t.DayOfMonth
	}

	candidate := onDayOfMonth(t.StartDate, t.StartDate.Year(), t.StartDate.Month(), day)
	if candidate.Before(t.StartDate) {
		candidate = advanceMonth(t.StartDate, candidate, day)
	}
	if after == nil {
		return &candidate
	}
	for !candidate.After(*after) {
		candidate = advanceMonth(t.StartDate, candidate, day)
	}
	return &candidate
}

func advanceMonth(start, current time.Time, day int) time.Time {
	year, month := current.Year(), current.Month()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	return onDayOfMonth(start, year, month, day)
}

// onDayOfMonth clamps the requested day to the month's length, so a template
// on the 31st fires on the 30th (or 28th/29th) in shorter months.
func onDayOfMonth(start time.Time, year int, month time.Month, day int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, start.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day,
		start.Hour(), start.Minute(), start.Second(), 0, start.Location())
}

func nextYearly(start time.Time, after *time.Time) *time.Time {
	if after == nil || after.Before(start) {
		return &start
	}
	next := start
	for !next.After(*after) {
		next = time.Date(next.Year()+1, start.Month(), start.Day(),
			start.Hour(), start.Minute(), start.Second(), 0, start.Location())
		// Feb 29 start dates land on Mar 1 in non-leap years via normalization.
	}
	return &next
}
