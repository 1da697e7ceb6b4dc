package schedule

import "time"

// Next computes the occurrence after from, preserving the time of day.
// The boolean is false when the series has ended: the rule is one-shot
// or the next occurrence would fall past EndDate.
func (r Recurrence) Next(from time.Time) (time.Time, bool) {
	if !r.Recurring() {
		return time.Time{}, false
	}

	var next time.Time
	switch r.Frequency {
	case FrequencyDaily:
		next = from.AddDate(0, 0, r.interval())
	case FrequencyWeekly:
		next = r.nextWeekly(from)
	case FrequencyMonthly:
		next = r.nextMonthly(from)
	default:
		return time.Time{}, false
	}

	if r.EndDate != nil && next.After(*r.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// nextWeekly advances to the next allowed weekday strictly after from.
// Without a DaysOfWeek restriction the cadence is a whole number of weeks.
func (r Recurrence) nextWeekly(from time.Time) time.Time {
	days := r.sortedDays()
	if len(days) == 0 {
		return from.AddDate(0, 0, 7*r.interval())
	}

	weekday := int(from.Weekday())
	for _, d := range days {
		if d > weekday {
			return from.AddDate(0, 0, d-weekday)
		}
	}
	// Wrap to the first allowed day of the following week.
	return from.AddDate(0, 0, 7-weekday+days[0])
}

// nextMonthly advances by whole months. A DayOfMonth pin is clamped to
// the target month's length so a 31st-of-month schedule still fires in
// February.
func (r Recurrence) nextMonthly(from time.Time) time.Time {
	// Anchor at the first of the month so AddDate cannot spill into the
	// month after next (e.g. Jan 31 + 1 month would normalize to Mar 3).
	anchor := time.Date(from.Year(), from.Month(), 1,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
	target := anchor.AddDate(0, r.interval(), 0)

	day := r.DayOfMonth
	if day == 0 {
		day = from.Day()
	}
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return target.AddDate(0, 0, day-1)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
