package timex

import "time"

// CalendarDiff splits the interval between two instants into whole years,
// months and days the way a wall calendar does. Both instants are compared in
// UTC and the result is the same regardless of argument order.
//
// When the day component goes negative it borrows the length of the earlier
// date's month (then the month after it, and so on), so 01-31 to 03-01 is one
// month and one day.
func CalendarDiff(from, to time.Time) (years, months, days int) {
	from, to = from.UTC(), to.UTC()
	if to.Before(from) {
		from, to = to, from
	}

	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()

	years = y2 - y1
	months = int(m2) - int(m1)
	days = d2 - d1

	// a partial day does not count
	if clockOf(to) < clockOf(from) {
		days--
	}

	borrow := int(m1)
	for days < 0 {
		months--
		days += daysIn(y1, borrow)
		borrow++
	}

	for months < 0 {
		years--
		months += 12
	}

	return years, months, days
}

// ThirtyDayAge returns the age of an interval as months*30 + days, with whole
// years folded into months. This is the unit the token expiry policy is
// expressed in.
func ThirtyDayAge(from, to time.Time) int {
	y, m, d := CalendarDiff(from, to)
	return (y*12+m)*30 + d
}

func clockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}

// daysIn accepts out-of-range months; time.Date normalizes them.
func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
