package gate

import "time"

// marketHolidays returns the US equity market holidays for one year,
// keyed by date at midnight UTC. The set is computed, not tabulated:
// fixed-date holidays take their weekend-observance shift, the
// nth-weekday holidays are derived, and Good Friday comes off the
// Easter computus. A New Year's Day falling on a Saturday is observed
// on the prior December 31, so each year also carries the next year's
// shifted observance when it lands in December.
func marketHolidays(year int) map[time.Time]string {
	h := map[time.Time]string{}

	add := func(d time.Time, name string) {
		h[d] = name
	}

	add(observed(date(year, time.January, 1)), "New Year's Day")
	if next := observed(date(year+1, time.January, 1)); next.Year() == year {
		add(next, "New Year's Day")
	}
	add(nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day")
	add(nthWeekday(year, time.February, time.Monday, 3), "Presidents' Day")
	add(easter(year).AddDate(0, 0, -2), "Good Friday")
	add(lastWeekday(year, time.May, time.Monday), "Memorial Day")
	add(observed(date(year, time.June, 19)), "Juneteenth")
	add(observed(date(year, time.July, 4)), "Independence Day")
	add(nthWeekday(year, time.September, time.Monday, 1), "Labor Day")
	add(nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day")
	add(observed(date(year, time.December, 25)), "Christmas Day")

	return h
}

// holidayName reports the holiday observed on the given calendar day,
// if any.
func holidayName(t time.Time) (string, bool) {
	d := date(t.Year(), t.Month(), t.Day())
	name, ok := marketHolidays(t.Year())[d]
	return name, ok
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// observed shifts a Saturday holiday to the preceding Friday and a
// Sunday holiday to the following Monday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday returns the nth occurrence of a weekday in a month.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	d := date(year, month, 1)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the final occurrence of a weekday in a month.
func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := date(year, month+1, 1).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(wd) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// easter computes Gregorian Easter Sunday with the anonymous computus.
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}
