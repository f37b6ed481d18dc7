package utils

import "time"

// Session is a named intraday window used to bucket trades.
type Session string

const (
	SessionPreMarket  Session = "Pre"
	SessionMorning    Session = "9-11"
	SessionMidday     Session = "12-2"
	SessionAfternoon  Session = "3-4"
	SessionAfterHours Session = "AH"
)

// sessionHours lists the inclusive hour span of each session, in order.
var sessionHours = []struct {
	session  Session
	from, to int
}{
	{SessionPreMarket, 4, 8},
	{SessionMorning, 9, 11},
	{SessionMidday, 12, 14},
	{SessionAfternoon, 15, 16},
	{SessionAfterHours, 17, 19},
}

// Sessions returns every session slot in chronological order.
func Sessions() []Session {
	out := make([]Session, len(sessionHours))
	for i, s := range sessionHours {
		out[i] = s.session
	}
	return out
}

// SessionHours returns the hours (inclusive) covered by a session.
func SessionHours(s Session) []int {
	for _, sh := range sessionHours {
		if sh.session == s {
			hours := make([]int, 0, sh.to-sh.from+1)
			for h := sh.from; h <= sh.to; h++ {
				hours = append(hours, h)
			}
			return hours
		}
	}
	return nil
}

// SessionForHour maps an hour of day to its session slot.
// Hours outside 4-19 belong to no session.
func SessionForHour(hour int) (Session, bool) {
	for _, sh := range sessionHours {
		if hour >= sh.from && hour <= sh.to {
			return sh.session, true
		}
	}
	return "", false
}

// Weekdays lists the trading days of the week, Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// IsWeekend reports whether the day falls on Saturday or Sunday.
func IsWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// NextTradingDay returns the first weekday strictly after d.
func NextTradingDay(d time.Time) time.Time {
	next := d.AddDate(0, 0, 1)
	for IsWeekend(next.Weekday()) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// DaysInMonth returns the number of days in the month containing d.
func DaysInMonth(d time.Time) int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
