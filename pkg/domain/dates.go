package domain

import "time"

// DateOnly truncates t to midnight UTC of its calendar date.
// All scheduling arithmetic runs on calendar dates so that time-of-day
// and server timezone never shift a dose across a status boundary.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from -> to.
// Positive when to is after from.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// AgeInMonths returns completed calendar months between birth and now.
// A month completes on the same day-of-month as the birth date.
//
// Example:
//
//	birth := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
//	now := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
//	AgeInMonths(birth, now) // returns 1
func AgeInMonths(birth, now time.Time) int {
	birth = DateOnly(birth)
	now = DateOnly(now)
	if now.Before(birth) {
		return 0
	}
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	return months
}
