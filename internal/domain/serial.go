package domain

import (
	"math"
	"time"
)

// serialEpoch is day zero of the spreadsheet serial date-time format.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// SerialDateTime encodes t as a spreadsheet serial date-time: whole days
// since 1899-12-30 plus seconds-since-midnight / 86400. The calendar date
// and wall clock are taken in t's own location; sub-second precision is
// dropped.
func SerialDateTime(t time.Time) float64 {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := math.Round(day.Sub(serialEpoch).Hours() / 24)
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return days + float64(secs)/secondsPerDay
}

// FromSerialDateTime decodes a spreadsheet serial date-time into a wall
// clock time in loc, rounded to the nearest second.
func FromSerialDateTime(v float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	days := math.Floor(v)
	secs := int(math.Round((v - days) * secondsPerDay))
	y, m, d := serialEpoch.AddDate(0, 0, int(days)).Date()
	return time.Date(y, m, d, 0, 0, secs, 0, loc)
}
