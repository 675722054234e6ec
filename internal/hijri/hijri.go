// Package hijri converts between Gregorian instants and the arithmetic
// (tabular) Islamic calendar. Dates may differ by a day or two from
// sighting-based calendars; they are suitable for display, not for rulings.
package hijri

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// epochJD is the Julian day of 1 Muharram 1 AH in the civil reckoning.
const epochJD = 1948439.5

// MaxYear bounds the years New accepts.
const MaxYear = 9999

// ErrInvalidDate is returned for month or day values outside the calendar.
var ErrInvalidDate = errors.New("invalid hijri date")

var monthNames = [12]string{
	"Muharram",
	"Safar",
	"Rabiul Awal",
	"Rabiul Akhir",
	"Jumadil Awal",
	"Jumadil Akhir",
	"Rajab",
	"Sya'ban",
	"Ramadan",
	"Syawal",
	"Dzulqa'dah",
	"Dzulhijjah",
}

// Date is a day in the Islamic calendar.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// FromTime returns the Islamic date of the calendar day t falls on in its own
// location. Days before 1 Muharram 1 AH (622-07-19) are rejected.
func FromTime(t time.Time) (Date, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	jd := julian.TimeToJD(day)
	if jd < epochJD {
		return Date{}, fmt.Errorf("%w: %s is before the hijri epoch", ErrInvalidDate, day.Format(time.DateOnly))
	}
	d := fromJD(jd)
	if d.Year > MaxYear {
		return Date{}, fmt.Errorf("%w: %s is beyond year %d", ErrInvalidDate, day.Format(time.DateOnly), MaxYear)
	}
	return d, nil
}

// New validates and returns a Date.
func New(year, month, day int) (Date, error) {
	if year < 1 || year > MaxYear {
		return Date{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("%w: day %d of %s %d", ErrInvalidDate, day, monthNames[month-1], year)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// Time returns midnight UTC of the Gregorian day matching d.
func (d Date) Time() time.Time {
	return julian.JDToTime(toJD(d.Year, d.Month, d.Day)).UTC().Add(12 * time.Hour).Truncate(24 * time.Hour)
}

// MonthName returns the transliterated month name.
func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return monthNames[d.Month-1]
}

// Format renders the date as "7 Jumadil Awal 1448 H".
func (d Date) Format() string {
	return fmt.Sprintf("%d %s %d H", d.Day, d.MonthName(), d.Year)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// LeapYear reports whether year has 355 days. Eleven years of each 30-year
// cycle are leap years.
func LeapYear(year int) bool {
	return (14+11*year)%30 < 11
}

// DaysInMonth returns 30 for odd months, 29 for even months, and 30 for
// Dzulhijjah in leap years.
func DaysInMonth(year, month int) int {
	if month%2 == 1 || (month == 12 && LeapYear(year)) {
		return 30
	}
	return 29
}

func toJD(year, month, day int) float64 {
	return float64(day) +
		math.Ceil(29.5*float64(month-1)) +
		float64((year-1)*354) +
		math.Floor(float64(3+11*year)/30) +
		epochJD - 1
}

func fromJD(jd float64) Date {
	jd = math.Floor(jd) + 0.5
	year := int(math.Floor((30*(jd-epochJD) + 10646) / 10631))
	month := int(math.Min(12, math.Ceil((jd-(29+toJD(year, 1, 1)))/29.5)+1))
	day := int(jd-toJD(year, month, 1)) + 1
	return Date{Year: year, Month: month, Day: day}
}
