package hijri

import (
	"fmt"
	"time"
)

// Observance is a recurring day, or run of days, in the Islamic calendar.
type Observance struct {
	Name        string
	Month       int
	FirstDay    int
	LastDay     int
	Description string
}

// observances are the major days observed in Indonesia, in calendar order
// starting from Muharram.
var observances = []Observance{
	{Name: "Tahun Baru Islam", Month: 1, FirstDay: 1, LastDay: 1, Description: "Awal tahun kalender Hijriyah."},
	{Name: "Puasa Asyura", Month: 1, FirstDay: 10, LastDay: 10, Description: "Hari kesepuluh bulan Muharram, disunnahkan berpuasa."},
	{Name: "Maulid Nabi Muhammad SAW", Month: 3, FirstDay: 12, LastDay: 12, Description: "Peringatan hari kelahiran Nabi Muhammad SAW."},
	{Name: "Isra Mi'raj Nabi Muhammad SAW", Month: 7, FirstDay: 27, LastDay: 27, Description: "Peringatan perjalanan malam Nabi Muhammad SAW."},
	{Name: "Nisfu Sya'ban", Month: 8, FirstDay: 15, LastDay: 15, Description: "Malam pertengahan bulan Sya'ban."},
	{Name: "Awal Ramadan", Month: 9, FirstDay: 1, LastDay: 1, Description: "Permulaan bulan puasa Ramadan."},
	{Name: "Nuzulul Qur'an", Month: 9, FirstDay: 17, LastDay: 17, Description: "Peringatan turunnya Al-Qur'an pertama kali."},
	{Name: "Lailatul Qadar", Month: 9, FirstDay: 21, LastDay: 30, Description: "Malam kemuliaan di sepuluh malam terakhir Ramadan."},
	{Name: "Idul Fitri", Month: 10, FirstDay: 1, LastDay: 1, Description: "Hari Raya setelah sebulan penuh berpuasa Ramadan."},
	{Name: "Puasa Arafah", Month: 12, FirstDay: 9, LastDay: 9, Description: "Puasa sunnah pada hari Arafah bagi yang tidak berhaji."},
	{Name: "Idul Adha", Month: 12, FirstDay: 10, LastDay: 10, Description: "Hari Raya Kurban."},
	{Name: "Hari Tasyrik", Month: 12, FirstDay: 11, LastDay: 13, Description: "Hari-hari setelah Idul Adha, diharamkan berpuasa."},
}

// Holiday is an observance placed in one Hijri year, with its estimated
// Gregorian days.
type Holiday struct {
	Name           string
	Description    string
	Start          Date
	End            Date
	GregorianStart time.Time
	GregorianEnd   time.Time
}

// HijriText renders the Hijri day or range, e.g. "11-13 Dzulhijjah 1446 H".
func (h Holiday) HijriText() string {
	if h.Start == h.End {
		return h.Start.Format()
	}
	return fmt.Sprintf("%d-%s", h.Start.Day, h.End.Format())
}

// Holidays returns the observances of a Hijri year in calendar order.
func Holidays(year int) ([]Holiday, error) {
	holidays := make([]Holiday, 0, len(observances))
	for _, o := range observances {
		start, err := New(year, o.Month, o.FirstDay)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.Name, err)
		}
		end, err := New(year, o.Month, o.LastDay)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.Name, err)
		}
		holidays = append(holidays, Holiday{
			Name:           o.Name,
			Description:    o.Description,
			Start:          start,
			End:            end,
			GregorianStart: start.Time(),
			GregorianEnd:   end.Time(),
		})
	}
	return holidays, nil
}

// Upcoming returns the holidays that have not ended on or before day, across
// the current and the following Hijri year.
func Upcoming(day time.Time, limit int) ([]Holiday, error) {
	today, err := FromTime(day)
	if err != nil {
		return nil, err
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var upcoming []Holiday
	for year := today.Year; year <= today.Year+1 && year <= MaxYear; year++ {
		holidays, err := Holidays(year)
		if err != nil {
			return nil, err
		}
		for _, h := range holidays {
			if h.GregorianEnd.Before(midnight) {
				continue
			}
			upcoming = append(upcoming, h)
			if limit > 0 && len(upcoming) == limit {
				return upcoming, nil
			}
		}
	}
	return upcoming, nil
}
