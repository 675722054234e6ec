package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ibadah-companion-backend/internal/hijri"
)

// HijriResponse pairs a Gregorian day with its Islamic date.
type HijriResponse struct {
	Gregorian string     `json:"gregorian"`
	Hijri     hijri.Date `json:"hijri"`
	Formatted string     `json:"formatted"`
	MonthName string     `json:"monthName"`
	LeapYear  bool       `json:"leapYear"`
}

// HolidayResponse is one observance with its estimated Gregorian days.
type HolidayResponse struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	HijriDate      string     `json:"hijriDate"`
	Start          hijri.Date `json:"start"`
	End            hijri.Date `json:"end"`
	GregorianStart string     `json:"gregorianStart"`
	GregorianEnd   string     `json:"gregorianEnd"`
	GregorianText  string     `json:"gregorianText"`
}

// HolidaysResponse lists the observances of one Hijri year.
type HolidaysResponse struct {
	Year     int               `json:"year"`
	Holidays []HolidayResponse `json:"holidays"`
}

// GetHijri handles GET /api/hijri[?date=YYYY-MM-DD]. The default is today in
// UTC.
func (h *Handler) GetHijri(c *gin.Context) {
	day := h.now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	d, err := hijri.FromTime(day)
	if err != nil {
		respondHijriError(c, err)
		return
	}
	c.JSON(http.StatusOK, HijriResponse{
		Gregorian: day.Format(time.DateOnly),
		Hijri:     d,
		Formatted: d.Format(),
		MonthName: d.MonthName(),
		LeapYear:  hijri.LeapYear(d.Year),
	})
}

// GetHijriHolidays handles GET /api/hijri/holidays[?year=N]. The default is
// the current Hijri year in UTC.
func (h *Handler) GetHijriHolidays(c *gin.Context) {
	var year int
	if raw := c.Query("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		year = n
	} else {
		today, err := hijri.FromTime(h.now().UTC())
		if err != nil {
			respondHijriError(c, err)
			return
		}
		year = today.Year
	}

	holidays, err := hijri.Holidays(year)
	if err != nil {
		respondHijriError(c, err)
		return
	}

	resp := HolidaysResponse{Year: year, Holidays: make([]HolidayResponse, 0, len(holidays))}
	for _, hd := range holidays {
		text := formatIndonesianDate(hd.GregorianStart)
		if !hd.GregorianEnd.Equal(hd.GregorianStart) {
			text += " - " + formatIndonesianDate(hd.GregorianEnd)
		}
		resp.Holidays = append(resp.Holidays, HolidayResponse{
			Name:           hd.Name,
			Description:    hd.Description,
			HijriDate:      hd.HijriText(),
			Start:          hd.Start,
			End:            hd.End,
			GregorianStart: hd.GregorianStart.Format(time.DateOnly),
			GregorianEnd:   hd.GregorianEnd.Format(time.DateOnly),
			GregorianText:  text,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func respondHijriError(c *gin.Context, err error) {
	if errors.Is(err, hijri.ErrInvalidDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
