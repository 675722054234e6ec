package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/hijri"
	"ibadah-companion-backend/internal/model"
	"ibadah-companion-backend/internal/prayer"
)

// LocaleResponse describes one configured locale.
type LocaleResponse struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Timezone string              `json:"timezone"`
	Prayers  []PrayerTiming      `json:"prayers"`
	Current  *OpenWindowResponse `json:"current,omitempty"`
}

// OpenWindowResponse is the window the reminder service last recorded for a
// locale.
type OpenWindowResponse struct {
	PrayerName  string `json:"prayerName"`
	DisplayName string `json:"displayName"`
	Waiting     bool   `json:"waiting"`
	Since       string `json:"since"`
}

// PrayerTiming is one table entry in declared order.
type PrayerTiming struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Time        string `json:"time"`
}

// BannerResponse is everything a header banner shows for one locale.
type BannerResponse struct {
	LocaleID         string        `json:"localeId"`
	Name             string        `json:"name"`
	Clock            string        `json:"clock"`
	Gregorian        string        `json:"gregorian"`
	Hijri            hijri.Date    `json:"hijri"`
	HijriText        string        `json:"hijriText"`
	Window           prayer.Result `json:"window"`
	CurrentText      string        `json:"currentText"`
	NextText         string        `json:"nextText"`
	MinutesUntilNext int           `json:"minutesUntilNext"`
}

// GetLocales handles GET /api/locales.
func (h *Handler) GetLocales(c *gin.Context) {
	open, err := h.store.OpenWindows(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load open windows"})
		return
	}
	openByLocale := make(map[string]model.WindowOpen, len(open))
	for _, w := range open {
		openByLocale[w.LocaleID] = w
	}

	responses := make([]LocaleResponse, 0, len(h.cfg.Locales))
	for i := range h.cfg.Locales {
		l := &h.cfg.Locales[i]
		timings := make([]PrayerTiming, 0, len(l.Table))
		for _, e := range l.Table {
			timings = append(timings, PrayerTiming{
				Name:        e.Name,
				DisplayName: h.cfg.DisplayName(e.Name),
				Time:        e.At.String(),
			})
		}
		resp := LocaleResponse{
			ID:       l.ID,
			Name:     l.Name,
			Timezone: l.Timezone,
			Prayers:  timings,
		}
		if w, ok := openByLocale[l.ID]; ok {
			resp.Current = &OpenWindowResponse{
				PrayerName:  w.PrayerName,
				DisplayName: h.cfg.DisplayName(w.PrayerName),
				Waiting:     w.Waiting,
				Since:       w.ObservedAt.In(l.Location).Format(timeLayout),
			}
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// GetPrayer handles GET /api/locales/:locale_id/prayer[?at=HH:MM]. Without
// at, the current time in the locale's timezone is used.
func (h *Handler) GetPrayer(c *gin.Context) {
	l, ok := h.locale(c)
	if !ok {
		return
	}

	now := prayer.TimeOfDayOf(h.now().In(l.Location))
	if raw, ok := c.GetQuery("at"); ok {
		at, err := prayer.ParseTimeOfDay(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		now = at
	}

	w, err := prayer.Resolve(now, l.Table)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w.Result())
}

// GetBanner handles GET /api/locales/:locale_id/banner.
func (h *Handler) GetBanner(c *gin.Context) {
	l, ok := h.locale(c)
	if !ok {
		return
	}

	local := h.now().In(l.Location)
	tod := prayer.TimeOfDayOf(local)
	w, err := prayer.Resolve(tod, l.Table)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	banner, err := h.banner(l, w, local, tod)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, banner)
}

func (h *Handler) banner(l *config.LocaleConfig, w prayer.Window, local time.Time, tod prayer.TimeOfDay) (BannerResponse, error) {
	hd, err := hijri.FromTime(local)
	if err != nil {
		return BannerResponse{}, err
	}
	return BannerResponse{
		LocaleID:         l.ID,
		Name:             l.Name,
		Clock:            local.Format("15:04:05"),
		Gregorian:        formatIndonesianDate(local),
		Hijri:            hd,
		HijriText:        hd.Format(),
		Window:           w.Result(),
		CurrentText:      l.Label(h.cfg.DisplayName(w.Current.Name), w.Waiting),
		NextText:         h.cfg.DisplayName(w.NextLabel()) + " " + w.NextTime(),
		MinutesUntilNext: w.MinutesUntilNext(tod),
	}, nil
}

// GetHistory handles GET /api/locales/:locale_id/history[?limit=N].
func (h *Handler) GetHistory(c *gin.Context) {
	l, ok := h.locale(c)
	if !ok {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	rows, err := h.store.History(c.Request.Context(), l.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type historyItem struct {
		Prayer      string `json:"prayer"`
		DisplayName string `json:"displayName"`
		Waiting     bool   `json:"waiting"`
		PeriodStart string `json:"periodStart"`
		PeriodEnd   string `json:"periodEnd"`
	}
	items := make([]historyItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, historyItem{
			Prayer:      r.PrayerName,
			DisplayName: h.cfg.DisplayName(r.PrayerName),
			Waiting:     r.Waiting,
			PeriodStart: r.PeriodStart.In(l.Location).Format(timeLayout),
			PeriodEnd:   r.PeriodEnd.In(l.Location).Format(timeLayout),
		})
	}
	c.JSON(http.StatusOK, items)
}
