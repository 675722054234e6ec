package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/hijri"
	"ibadah-companion-backend/internal/prayer"
	"ibadah-companion-backend/internal/qibla"
)

var (
	qiblaLat     float64
	qiblaLon     float64
	qiblaHeading float64

	prayerAt string
)

const upcomingHolidays = 5

// now is replaced in tests.
var now = time.Now

func newQiblaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qibla",
		Short: "Print the qibla bearing for a coordinate",
		Args:  cobra.NoArgs,
		RunE:  runQiblaCmd,
	}
	cmd.Flags().Float64Var(&qiblaLat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&qiblaLon, "lon", 0, "longitude in decimal degrees")
	cmd.Flags().Float64Var(&qiblaHeading, "heading", 0, "device heading in degrees clockwise from north")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func runQiblaCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfigOrDefault()
	if err != nil {
		return err
	}

	var heading qibla.HeadingProvider
	if cmd.Flags().Changed("heading") {
		h := qiblaHeading
		heading = qibla.FixedHeading{Value: &h}
	}

	observer := qibla.FixedLocation{Latitude: qiblaLat, Longitude: qiblaLon}
	reading, err := qibla.Locate(context.Background(), observer, heading, cfg.Qibla.Target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "bearing:  %.2f° (%s)\n", reading.Bearing, reading.Compass)
	fmt.Fprintf(out, "distance: %s km\n", humanize.FormatFloat("#,###.", reading.DistanceKm))
	if reading.Rotation != nil {
		fmt.Fprintf(out, "turn:     %.2f° clockwise\n", *reading.Rotation)
	}
	return nil
}

func newPrayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prayer [locale]",
		Short: "Print the current prayer window of one or all locales",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPrayerCmd,
	}
	cmd.Flags().StringVar(&prayerAt, "at", "", "time of day HH:MM instead of the current local time")
	return cmd
}

func runPrayerCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefault()
	if err != nil {
		return err
	}

	locales := cfg.Locales
	if len(args) == 1 {
		l, ok := cfg.Locale(args[0])
		if !ok {
			return fmt.Errorf("unknown locale %q", args[0])
		}
		locales = []config.LocaleConfig{*l}
	}

	var at *prayer.TimeOfDay
	if prayerAt != "" {
		parsed, err := prayer.ParseTimeOfDay(prayerAt)
		if err != nil {
			return err
		}
		at = &parsed
	}

	for i := range locales {
		if err := printWindow(cmd.OutOrStdout(), cfg, &locales[i], at); err != nil {
			return err
		}
	}
	return nil
}

func printWindow(out io.Writer, cfg *config.Config, l *config.LocaleConfig, at *prayer.TimeOfDay) error {
	tod := prayer.TimeOfDayOf(now().In(l.Location))
	if at != nil {
		tod = *at
	}
	w, err := prayer.Resolve(tod, l.Table)
	if err != nil {
		return fmt.Errorf("locale %s: %w", l.ID, err)
	}
	fmt.Fprintf(out, "%s %s  %s  (next %s %s, in %d min)\n",
		l.Name,
		tod,
		l.Label(cfg.DisplayName(w.Current.Name), w.Waiting),
		cfg.DisplayName(w.NextLabel()),
		w.NextTime(),
		w.MinutesUntilNext(tod),
	)
	return nil
}

func newHijriCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hijri [YYYY-MM-DD]",
		Short: "Convert a Gregorian date (default today) to the Islamic calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHijriCmd,
	}
}

func runHijriCmd(cmd *cobra.Command, args []string) error {
	day := now()
	if len(args) == 1 {
		parsed, err := time.Parse(time.DateOnly, args[0])
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		day = parsed
	}
	d, err := hijri.FromTime(day)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", day.Format(time.DateOnly), d.Format())
	return nil
}

func newHolidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holidays [hijri-year]",
		Short: "List Islamic holidays of a Hijri year, or the next few from today",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHolidaysCmd,
	}
}

func runHolidaysCmd(cmd *cobra.Command, args []string) error {
	var (
		holidays []hijri.Holiday
		err      error
	)
	if len(args) == 1 {
		year, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("hijri year must be a number: %w", convErr)
		}
		holidays, err = hijri.Holidays(year)
	} else {
		holidays, err = hijri.Upcoming(now(), upcomingHolidays)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, h := range holidays {
		days := h.GregorianStart.Format(time.DateOnly)
		if !h.GregorianEnd.Equal(h.GregorianStart) {
			days += ".." + h.GregorianEnd.Format(time.DateOnly)
		}
		fmt.Fprintf(out, "%-22s  %-24s  %s\n", days, h.HijriText(), h.Name)
	}
	return nil
}
