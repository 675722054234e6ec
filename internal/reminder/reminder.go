// Package reminder re-resolves every locale's prayer window on a fixed
// cadence and announces the windows that change.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/notification"
	"ibadah-companion-backend/internal/prayer"
	"ibadah-companion-backend/internal/store"
)

// Dispatcher queues a reminder for web push delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg notification.Message) error
}

// Service owns the clock. The resolver itself never reads time.
type Service struct {
	cfg        *config.Config
	store      store.Store
	dispatcher Dispatcher
	publishers []notification.Publisher
	now        func() time.Time
}

// NewService creates a reminder service. Publishers receive every transition,
// including the start of a waiting period; the dispatcher only receives the
// start of a prayer window.
func NewService(cfg *config.Config, s store.Store, dispatcher Dispatcher, publishers ...notification.Publisher) *Service {
	return &Service{
		cfg:        cfg,
		store:      s,
		dispatcher: dispatcher,
		publishers: publishers,
		now:        time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Run checks the windows in a loop until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Reminder.Enabled {
		log.Info().Msg("reminder service is disabled; not starting")
		return
	}
	log.Info().Dur("interval", s.cfg.Reminder.Interval).Int("locales", len(s.cfg.Locales)).Msg("starting reminder service")

	s.tickAndLog(ctx)

	timer := time.NewTimer(s.cfg.Reminder.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reminder service shutting down")
			return
		case <-timer.C:
			s.tickAndLog(ctx)
			timer.Reset(s.cfg.Reminder.Interval)
		}
	}
}

func (s *Service) tickAndLog(ctx context.Context) {
	if _, err := s.TickOnce(ctx); err != nil {
		log.Error().Err(err).Msg("reminder tick failed")
	}
}

// TickOnce resolves the current window of every locale, persists it and
// announces the transitions. It returns the transitions found.
func (s *Service) TickOnce(ctx context.Context) ([]store.Transition, error) {
	now := s.now().UTC()

	windows := make(map[string]prayer.Window, len(s.cfg.Locales))
	observations := make([]store.Observation, 0, len(s.cfg.Locales))
	for i := range s.cfg.Locales {
		l := &s.cfg.Locales[i]
		w, err := prayer.Resolve(prayer.TimeOfDayOf(now.In(l.Location)), l.Table)
		if err != nil {
			log.Error().Err(err).Str("locale", l.ID).Msg("could not resolve prayer window")
			continue
		}
		windows[l.ID] = w
		observations = append(observations, store.Observation{
			LocaleID:   l.ID,
			PrayerName: w.Current.Name,
			Waiting:    w.Waiting,
		})
	}

	transitions, err := s.store.UpdateWindows(ctx, now, observations)
	if err != nil {
		return nil, fmt.Errorf("update windows: %w", err)
	}

	for _, t := range transitions {
		l, ok := s.cfg.Locale(t.LocaleID)
		if !ok {
			continue
		}
		msg := s.message(l, windows[t.LocaleID], t.At)
		log.Info().Str("locale", t.LocaleID).Str("from", t.PreviousName).Str("to", t.PrayerName).Bool("waiting", t.Waiting).Msg("prayer window changed")

		for _, p := range s.publishers {
			if err := p.Publish(ctx, msg); err != nil {
				log.Warn().Err(err).Str("locale", t.LocaleID).Msg("failed to publish transition")
			}
		}
		if t.Notify() && s.dispatcher != nil {
			if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
				log.Warn().Err(err).Str("locale", t.LocaleID).Msg("failed to queue reminder")
			}
		}
	}
	return transitions, nil
}

// message renders a window with the locale's display strings.
func (s *Service) message(l *config.LocaleConfig, w prayer.Window, at time.Time) notification.Message {
	return notification.Message{
		LocaleID:   l.ID,
		Title:      l.Name,
		Body:       l.Label(s.cfg.DisplayName(w.Current.Name), w.Waiting),
		PrayerName: w.Current.Name,
		Waiting:    w.Waiting,
		NextName:   s.cfg.DisplayName(w.NextLabel()),
		NextTime:   w.NextTime(),
		At:         at,
	}
}
