package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ibadah-companion-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	UpdateWindows(ctx context.Context, now time.Time, observations []Observation) ([]Transition, error)
	OpenWindows(ctx context.Context) ([]model.WindowOpen, error)
	History(ctx context.Context, localeID string, limit int) ([]model.WindowHistory, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForLocale(ctx context.Context, localeID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// UpdateWindows compares the observed windows against the open table and
// records every change transactionally. The first observation of a locale
// only opens a window; it is not a transition. Locales that are no longer
// observed have their open window archived.
func (s *gormStore) UpdateWindows(ctx context.Context, now time.Time, observations []Observation) ([]Transition, error) {
	openWindows, err := s.fetchOpenWindows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open windows: %w", err)
	}

	var transitions []Transition
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range observations {
			previous, exists := openWindows[o.LocaleID]
			delete(openWindows, o.LocaleID)

			if exists && sameWindow(previous.PrayerName, previous.Waiting, o) {
				continue
			}

			if exists {
				if err := archiveWindow(tx, previous, now); err != nil {
					return err
				}
				transitions = append(transitions, Transition{
					LocaleID:        o.LocaleID,
					PrayerName:      o.PrayerName,
					Waiting:         o.Waiting,
					PreviousName:    previous.PrayerName,
					PreviousWaiting: previous.Waiting,
					At:              now,
				})
			}

			open := model.WindowOpen{
				LocaleID:   o.LocaleID,
				PrayerName: o.PrayerName,
				Waiting:    o.Waiting,
				ObservedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "locale_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"prayer_name", "waiting", "observed_at"}),
			}).Create(&open).Error; err != nil {
				return fmt.Errorf("failed to open window for locale %s: %w", o.LocaleID, err)
			}
		}

		for _, stale := range openWindows {
			if err := archiveWindow(tx, stale, now); err != nil {
				return err
			}
			if err := tx.Delete(&model.WindowOpen{}, "locale_id = ?", stale.LocaleID).Error; err != nil {
				return fmt.Errorf("failed to delete open window for locale %s: %w", stale.LocaleID, err)
			}
			log.Info().Str("locale", stale.LocaleID).Msg("locale no longer observed; window archived")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// archiveWindow moves a closed window into the history table.
func archiveWindow(tx *gorm.DB, closed model.WindowOpen, end time.Time) error {
	history := model.WindowHistory{
		LocaleID:    closed.LocaleID,
		PrayerName:  closed.PrayerName,
		Waiting:     closed.Waiting,
		PeriodStart: closed.ObservedAt,
		PeriodEnd:   end,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to archive window for locale %s: %w", closed.LocaleID, err)
	}
	return nil
}

func (s *gormStore) fetchOpenWindows(ctx context.Context) (map[string]model.WindowOpen, error) {
	var rows []model.WindowOpen
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	byLocale := make(map[string]model.WindowOpen, len(rows))
	for _, r := range rows {
		byLocale[r.LocaleID] = r
	}
	return byLocale, nil
}

// OpenWindows returns the window each observed locale is currently in.
func (s *gormStore) OpenWindows(ctx context.Context) ([]model.WindowOpen, error) {
	var rows []model.WindowOpen
	if err := s.db.WithContext(ctx).Order("locale_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// History returns the most recent closed windows of a locale, newest first.
func (s *gormStore) History(ctx context.Context, localeID string, limit int) ([]model.WindowHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []model.WindowHistory
	err := s.db.WithContext(ctx).
		Where("locale_id = ?", localeID).
		Order("period_end DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertSubscription creates a subscription or replaces its keys and locale.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "locale_id"}),
	}).Create(sub).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PushSubscription{}, ErrNotFound
	}
	return sub, err
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) SubscriptionsForLocale(ctx context.Context, localeID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("locale_id = ?", localeID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
