package model

import "time"

// WindowOpen is the prayer window each locale is currently in (hot table).
type WindowOpen struct {
	LocaleID   string    `gorm:"primaryKey;size:64"`
	PrayerName string    `gorm:"size:64;not null"`
	Waiting    bool      `gorm:"not null"`
	ObservedAt time.Time `gorm:"not null"` // When the window was first seen open
}

// WindowHistory is a closed prayer window (cold table).
type WindowHistory struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	LocaleID    string    `gorm:"size:64;not null;index:idx_window_history_locale_end,priority:1"`
	PrayerName  string    `gorm:"size:64;not null"`
	Waiting     bool      `gorm:"not null"`
	PeriodStart time.Time `gorm:"not null"`
	PeriodEnd   time.Time `gorm:"not null;index:idx_window_history_locale_end,priority:2"`
}
