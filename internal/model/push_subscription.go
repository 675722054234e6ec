package model

import "time"

// PushSubscription holds a browser push subscription and the locale whose
// prayer reminders it receives.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	LocaleID  string    `gorm:"size:64;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}
