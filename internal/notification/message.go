package notification

import (
	"context"
	"time"
)

// Message announces that a locale entered a new prayer window.
type Message struct {
	LocaleID   string    `json:"localeId"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	PrayerName string    `json:"prayer"`
	Waiting    bool      `json:"waiting"`
	NextName   string    `json:"next"`
	NextTime   string    `json:"nextTime"`
	At         time.Time `json:"at"`
}

// Publisher fans a message out to a channel other than web push.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}
