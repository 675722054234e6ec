package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"

	"ibadah-companion-backend/internal/model"
	"ibadah-companion-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering prayer reminders to the
// push subscriptions of a locale.
type WorkerPool struct {
	size    int
	jobs    chan Message
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Message, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	logger := log.With().Int("worker", id).Logger()
	logger.Debug().Msg("worker started")
	for {
		select {
		case msg := <-wp.jobs:
			logger.Debug().Str("locale", msg.LocaleID).Str("prayer", msg.PrayerName).Msg("delivering reminder")
			wp.deliver(ctx, msg)
		case <-ctx.Done():
			logger.Debug().Msg("worker shutting down")
			return
		}
	}
}

// Dispatch queues a job for the workers. It waits while the queue is full
// and gives up with ctx's error once ctx is done.
func (wp *WorkerPool) Dispatch(ctx context.Context, msg Message) error {
	select {
	case wp.jobs <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver sends msg to every subscription of its locale.
func (wp *WorkerPool) deliver(ctx context.Context, msg Message) {
	if wp.webpush == nil || wp.webpush.VAPIDPrivateKey == "" {
		return
	}

	subscriptions, err := wp.store.SubscriptionsForLocale(ctx, msg.LocaleID)
	if err != nil {
		log.Error().Err(err).Str("locale", msg.LocaleID).Msg("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode reminder")
		return
	}

	log.Info().Int("count", len(subscriptions)).Str("locale", msg.LocaleID).Str("prayer", msg.PrayerName).Msg("sending reminders")
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", sub.Endpoint).Msg("error sending notification")
		return
	}
	defer resp.Body.Close()

	// Expired or unsubscribed endpoints are removed.
	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		log.Info().Str("endpoint", sub.Endpoint).Int("status", resp.StatusCode).Msg("subscription expired; deleting")
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
	}
}
