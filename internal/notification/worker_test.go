package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ibadah-companion-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var (
	subscriptionColumns = []string{"endpoint", "p256dh", "auth", "locale_id", "created_at"}
	subscriptionQuery   = regexp.QuoteMeta(`SELECT * FROM "push_subscriptions" WHERE locale_id = $1`)
	testOptions         = &webpush.Options{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv", TTL: 60}
)

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db), testOptions)

	require.NoError(t, wp.Dispatch(context.Background(), Message{LocaleID: "jakarta", PrayerName: "Asr"}))

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "jakarta", job.LocaleID)
		assert.Equal(t, "Asr", job.PrayerName)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchFullQueue(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db), testOptions)
	require.NoError(t, wp.Dispatch(context.Background(), Message{LocaleID: "jakarta", PrayerName: "Asr"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- wp.Dispatch(ctx, Message{LocaleID: "jakarta", PrayerName: "Maghrib"})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("dispatch to a full queue ignored the cancelled context")
	}
	assert.Len(t, wp.jobs, 1)
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB), testOptions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends reminder to locale subscribers", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		msg := Message{
			LocaleID:   "jakarta",
			Title:      "Jakarta (WIB)",
			Body:       "Waktu Dzuhur",
			PrayerName: "Dhuhr",
			NextName:   "Asr",
			NextTime:   "15:20",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "https://push.example/jkt", sub.Endpoint)
				assert.Equal(t, "k", sub.Keys.P256dh)
				assert.Equal(t, testOptions, options)

				var got Message
				assert.NoError(t, json.Unmarshal(payload, &got))
				assert.Equal(t, "Waktu Dzuhur", got.Body)
				assert.Equal(t, "15:20", got.NextTime)
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(subscriptionQuery).
			WithArgs("jakarta").
			WillReturnRows(sqlmock.NewRows(subscriptionColumns).
				AddRow("https://push.example/jkt", "k", "a", "jakarta", time.Now()))

		require.NoError(t, wp.Dispatch(ctx, msg))
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return response(http.StatusGone), nil
			},
		}

		mock.ExpectQuery(subscriptionQuery).
			WithArgs("makkah").
			WillReturnRows(sqlmock.NewRows(subscriptionColumns).
				AddRow("https://push.example/expired", "k", "a", "makkah", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://push.example/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, wp.Dispatch(ctx, Message{LocaleID: "makkah", PrayerName: "Isha"}))

		assert.Eventually(t, func() bool {
			return mock.ExpectationsWereMet() == nil
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("send error keeps subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				wg.Done()
				return nil, errors.New("connection refused")
			},
		}

		mock.ExpectQuery(subscriptionQuery).
			WithArgs("jakarta").
			WillReturnRows(sqlmock.NewRows(subscriptionColumns).
				AddRow("https://push.example/down", "k", "a", "jakarta", time.Now()))

		require.NoError(t, wp.Dispatch(ctx, Message{LocaleID: "jakarta", PrayerName: "Maghrib"}))
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWorkerPool_SkipsWithoutVAPIDKeys(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB), &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			t.Fatal("sender must not be called")
			return nil, nil
		},
	}

	wp.deliver(context.Background(), Message{LocaleID: "jakarta"})
	assert.NoError(t, mock.ExpectationsWereMet())
}
