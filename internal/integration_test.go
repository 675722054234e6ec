package internal

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/db"
	"ibadah-companion-backend/internal/model"
	"ibadah-companion-backend/internal/notification"
	"ibadah-companion-backend/internal/prayer"
	"ibadah-companion-backend/internal/reminder"
	"ibadah-companion-backend/internal/store"
)

// pushEndpoint records deliveries. Requests to /gone answer 410.
type pushEndpoint struct {
	hits chan string
}

func (p *pushEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.hits <- r.URL.Path

	if r.URL.Path == "/gone" {
		w.WriteHeader(http.StatusGone)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func newBrowserKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(secret)
}

// TestPrayerWindowLifecycle walks a locale through a day and verifies the
// stored windows and the reminders delivered at each step.
func TestPrayerWindowLifecycle(t *testing.T) {
	// --- Test Setup ---
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to the in-memory database")
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	table, err := prayer.ParseTable([]prayer.Pair{
		{Name: "Fajr", Time: "04:40"},
		{Name: "Dhuhr", Time: "11:58"},
		{Name: "Asr", Time: "15:20"},
		{Name: "Maghrib", Time: "17:55"},
		{Name: "Isha", Time: "19:08"},
	})
	require.NoError(t, err)
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	cfg := &config.Config{
		Prayers: config.DefaultPrayerNames(),
		Locales: []config.LocaleConfig{{
			ID:            "jakarta",
			Name:          "Jakarta (WIB)",
			Timezone:      "Asia/Jakarta",
			WaitingFormat: "Menunggu %s",
			CurrentFormat: "Waktu %s",
			Table:         table,
			Location:      jakarta,
		}},
	}

	endpoint := &pushEndpoint{hits: make(chan string, 10)}
	server := httptest.NewServer(endpoint)
	defer server.Close()

	vapidPrivate, vapidPublic, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	webpushOptions := &webpush.Options{
		VAPIDPublicKey:  vapidPublic,
		VAPIDPrivateKey: vapidPrivate,
		Subscriber:      "admin@example.com",
		TTL:             60,
	}

	gormStore := store.NewGormStore(testDB)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := notification.NewWorkerPool(2, gormStore, webpushOptions)
	pool.Start(ctx)

	svc := reminder.NewService(cfg, gormStore, pool)
	var clock time.Time
	svc.SetClock(func() time.Time { return clock })

	for _, path := range []string{"/alive", "/gone"} {
		p256dh, auth := newBrowserKeys(t)
		require.NoError(t, gormStore.UpsertSubscription(ctx, &model.PushSubscription{
			Endpoint: server.URL + path,
			P256DH:   p256dh,
			Auth:     auth,
			LocaleID: "jakarta",
		}))
	}

	awaitDeliveries := func(t *testing.T, n int) []string {
		t.Helper()
		var got []string
		for i := 0; i < n; i++ {
			select {
			case path := <-endpoint.hits:
				got = append(got, path)
			case <-time.After(5 * time.Second):
				t.Fatalf("timed out waiting for push delivery %d of %d", i+1, n)
			}
		}
		return got
	}

	// --- Cycle 1: first observation opens Fajr silently ---
	t.Run("Cycle 1: first observation", func(t *testing.T) {
		clock = time.Date(2026, 10, 19, 4, 0, 0, 0, time.UTC) // 11:00 WIB

		transitions, err := svc.TickOnce(ctx)
		require.NoError(t, err)
		assert.Empty(t, transitions)

		var open model.WindowOpen
		require.NoError(t, testDB.Where("locale_id = ?", "jakarta").First(&open).Error)
		assert.Equal(t, "Fajr", open.PrayerName)
		assert.False(t, open.Waiting)

		var historyCount int64
		testDB.Model(&model.WindowHistory{}).Count(&historyCount)
		assert.Equal(t, int64(0), historyCount)
	})

	// --- Cycle 2: Dhuhr begins, reminders go out ---
	t.Run("Cycle 2: Dhuhr begins", func(t *testing.T) {
		clock = time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC) // 12:00 WIB

		transitions, err := svc.TickOnce(ctx)
		require.NoError(t, err)
		require.Len(t, transitions, 1)
		assert.Equal(t, "Dhuhr", transitions[0].PrayerName)
		assert.Equal(t, "Fajr", transitions[0].PreviousName)

		assert.ElementsMatch(t, []string{"/alive", "/gone"}, awaitDeliveries(t, 2))

		var history model.WindowHistory
		require.NoError(t, testDB.Where("locale_id = ?", "jakarta").First(&history).Error)
		assert.Equal(t, "Fajr", history.PrayerName)
		assert.WithinDuration(t, time.Date(2026, 10, 19, 4, 0, 0, 0, time.UTC), history.PeriodStart, time.Second)
		assert.WithinDuration(t, clock, history.PeriodEnd, time.Second)

		// The endpoint answering 410 is removed.
		assert.Eventually(t, func() bool {
			_, err := gormStore.GetSubscription(ctx, server.URL+"/gone")
			return err == store.ErrNotFound
		}, 5*time.Second, 20*time.Millisecond)
	})

	// --- Cycle 3: same window, nothing happens ---
	t.Run("Cycle 3: unchanged", func(t *testing.T) {
		clock = time.Date(2026, 10, 19, 5, 0, 30, 0, time.UTC)

		transitions, err := svc.TickOnce(ctx)
		require.NoError(t, err)
		assert.Empty(t, transitions)
	})

	// --- Cycle 4: past midnight, waiting for Fajr, no push ---
	t.Run("Cycle 4: waiting for Fajr", func(t *testing.T) {
		clock = time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC) // 04:00 WIB next day

		transitions, err := svc.TickOnce(ctx)
		require.NoError(t, err)
		require.Len(t, transitions, 1)
		assert.True(t, transitions[0].Waiting)
		assert.False(t, transitions[0].Notify())

		var open model.WindowOpen
		require.NoError(t, testDB.Where("locale_id = ?", "jakarta").First(&open).Error)
		assert.Equal(t, "Fajr", open.PrayerName)
		assert.True(t, open.Waiting)

		var historyCount int64
		testDB.Model(&model.WindowHistory{}).Where("locale_id = ?", "jakarta").Count(&historyCount)
		assert.Equal(t, int64(2), historyCount)

		select {
		case path := <-endpoint.hits:
			t.Fatalf("unexpected push to %s for a waiting period", path)
		case <-time.After(200 * time.Millisecond):
		}
	})
}
