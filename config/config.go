package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"ibadah-companion-backend/internal/prayer"
	"ibadah-companion-backend/internal/qibla"
	"ibadah-companion-backend/internal/zakat"
)

// Config represents the overall application configuration.
type Config struct {
	Log        LogConfig         `yaml:"log"`
	Server     ServerConfig      `yaml:"server"`
	Database   DatabaseConfig    `yaml:"database"`
	Cache      CacheConfig       `yaml:"cache"`
	Push       PushConfig        `yaml:"push"`
	WorkerPool WorkerPoolConfig  `yaml:"worker_pool"`
	Reminder   ReminderConfig    `yaml:"reminder"`
	MQTT       MQTTConfig        `yaml:"mqtt"`
	Qibla      QiblaConfig       `yaml:"qibla"`
	Zakat      zakat.Params      `yaml:"zakat"`
	Prayers    map[string]string `yaml:"prayer_names"`
	Locales    []LocaleConfig    `yaml:"locales"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RequestIPHeader string   `yaml:"request_ip_header"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// CacheConfig selects where cached API responses live.
type CacheConfig struct {
	Backend       string `yaml:"backend"` // memory or redis
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// ReminderConfig controls the periodic window check.
type ReminderConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// MQTTConfig configures the optional broker that display screens listen on.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BrokerURL   string `yaml:"broker_url"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// QiblaConfig is the point bearings are computed towards.
type QiblaConfig struct {
	Target qibla.Coordinate `yaml:"target"`
}

// LocaleConfig is one place with its own timezone and prayer table.
type LocaleConfig struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Timezone      string         `yaml:"timezone"`
	WaitingFormat string         `yaml:"waiting_format"`
	CurrentFormat string         `yaml:"current_format"`
	Prayers       OrderedPrayers `yaml:"prayers"`

	Table    prayer.Table   `yaml:"-"`
	Location *time.Location `yaml:"-"`
}

// OrderedPrayers is a YAML mapping of prayer name to "HH:MM" that keeps the
// order the entries were written in.
type OrderedPrayers []prayer.Pair

// UnmarshalYAML decodes a mapping node pair by pair.
func (o *OrderedPrayers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: prayers must be a mapping of name to time", node.Line)
	}
	pairs := make(OrderedPrayers, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name, at string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&at); err != nil {
			return err
		}
		pairs = append(pairs, prayer.Pair{Name: name, Time: at})
	}
	*o = pairs
	return nil
}

// DisplayName returns the configured display name for a prayer, or the name
// itself.
func (c *Config) DisplayName(name string) string {
	if v, ok := c.Prayers[name]; ok && v != "" {
		return v
	}
	return name
}

// CacheTTL is how long cacheable API responses are kept.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Server.CacheTTLSeconds) * time.Second
}

// Locale returns the locale with the given id.
func (c *Config) Locale(id string) (*LocaleConfig, bool) {
	for i := range c.Locales {
		if c.Locales[i].ID == id {
			return &c.Locales[i], true
		}
	}
	return nil, false
}

// Label returns the localized text for a window: the waiting format before
// the day's first prayer, the current format otherwise.
func (l *LocaleConfig) Label(displayName string, waiting bool) string {
	if waiting {
		return fmt.Sprintf(l.WaitingFormat, displayName)
	}
	return fmt.Sprintf(l.CurrentFormat, displayName)
}

// Load reads the configuration from the given path. A .env file next to the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, as if an empty file had been
// loaded. Environment overrides are applied.
func Default() (*Config, error) {
	var cfg Config
	applyEnv(&cfg)
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 5
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "ibadah.db"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size < 0 {
		log.Warn().Int("size", cfg.WorkerPool.Size).Msg("worker_pool.size is invalid; defaulting to 1")
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Reminder.IntervalSeconds <= 0 {
		cfg.Reminder.IntervalSeconds = 30
	}
	cfg.Reminder.Interval = time.Duration(cfg.Reminder.IntervalSeconds) * time.Second

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "ibadahd"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "ibadah"
	}

	if cfg.Qibla.Target == (qibla.Coordinate{}) {
		cfg.Qibla.Target = qibla.Kaaba
	}
	if err := cfg.Qibla.Target.Validate(); err != nil {
		return fmt.Errorf("qibla.target: %w", err)
	}

	defaults := zakat.DefaultParams()
	if cfg.Zakat.NisabGoldGrams <= 0 {
		cfg.Zakat.NisabGoldGrams = defaults.NisabGoldGrams
	}
	if cfg.Zakat.Rate <= 0 {
		cfg.Zakat.Rate = defaults.Rate
	}
	if cfg.Zakat.Rate > 1 {
		return fmt.Errorf("zakat.rate: %v is above 1", cfg.Zakat.Rate)
	}
	if cfg.Zakat.FitrahStapleKg <= 0 {
		cfg.Zakat.FitrahStapleKg = defaults.FitrahStapleKg
	}
	if cfg.Prayers == nil {
		cfg.Prayers = DefaultPrayerNames()
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = DefaultLocales()
	}
	return cfg.resolveLocales()
}

func (cfg *Config) resolveLocales() error {
	seen := make(map[string]bool, len(cfg.Locales))
	for i := range cfg.Locales {
		l := &cfg.Locales[i]
		if l.ID == "" {
			return fmt.Errorf("locales[%d]: id is required", i)
		}
		if seen[l.ID] {
			return fmt.Errorf("locales[%d]: duplicate id %q", i, l.ID)
		}
		seen[l.ID] = true

		if l.Name == "" {
			l.Name = l.ID
		}
		if l.Timezone == "" {
			l.Timezone = "UTC"
		}
		if l.WaitingFormat == "" {
			l.WaitingFormat = "Menunggu %s"
		}
		if l.CurrentFormat == "" {
			l.CurrentFormat = "Waktu %s"
		}
		if err := checkLabelFormat(l.WaitingFormat); err != nil {
			return fmt.Errorf("locale %s: waiting_format: %w", l.ID, err)
		}
		if err := checkLabelFormat(l.CurrentFormat); err != nil {
			return fmt.Errorf("locale %s: current_format: %w", l.ID, err)
		}

		loc, err := time.LoadLocation(l.Timezone)
		if err != nil {
			return fmt.Errorf("locale %s: %w", l.ID, err)
		}
		l.Location = loc

		table, err := prayer.ParseTable(l.Prayers)
		if err != nil {
			return fmt.Errorf("locale %s: %w", l.ID, err)
		}
		l.Table = table
	}
	return nil
}

// checkLabelFormat requires exactly one %s and no other verbs; "%%" is a
// literal percent sign.
func checkLabelFormat(format string) error {
	rest := strings.ReplaceAll(format, "%%", "")
	if n := strings.Count(rest, "%s"); n != 1 {
		return fmt.Errorf("%q must contain exactly one %%s, found %d", format, n)
	}
	if strings.Contains(strings.Replace(rest, "%s", "", 1), "%") {
		return fmt.Errorf("%q may only use %%s", format)
	}
	return nil
}

// DefaultPrayerNames maps canonical prayer names to Indonesian display names.
func DefaultPrayerNames() map[string]string {
	return map[string]string{
		"Fajr":    "Subuh",
		"Dhuhr":   "Dzuhur",
		"Asr":     "Ashar",
		"Maghrib": "Maghrib",
		"Isha":    "Isya",
	}
}

// DefaultLocales returns Jakarta and Makkah with fixed daily tables.
func DefaultLocales() []LocaleConfig {
	return []LocaleConfig{
		{
			ID:       "jakarta",
			Name:     "Jakarta (WIB)",
			Timezone: "Asia/Jakarta",
			Prayers: OrderedPrayers{
				{Name: "Fajr", Time: "04:40"},
				{Name: "Dhuhr", Time: "11:58"},
				{Name: "Asr", Time: "15:20"},
				{Name: "Maghrib", Time: "17:55"},
				{Name: "Isha", Time: "19:08"},
			},
		},
		{
			ID:       "makkah",
			Name:     "Makkah (KSA)",
			Timezone: "Asia/Riyadh",
			Prayers: OrderedPrayers{
				{Name: "Fajr", Time: "04:55"},
				{Name: "Dhuhr", Time: "12:20"},
				{Name: "Asr", Time: "15:45"},
				{Name: "Maghrib", Time: "18:35"},
				{Name: "Isha", Time: "19:55"},
			},
		},
	}
}
