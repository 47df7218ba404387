package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/example/tutorcore/internal/graph"
	"github.com/example/tutorcore/internal/logger"
	"github.com/example/tutorcore/internal/planner"
)

// Default notification window, in UTC hours
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("config: invalid")

// Config is the daemon configuration
type Config struct {
	DataDir      string             `yaml:"data_dir" validate:"required"`
	Database     DatabaseConfig     `yaml:"database"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Notification NotificationConfig `yaml:"notification"`
	Log          logger.Config      `yaml:"log"`
	Planner      planner.Config     `yaml:"planner"`
	Pedagogy     graph.Thresholds   `yaml:"pedagogy"`
}

// DatabaseConfig selects the progress backend. An empty Type keeps
// progress in JSON files under DataDir.
type DatabaseConfig struct {
	Type string `yaml:"type" validate:"omitempty,oneof=sqlite3 postgres"`
	URL  string `yaml:"url" validate:"required_if=Type postgres"`
}

// TelegramConfig configures the reminder bot
type TelegramConfig struct {
	Token string `yaml:"token"`
	Debug bool   `yaml:"debug"`
}

// NotificationConfig is the hour window in which reminders go out
type NotificationConfig struct {
	Enabled   bool `yaml:"enabled"`
	StartHour int  `yaml:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int  `yaml:"end_hour" validate:"gte=0,lte=23,gtefield=StartHour"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		DataDir: "data",
		Notification: NotificationConfig{
			Enabled:   true,
			StartHour: DefaultNotificationStartHour,
			EndHour:   DefaultNotificationEndHour,
		},
		Log:      logger.Config{Level: "info", Console: true},
		Planner:  planner.DefaultConfig(),
		Pedagogy: graph.DefaultThresholds(),
	}
}

var validate = validator.New()

// Load reads .env files (missing ones are ignored), then the YAML file at
// path over the defaults, then environment overrides, and validates the
// result. An empty path skips the YAML step.
func Load(path string, envFiles ...string) (Config, error) {
	if err := loadEnv(envFiles...); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// decodeYAML rejects unknown keys so typos do not pass silently
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"TUTOR_DATA_DIR":     &cfg.DataDir,
		"DB_TYPE":            &cfg.Database.Type,
		"DATABASE_URL":       &cfg.Database.URL,
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.Token,
		"LOG_LEVEL":          &cfg.Log.Level,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	hours := map[string]*int{
		"NOTIFICATION_START_HOUR": &cfg.Notification.StartHour,
		"NOTIFICATION_END_HOUR":   &cfg.Notification.EndHour,
	}
	for key, dst := range hours {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		h, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an hour", ErrInvalid, key, v)
		}
		*dst = h
	}

	if v, ok := os.LookupEnv("ENABLE_SCHEDULER"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: ENABLE_SCHEDULER=%q", ErrInvalid, v)
		}
		cfg.Notification.Enabled = enabled
	}
	return nil
}

// Validate checks field ranges and the planner settings
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := planner.New(c.Planner); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Notification.Enabled && c.Telegram.Token == "" {
		return fmt.Errorf("%w: notifications need TELEGRAM_BOT_TOKEN", ErrInvalid)
	}
	return nil
}

// InWindow reports whether hour falls in the notification window, inclusive
func (n NotificationConfig) InWindow(hour int) bool {
	return hour >= n.StartHour && hour <= n.EndHour
}
