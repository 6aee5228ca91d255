// Package config loads the bridge's configuration from a .env file and
// the process environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for everything that is not a credential.
const (
	DefaultBaseURL        = "https://api.thingspeak.com"
	DefaultPort           = "auto"
	DefaultBaud           = 9600
	DefaultUploadInterval = 15 * time.Second // remote free-tier floor
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultHTTPTimeout    = 10 * time.Second
	DefaultSettleDelay    = 2 * time.Second // device resets when the port opens
	DefaultStateFile      = "votes.json"
	DefaultAuditFile      = "votes.csv"
)

// Config is everything the bridge needs to run. WriteKey, ReadKey, and
// ChannelID are required; missing any of them is startup-fatal.
type Config struct {
	WriteKey  string
	ReadKey   string
	ChannelID string
	BaseURL   string

	Port string // serial device path, or "auto" to detect
	Baud int

	UploadInterval time.Duration
	PollInterval   time.Duration
	HTTPTimeout    time.Duration
	SettleDelay    time.Duration

	StateFile  string
	AuditFile  string
	RosterFile string // optional YAML roster; empty means built-in roster
}

// Load reads .env (best-effort; a missing file is fine) and then the
// environment. envFile overrides the default ".env" lookup when set.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		WriteKey:   os.Getenv("THINGSPEAK_WRITE_API_KEY"),
		ReadKey:    os.Getenv("THINGSPEAK_READ_API_KEY"),
		ChannelID:  os.Getenv("THINGSPEAK_CHANNEL_ID"),
		BaseURL:    envOr("VOTEBRIDGE_BASE_URL", DefaultBaseURL),
		Port:       envOr("VOTEBRIDGE_PORT", DefaultPort),
		StateFile:  envOr("VOTEBRIDGE_STATE_FILE", DefaultStateFile),
		AuditFile:  envOr("VOTEBRIDGE_AUDIT_FILE", DefaultAuditFile),
		RosterFile: os.Getenv("VOTEBRIDGE_ROSTER_FILE"),
	}

	var missing []string
	if cfg.WriteKey == "" {
		missing = append(missing, "THINGSPEAK_WRITE_API_KEY")
	}
	if cfg.ReadKey == "" {
		missing = append(missing, "THINGSPEAK_READ_API_KEY")
	}
	if cfg.ChannelID == "" {
		missing = append(missing, "THINGSPEAK_CHANNEL_ID")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	var err error
	if cfg.Baud, err = envInt("VOTEBRIDGE_BAUD", DefaultBaud); err != nil {
		return Config{}, err
	}
	if cfg.Baud <= 0 {
		return Config{}, errors.New("VOTEBRIDGE_BAUD must be positive")
	}
	if cfg.UploadInterval, err = envDuration("VOTEBRIDGE_UPLOAD_INTERVAL", DefaultUploadInterval); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = envDuration("VOTEBRIDGE_POLL_INTERVAL", DefaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = envDuration("VOTEBRIDGE_HTTP_TIMEOUT", DefaultHTTPTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SettleDelay, err = envDuration("VOTEBRIDGE_SETTLE_DELAY", DefaultSettleDelay); err != nil {
		return Config{}, err
	}
	if cfg.UploadInterval <= 0 || cfg.PollInterval <= 0 || cfg.HTTPTimeout <= 0 {
		return Config{}, errors.New("intervals and timeouts must be positive")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
