package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

type Config struct {
	Source     string // playlist URL or file path
	OutputFile string

	Timeout        time.Duration
	RetryDelay     time.Duration
	MaxAttempts    int
	Concurrency    int
	AliveThreshold int // 0 = require the full MaxAttempts run
	KeepVerdicts   []domain.Verdict

	// optional basic-auth credentials forwarded to the prober
	Username string
	Password string

	FilterKeywords []string

	LogDir     string
	ResolveDNS bool

	// API service
	Addr          string
	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int
	DatabasePath  string // empty means in-memory run store

	SlackWebhook string
}

func Default() Config {
	return Config{
		OutputFile:   "alive_channels.m3u",
		Timeout:      10 * time.Second,
		RetryDelay:   300 * time.Millisecond,
		MaxAttempts:  3,
		Concurrency:  50,
		KeepVerdicts: domain.DefaultKeep(),
		LogDir:       "logs",
		ResolveDNS:   true,
		Addr:         "127.0.0.1:8080",
		PublicRPM:    120,
		PublicBurst:  60,
	}
}

// FromEnv builds a config from the environment on top of the defaults.
// Callers load .env files (godotenv) before this runs.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("PLAYLIST_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("OUTPUT_FILE"); v != "" {
		cfg.OutputFile = v
	}
	if ms := envInt("HTTP_TIMEOUT_MS", 0); ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if ms := envInt("RETRY_DELAY_MS", -1); ms >= 0 {
		cfg.RetryDelay = time.Duration(ms) * time.Millisecond
	}
	if n := envInt("MAX_ATTEMPTS", 0); n > 0 {
		cfg.MaxAttempts = n
	}
	if n := envInt("MAX_CONCURRENT_CHECKS", 0); n > 0 {
		cfg.Concurrency = n
	}
	if n := envInt("ALIVE_THRESHOLD", 0); n > 0 {
		cfg.AliveThreshold = n
	}
	if v := os.Getenv("KEEP_VERDICTS"); v != "" {
		cfg.KeepVerdicts = parseVerdicts(splitList(v))
	}

	cfg.Username = os.Getenv("PLAYLIST_USERNAME")
	cfg.Password = os.Getenv("PLAYLIST_PASSWORD")

	if v := os.Getenv("FILTER_KEYWORDS"); v != "" {
		cfg.FilterKeywords = splitList(v)
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("RESOLVE_DNS"); v != "" {
		cfg.ResolveDNS = v == "1" || strings.EqualFold(v, "true")
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PUBLIC_API_KEYS"); v != "" {
		cfg.PublicAPIKeys = splitList(v)
	}
	if v := os.Getenv("ADMIN_API_KEYS"); v != "" {
		cfg.AdminAPIKeys = splitList(v)
	}
	if n := envInt("PUBLIC_RPM", 0); n > 0 {
		cfg.PublicRPM = n
	}
	if n := envInt("PUBLIC_BURST", 0); n > 0 {
		cfg.PublicBurst = n
	}
	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	cfg.SlackWebhook = os.Getenv("SLACK_WEBHOOK")

	return cfg
}

// Validate reports every configuration problem at once. Any error means the
// run must not start.
func (c Config) Validate() error {
	var err error
	if c.MaxAttempts < 1 {
		err = multierr.Append(err, fmt.Errorf("max attempts must be >= 1, got %d", c.MaxAttempts))
	}
	if c.Concurrency < 1 {
		err = multierr.Append(err, fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency))
	}
	if c.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.RetryDelay < 0 {
		err = multierr.Append(err, fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay))
	}
	if c.AliveThreshold < 0 || (c.MaxAttempts >= 1 && c.AliveThreshold > c.MaxAttempts) {
		err = multierr.Append(err, fmt.Errorf("alive threshold must be between 0 and max attempts, got %d", c.AliveThreshold))
	}
	if len(c.KeepVerdicts) == 0 {
		err = multierr.Append(err, fmt.Errorf("keep verdicts must not be empty"))
	}
	for _, v := range c.KeepVerdicts {
		if !v.Valid() {
			err = multierr.Append(err, fmt.Errorf("unknown keep verdict %q", v))
		}
	}
	return err
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseVerdicts(parts []string) []domain.Verdict {
	out := make([]domain.Verdict, 0, len(parts))
	for _, p := range parts {
		out = append(out, domain.Verdict(strings.ToUpper(p)))
	}
	return out
}
