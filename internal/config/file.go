package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with yaml tags; zero values mean "not set" and
// keep whatever the base config already has.
type fileConfig struct {
	Source         string   `yaml:"source"`
	OutputFile     string   `yaml:"output_file"`
	TimeoutMS      int      `yaml:"timeout_ms"`
	RetryDelayMS   *int     `yaml:"retry_delay_ms"`
	MaxAttempts    int      `yaml:"max_attempts"`
	Concurrency    int      `yaml:"concurrency"`
	AliveThreshold int      `yaml:"alive_threshold"`
	KeepVerdicts   []string `yaml:"keep_verdicts"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	FilterKeywords []string `yaml:"filter_keywords"`
	LogDir         string   `yaml:"log_dir"`
	ResolveDNS     *bool    `yaml:"resolve_dns"`
	Addr           string   `yaml:"addr"`
	DatabasePath   string   `yaml:"database_path"`
	SlackWebhook   string   `yaml:"slack_webhook"`
}

// FromFile layers a YAML config file over base.
func FromFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return base, fmt.Errorf("parse config file: %w", err)
	}

	cfg := base
	if fc.Source != "" {
		cfg.Source = fc.Source
	}
	if fc.OutputFile != "" {
		cfg.OutputFile = fc.OutputFile
	}
	if fc.TimeoutMS > 0 {
		cfg.Timeout = time.Duration(fc.TimeoutMS) * time.Millisecond
	}
	if fc.RetryDelayMS != nil && *fc.RetryDelayMS >= 0 {
		cfg.RetryDelay = time.Duration(*fc.RetryDelayMS) * time.Millisecond
	}
	if fc.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.MaxAttempts
	}
	if fc.Concurrency > 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if fc.AliveThreshold > 0 {
		cfg.AliveThreshold = fc.AliveThreshold
	}
	if len(fc.KeepVerdicts) > 0 {
		cfg.KeepVerdicts = parseVerdicts(fc.KeepVerdicts)
	}
	if fc.Username != "" {
		cfg.Username = fc.Username
	}
	if fc.Password != "" {
		cfg.Password = fc.Password
	}
	if len(fc.FilterKeywords) > 0 {
		cfg.FilterKeywords = fc.FilterKeywords
	}
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}
	if fc.ResolveDNS != nil {
		cfg.ResolveDNS = *fc.ResolveDNS
	}
	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.SlackWebhook != "" {
		cfg.SlackWebhook = fc.SlackWebhook
	}
	return cfg, nil
}
