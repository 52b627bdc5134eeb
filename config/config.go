package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	ListenAddr    string `yaml:"listen_addr"`
	NewsPath      string `yaml:"news_path"`
	BehaviorsPath string `yaml:"behaviors_path"`
	DBPath        string `yaml:"db_path"`
	RebuildTime   string `yaml:"rebuild_time"`
	Timezone      string `yaml:"timezone"`
	LogLevel      string `yaml:"log_level"`
}

// Defaults returns a Config with all default values set.
func Defaults() Config {
	return Config{
		ListenAddr:    ":8080",
		NewsPath:      "./static/news.tsv",
		BehaviorsPath: "./static/behaviors.tsv",
		DBPath:        "./newsrec.db",
		RebuildTime:   "04:00",
		Timezone:      "UTC",
		LogLevel:      "info",
	}
}

// Load reads a YAML config file and returns a validated Config.
// Environment variables NEWSREC_CONFIG and NEWSREC_DB can override the
// config path and db path.
func Load(path string) (Config, error) {
	if envPath := os.Getenv("NEWSREC_CONFIG"); envPath != "" {
		path = envPath
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if envDB := os.Getenv("NEWSREC_DB"); envDB != "" {
		cfg.DBPath = envDB
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that required fields are present and values are valid.
func (c *Config) Validate() error {
	if c.NewsPath == "" {
		return fmt.Errorf("news_path is required")
	}
	if c.BehaviorsPath == "" {
		return fmt.Errorf("behaviors_path is required")
	}

	if err := ValidateTime(c.RebuildTime); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return nil
}

// ValidateTime checks that a time string is in valid HH:MM 24-hour format.
func ValidateTime(t string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	if t[0] < '0' || t[0] > '9' || t[1] < '0' || t[1] > '9' ||
		t[3] < '0' || t[3] > '9' || t[4] < '0' || t[4] > '9' {
		return fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	hour := (int(t[0]-'0') * 10) + int(t[1]-'0')
	minute := (int(t[3]-'0') * 10) + int(t[4]-'0')

	if hour > 23 {
		return fmt.Errorf("invalid time %q: hour must be 0-23", t)
	}
	if minute > 59 {
		return fmt.Errorf("invalid time %q: minute must be 0-59", t)
	}

	return nil
}
