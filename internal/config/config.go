// Package config loads igloo settings from igloo.json5 and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/igloo-cli/igloo/internal/portal"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	FileName  = "igloo.json5"
	EnvPrefix = "IGLOO"
)

type Config struct {
	BaseURL          string
	LoginPath        string
	CoursePath       string
	Timeout          time.Duration
	PollInterval     time.Duration
	LoginAttempts    int
	CacheModules     bool
	CloudflareBypass bool
	UserAgent        string
	Selectors        portal.Selectors

	// Env only.
	Username string
	Password string
	LogLevel string

	// Source is the config file that was read, empty when defaults were used.
	Source string
}

// file mirrors igloo.json5. Durations are strings like "30s".
type file struct {
	BaseURL          string           `json:"base_url"`
	LoginPath        string           `json:"login_path"`
	CoursePath       string           `json:"course_path"`
	Timeout          string           `json:"timeout"`
	PollInterval     string           `json:"poll_interval"`
	LoginAttempts    int              `json:"login_attempts"`
	CacheModules     bool             `json:"cache_modules"`
	CloudflareBypass bool             `json:"cloudflare_bypass"`
	UserAgent        string           `json:"user_agent"`
	Selectors        portal.Selectors `json:"selectors"`
}

func defaults() file {
	return file{
		BaseURL:       "https://moodle2.csis.ul.ie",
		LoginPath:     "/login/index.php",
		CoursePath:    "/course/view.php?id=",
		Timeout:       "30s",
		PollInterval:  "500ms",
		LoginAttempts: 3,
		Selectors:     portal.DefaultSelectors(),
	}
}

// Load reads the config file at path, or searches upward from the working
// directory for igloo.json5 when path is empty. A missing file found by
// search falls back to defaults; a missing explicit path is an error.
// Environment variables prefixed with IGLOO_ override every key.
func Load(path string) (Config, error) {
	var (
		f      file
		source string
		err    error
	)
	if path != "" {
		f, err = ReadFile[file](path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		source = path
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, err
		}
		f, source, err = ReadUpward[file](wd, FileName)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := mergo.Merge(&f, defaults()); err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()
	return fromViper(newViper(f), source)
}

func newViper(f file) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", f.BaseURL)
	v.SetDefault("login_path", f.LoginPath)
	v.SetDefault("course_path", f.CoursePath)
	v.SetDefault("timeout", f.Timeout)
	v.SetDefault("poll_interval", f.PollInterval)
	v.SetDefault("login_attempts", f.LoginAttempts)
	v.SetDefault("cache_modules", f.CacheModules)
	v.SetDefault("cloudflare_bypass", f.CloudflareBypass)
	v.SetDefault("user_agent", f.UserAgent)
	v.SetDefault("log_level", "info")
	v.SetDefault("username", "")
	v.SetDefault("password", "")

	v.SetDefault("selectors.username", f.Selectors.Username)
	v.SetDefault("selectors.password", f.Selectors.Password)
	v.SetDefault("selectors.login_button", f.Selectors.LoginButton)
	v.SetDefault("selectors.profile_link", f.Selectors.ProfileLink)
	v.SetDefault("selectors.module_list", f.Selectors.ModuleList)
	v.SetDefault("selectors.assignment", f.Selectors.Assignment)
	v.SetDefault("selectors.assignment_name", f.Selectors.AssignmentName)
	v.SetDefault("selectors.status_table", f.Selectors.StatusTable)
	return v
}

func fromViper(v *viper.Viper, source string) (Config, error) {
	timeout, err := parseDuration(v, "timeout")
	if err != nil {
		return Config{}, err
	}
	poll, err := parseDuration(v, "poll_interval")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:          v.GetString("base_url"),
		LoginPath:        v.GetString("login_path"),
		CoursePath:       v.GetString("course_path"),
		Timeout:          timeout,
		PollInterval:     poll,
		LoginAttempts:    v.GetInt("login_attempts"),
		CacheModules:     v.GetBool("cache_modules"),
		CloudflareBypass: v.GetBool("cloudflare_bypass"),
		UserAgent:        v.GetString("user_agent"),
		Selectors: portal.Selectors{
			Username:       v.GetString("selectors.username"),
			Password:       v.GetString("selectors.password"),
			LoginButton:    v.GetString("selectors.login_button"),
			ProfileLink:    v.GetString("selectors.profile_link"),
			ModuleList:     v.GetString("selectors.module_list"),
			Assignment:     v.GetString("selectors.assignment"),
			AssignmentName: v.GetString("selectors.assignment_name"),
			StatusTable:    v.GetString("selectors.status_table"),
		},
		Username: v.GetString("username"),
		Password: v.GetString("password"),
		LogLevel: v.GetString("log_level"),
		Source:   source,
	}
	if cfg.LoginAttempts < 1 {
		return Config{}, fmt.Errorf("login_attempts must be at least 1, got %d", cfg.LoginAttempts)
	}
	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
