//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ja7ad/cpupower/pkg/rapl"
	"github.com/joho/godotenv"
)

// envConfig holds flag defaults taken from the environment (optionally a
// .env file in the working directory). Flags always win.
type envConfig struct {
	Thread    int
	Interval  time.Duration
	Samples   int
	MSRPath   string
	SysfsRoot string
	LogLevel  string
	LogFormat string
	Format    string
}

func loadEnv(files ...string) (envConfig, error) {
	// .env is optional
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return envConfig{}, fmt.Errorf("load env: %w", err)
	}

	cfg := envConfig{
		Thread:    0,
		Interval:  time.Second,
		Samples:   10,
		MSRPath:   rapl.DefaultMSRFormat,
		SysfsRoot: "/",
		LogLevel:  "info",
		LogFormat: "text",
		Format:    "table",
	}

	if v := os.Getenv("CPUPOWER_THREAD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return envConfig{}, fmt.Errorf("CPUPOWER_THREAD: invalid thread id %q", v)
		}
		cfg.Thread = n
	}
	if v := os.Getenv("CPUPOWER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return envConfig{}, fmt.Errorf("CPUPOWER_INTERVAL: invalid duration %q", v)
		}
		cfg.Interval = d
	}
	if v := os.Getenv("CPUPOWER_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return envConfig{}, fmt.Errorf("CPUPOWER_SAMPLES: invalid count %q", v)
		}
		cfg.Samples = n
	}
	if v := os.Getenv("CPUPOWER_MSR_PATH"); v != "" {
		cfg.MSRPath = v
	}
	if v := os.Getenv("CPUPOWER_SYSFS_ROOT"); v != "" {
		cfg.SysfsRoot = v
	}
	if v := os.Getenv("CPUPOWER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("CPUPOWER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("CPUPOWER_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	return cfg, nil
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("log format must be text or json, got %q", format)
	}
}
