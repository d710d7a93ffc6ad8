// Package config reads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type CacheCfg struct {
	Enabled   bool
	L1Size    int
	TTL       time.Duration
	RedisAddr string
	OpTimeout time.Duration
}

type Config struct {
	Addr           string
	LogLevel       string
	LogConsole     bool
	LogSampleN     int
	Precision      int
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	BaseURL        string
	CORSOrigins    []string
	CRSConfigPath  string
	APIVersion     string
	Provider       string
	ProviderCache  int
	Cache          CacheCfg
	MetricsEnabled bool
	MetricsAddr    string
}

func FromEnv() Config {
	precision := getint("PRECISION", 4)
	if precision < 0 {
		precision = 0
	}
	maxBody := getint64("MAX_SIZE_REQUEST_BODY", 2_000_000)
	if maxBody <= 0 {
		maxBody = 2_000_000
	}

	return Config{
		Addr:           getenv("ADDR", ":8000"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogConsole:     getbool("LOG_CONSOLE", false),
		LogSampleN:     getint("LOG_SAMPLE_N", 0),
		Precision:      precision,
		MaxBodyBytes:   maxBody,
		RequestTimeout: getduration("REQUEST_TIMEOUT", 10*time.Second),
		BaseURL:        getenv("BASE_URL", "http://localhost:8000"),
		CORSOrigins:    getlist("CORS_ALLOW_ORIGINS", nil),
		CRSConfigPath:  getenv("CRS_CONFIG_PATH", ""),
		APIVersion:     getenv("API_VERSION", "2.0.0"),
		Provider:       getenv("GEODESY_PROVIDER", "builtin"),
		ProviderCache:  getint("GEODESY_CACHE_SIZE", 256),
		Cache: CacheCfg{
			Enabled:   getbool("CACHE_ENABLED", true),
			L1Size:    getint("CACHE_L1_SIZE", 512),
			TTL:       getduration("CACHE_TTL", 10*time.Minute),
			RedisAddr: getenv("REDIS_ADDR", ""),
			OpTimeout: getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		},
		MetricsEnabled: getbool("METRICS_ENABLED", true),
		MetricsAddr:    getenv("METRICS_ADDR", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getlist splits a comma separated value, dropping empty items.
func getlist(k string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
