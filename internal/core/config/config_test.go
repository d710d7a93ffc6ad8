package config

import (
	"reflect"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ADDR", "PRECISION", "MAX_SIZE_REQUEST_BODY", "CACHE_TTL", "CORS_ALLOW_ORIGINS", "GEODESY_PROVIDER", "API_VERSION"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	if cfg.Addr != ":8000" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.Precision != 4 || cfg.MaxBodyBytes != 2_000_000 {
		t.Fatalf("precision=%d max=%d", cfg.Precision, cfg.MaxBodyBytes)
	}
	if cfg.Cache.TTL != 10*time.Minute || cfg.Cache.L1Size != 512 {
		t.Fatalf("cache=%+v", cfg.Cache)
	}
	if cfg.Provider != "builtin" || cfg.APIVersion != "2.0.0" {
		t.Fatalf("provider=%q api version=%q", cfg.Provider, cfg.APIVersion)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("CORSOrigins=%v want nil", cfg.CORSOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PRECISION", "6")
	t.Setenv("MAX_SIZE_REQUEST_BODY", "-1")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CACHE_ENABLED", "no")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://example.org, ,https://pdok.nl ")

	cfg := FromEnv()
	if cfg.Precision != 6 {
		t.Fatalf("Precision=%d", cfg.Precision)
	}
	if cfg.MaxBodyBytes != 2_000_000 {
		t.Fatalf("MaxBodyBytes=%d want default for non-positive value", cfg.MaxBodyBytes)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("TTL=%v", cfg.Cache.TTL)
	}
	if cfg.Cache.Enabled {
		t.Fatal("expected cache disabled")
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://example.org", "https://pdok.nl"}) {
		t.Fatalf("CORSOrigins=%v", cfg.CORSOrigins)
	}
}
