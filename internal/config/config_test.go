package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("WEATHER_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":3978" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":3978")
	}
	if cfg.MetricsNamespace != "habaribot" {
		t.Fatalf("MetricsNamespace = %q, want %q", cfg.MetricsNamespace, "habaribot")
	}
	if !cfg.CovidWorldBrief {
		t.Fatalf("CovidWorldBrief = false, want true by default")
	}
	if cfg.RecognizerConfigured() {
		t.Fatalf("RecognizerConfigured() = true with no LUIS settings")
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, 10*time.Second)
	}
}

func TestLoadRequiresWeatherKey(t *testing.T) {
	setCoreEnvEmpty(t)

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want missing WEATHER_API_KEY error")
	}
}

func TestLoadRecognizerConfigured(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("WEATHER_API_KEY", "test-key")
	t.Setenv("LUIS_APP_ID", "app")
	t.Setenv("LUIS_API_KEY", "key")
	t.Setenv("LUIS_API_HOSTNAME", "westus.api.cognitive.microsoft.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.RecognizerConfigured() {
		t.Fatalf("RecognizerConfigured() = false with all LUIS settings present")
	}
}

func TestLoadRejectsBadBool(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("WEATHER_API_KEY", "test-key")
	t.Setenv("COVID_WORLD_BRIEF", "maybe")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want bool parse error")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_REQUEST_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"LUIS_APP_ID",
		"LUIS_API_KEY",
		"LUIS_API_HOSTNAME",
		"WEATHER_API_BASE_URL",
		"WEATHER_API_KEY",
		"COVID_API_BASE_URL",
		"COVID_WORLD_BRIEF",
		"REDIS_ADDR",
		"DATABASE_URL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
