package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the chatbot service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	// Upstream request budget for a single weather/stats/recognizer call.
	RequestTimeout time.Duration

	// Recognizer settings. All three must be set for intent recognition to
	// be available; otherwise the bot degrades to the weather-only path.
	LuisAppID       string
	LuisAPIKey      string
	LuisAPIHostName string

	WeatherBaseURL string
	WeatherAPIKey  string

	CovidBaseURL string
	// Enables the "all" alias that answers with aggregate world statistics.
	CovidWorldBrief bool

	RedisAddr   string
	DatabaseURL string
}

// LoadDotenv reads a .env file when present. A missing file is not an error;
// deployments that inject real environment variables skip the file entirely.
func LoadDotenv(path string) {
	_ = godotenv.Load(path)
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":3978"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "habaribot"),
		AllowAnyOrigin:   false,
		ShutdownTimeout:  15 * time.Second,
		RequestTimeout:   10 * time.Second,
		LuisAppID:        envTrimmed("LUIS_APP_ID"),
		LuisAPIKey:       envTrimmed("LUIS_API_KEY"),
		LuisAPIHostName:  envTrimmed("LUIS_API_HOSTNAME"),
		WeatherBaseURL:   envOrDefault("WEATHER_API_BASE_URL", "http://api.openweathermap.org"),
		WeatherAPIKey:    envTrimmed("WEATHER_API_KEY"),
		CovidBaseURL:     envOrDefault("COVID_API_BASE_URL", "https://wuhan-coronavirus-api.laeyoung.endpoint.ainize.ai"),
		CovidWorldBrief:  true,
		RedisAddr:        envTrimmed("REDIS_ADDR"),
		DatabaseURL:      envTrimmed("DATABASE_URL"),
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RequestTimeout, err = durationFromEnv("APP_REQUEST_TIMEOUT", cfg.RequestTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.CovidWorldBrief, err = boolFromEnv("COVID_WORLD_BRIEF", cfg.CovidWorldBrief)
	if err != nil {
		return Config{}, err
	}

	if cfg.WeatherAPIKey == "" {
		return Config{}, fmt.Errorf("WEATHER_API_KEY is required")
	}
	if cfg.RequestTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_REQUEST_TIMEOUT must be at least 1s")
	}

	return cfg, nil
}

// RecognizerConfigured reports whether all recognizer settings are present.
func (c Config) RecognizerConfigured() bool {
	return c.LuisAppID != "" && c.LuisAPIKey != "" && c.LuisAPIHostName != ""
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
