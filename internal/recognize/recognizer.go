// Package recognize classifies user utterances through a LUIS-style
// prediction endpoint.
//
// Recognition is an optional capability: when the service is not configured
// the bot has no recognizer at all (a nil *LUISClient) and callers follow
// their degraded path instead of probing availability per call.
package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Intent is the closed set of intents the bot understands.
type Intent string

const (
	IntentCheckWeather   Intent = "CheckWeather"
	IntentCheckCovidStat Intent = "CheckCovid19Stat"
	IntentHelp           Intent = "Help"
	IntentCancel         Intent = "Cancel"
	IntentNone           Intent = "None"
)

// Result carries the top intent plus any entities found in the utterance.
type Result struct {
	Intent  Intent
	City    string
	Country string
}

// Recognizer classifies one utterance.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (Result, error)
}

// Config holds LUIS connection settings.
type Config struct {
	AppID    string
	APIKey   string
	Hostname string
	Timeout  time.Duration
}

// LUISClient calls the LUIS v3 prediction endpoint.
type LUISClient struct {
	appID  string
	apiKey string
	base   string
	client *http.Client
}

// NewLUISClient builds a client from config. It returns nil when the
// recognizer is not fully configured; a nil client is a valid "recognition
// unavailable" state for the dialogs.
func NewLUISClient(cfg Config) *LUISClient {
	if strings.TrimSpace(cfg.AppID) == "" || strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.Hostname) == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := cfg.Hostname
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &LUISClient{
		appID:  cfg.AppID,
		apiKey: cfg.APIKey,
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

type predictionResponse struct {
	Prediction struct {
		TopIntent string `json:"topIntent"`
		Entities  struct {
			City        []string `json:"City"`
			CountryName []string `json:"CountryName"`
		} `json:"entities"`
	} `json:"prediction"`
}

// Recognize queries the prediction endpoint and maps the reply onto the
// bot's intent set. Unknown intents map to IntentNone.
func (c *LUISClient) Recognize(ctx context.Context, text string) (Result, error) {
	endpoint := fmt.Sprintf("%s/luis/prediction/v3.0/apps/%s/slots/production/predict?subscription-key=%s&query=%s",
		c.base, url.PathEscape(c.appID), url.QueryEscape(c.apiKey), url.QueryEscape(text))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Result{}, fmt.Errorf("luis http status %d: %s", res.StatusCode, string(body))
	}

	var parsed predictionResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("decode prediction: %w", err)
	}

	out := Result{Intent: mapIntent(parsed.Prediction.TopIntent)}
	if len(parsed.Prediction.Entities.City) > 0 {
		out.City = strings.TrimSpace(parsed.Prediction.Entities.City[0])
	}
	if len(parsed.Prediction.Entities.CountryName) > 0 {
		out.Country = strings.TrimSpace(parsed.Prediction.Entities.CountryName[0])
	}
	return out, nil
}

func mapIntent(name string) Intent {
	switch name {
	case "CheckWeather":
		return IntentCheckWeather
	case "CheckCovid19Stat":
		return IntentCheckCovidStat
	case "Help":
		return IntentHelp
	case "Cancel":
		return IntentCancel
	default:
		return IntentNone
	}
}
