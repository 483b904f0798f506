// Package upstream holds the REST clients for the weather and COVID-19
// statistics services.
package upstream

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

// Weather is the current-conditions result for one city. The temperature is
// kept in Kelvin exactly as the source reports it; display conversion is the
// caller's concern.
type Weather struct {
	Description string
	TempKelvin  float64
}

// WeatherClient calls the OpenWeatherMap current-weather endpoint.
type WeatherClient struct {
	base   string
	apiKey string
	client *http.Client
}

func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherClient{
		base:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type openWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// CurrentByCity fetches current conditions for a city by name.
func (c *WeatherClient) CurrentByCity(ctx context.Context, city string) (Weather, error) {
	return c.current(ctx, "q", city)
}

// CurrentByZip fetches current conditions by postal code.
func (c *WeatherClient) CurrentByZip(ctx context.Context, zip string) (Weather, error) {
	return c.current(ctx, "zip", zip)
}

func (c *WeatherClient) current(ctx context.Context, param, query string) (Weather, error) {
	endpoint := fmt.Sprintf("%s/data/2.5/weather?%s=%s&APPID=%s", c.base, param, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Weather{}, fmt.Errorf("create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return Weather{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Weather{}, fmt.Errorf("weather http status %d: %s", res.StatusCode, string(body))
	}

	var parsed openWeatherResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return Weather{}, fmt.Errorf("decode weather: %w", err)
	}
	if len(parsed.Weather) == 0 {
		return Weather{}, fmt.Errorf("weather response has no conditions for %q", query)
	}

	return Weather{
		Description: parsed.Weather[0].Description,
		TempKelvin:  parsed.Main.Temp,
	}, nil
}
