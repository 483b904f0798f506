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

// Stats is one COVID-19 statistics snapshot, per country or world-wide.
type Stats struct {
	CountryRegion string
	Confirmed     int64
	Recovered     int64
	Deaths        int64
	LastUpdate    string
}

// CovidClient calls the JHU-sourced statistics service.
type CovidClient struct {
	base   string
	client *http.Client
}

func NewCovidClient(baseURL string, timeout time.Duration) *CovidClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CovidClient{
		base:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{Timeout: timeout},
	}
}

type covidRecord struct {
	CountryRegion string `json:"countryregion"`
	Confirmed     int64  `json:"confirmed"`
	Recovered     int64  `json:"recovered"`
	Deaths        int64  `json:"deaths"`
	LastUpdate    string `json:"lastupdate"`
}

// StatsByCountryCode fetches the latest snapshot for one ISO2 country code.
func (c *CovidClient) StatsByCountryCode(ctx context.Context, iso2 string) (Stats, error) {
	endpoint := fmt.Sprintf("%s/jhu-edu/latest?iso2=%s&onlyCountries=false", c.base, url.QueryEscape(iso2))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return Stats{}, err
	}

	var records []covidRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	if len(records) == 0 {
		return Stats{}, fmt.Errorf("no statistics for country code %q", iso2)
	}
	return toStats(records[0]), nil
}

// WorldBrief fetches the aggregate world-wide snapshot.
func (c *CovidClient) WorldBrief(ctx context.Context) (Stats, error) {
	body, err := c.get(ctx, c.base+"/jhu-edu/brief")
	if err != nil {
		return Stats{}, err
	}

	var record covidRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return Stats{}, fmt.Errorf("decode brief: %w", err)
	}
	return toStats(record), nil
}

func (c *CovidClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("covid http status %d: %s", res.StatusCode, string(body))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func toStats(r covidRecord) Stats {
	return Stats{
		CountryRegion: r.CountryRegion,
		Confirmed:     r.Confirmed,
		Recovered:     r.Recovered,
		Deaths:        r.Deaths,
		LastUpdate:    r.LastUpdate,
	}
}
