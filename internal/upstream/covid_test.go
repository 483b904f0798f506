package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatsByCountryCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jhu-edu/latest" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("iso2"); got != "KE" {
			t.Errorf("iso2 = %q, want KE", got)
		}
		_, _ = w.Write([]byte(`[{"countryregion":"Kenya","confirmed":420,"recovered":150,"deaths":20,"lastupdate":"2020-05-03T02:32:28.000Z"}]`))
	}))
	defer ts.Close()

	c := NewCovidClient(ts.URL, time.Second)
	got, err := c.StatsByCountryCode(context.Background(), "KE")
	if err != nil {
		t.Fatalf("StatsByCountryCode() error = %v", err)
	}
	if got.CountryRegion != "Kenya" {
		t.Fatalf("CountryRegion = %q, want Kenya", got.CountryRegion)
	}
	if got.Confirmed != 420 || got.Recovered != 150 || got.Deaths != 20 {
		t.Fatalf("counters = %d/%d/%d, want 420/150/20", got.Confirmed, got.Recovered, got.Deaths)
	}
}

func TestStatsByCountryCodeEmptyResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := NewCovidClient(ts.URL, time.Second)
	if _, err := c.StatsByCountryCode(context.Background(), "XX"); err == nil {
		t.Fatalf("StatsByCountryCode() error = nil, want empty-result error")
	}
}

func TestWorldBrief(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jhu-edu/brief" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"confirmed":3500000,"recovered":1100000,"deaths":250000,"lastupdate":"2020-05-03T02:32:28.000Z"}`))
	}))
	defer ts.Close()

	c := NewCovidClient(ts.URL, time.Second)
	got, err := c.WorldBrief(context.Background())
	if err != nil {
		t.Fatalf("WorldBrief() error = %v", err)
	}
	if got.Confirmed != 3500000 {
		t.Fatalf("Confirmed = %d, want 3500000", got.Confirmed)
	}
}

func TestWorldBriefMalformedPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	c := NewCovidClient(ts.URL, time.Second)
	if _, err := c.WorldBrief(context.Background()); err == nil {
		t.Fatalf("WorldBrief() error = nil, want decode error")
	}
}
