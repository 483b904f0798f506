package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCurrentByCityDecodesConditions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Nairobi" {
			t.Errorf("q = %q, want Nairobi", got)
		}
		if got := r.URL.Query().Get("APPID"); got != "secret" {
			t.Errorf("APPID = %q, want secret", got)
		}
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clouds","description":"scattered clouds"}],"main":{"temp":295.37}}`))
	}))
	defer ts.Close()

	c := NewWeatherClient(ts.URL, "secret", time.Second)
	got, err := c.CurrentByCity(context.Background(), "Nairobi")
	if err != nil {
		t.Fatalf("CurrentByCity() error = %v", err)
	}
	if got.Description != "scattered clouds" {
		t.Fatalf("Description = %q, want %q", got.Description, "scattered clouds")
	}
	if got.TempKelvin != 295.37 {
		t.Fatalf("TempKelvin = %v, want 295.37", got.TempKelvin)
	}
}

func TestCurrentByZipUsesZipParam(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("zip"); got != "00100" {
			t.Errorf("zip = %q, want 00100", got)
		}
		if got := r.URL.Query().Get("q"); got != "" {
			t.Errorf("q = %q, want empty", got)
		}
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":300.15}}`))
	}))
	defer ts.Close()

	c := NewWeatherClient(ts.URL, "secret", time.Second)
	got, err := c.CurrentByZip(context.Background(), "00100")
	if err != nil {
		t.Fatalf("CurrentByZip() error = %v", err)
	}
	if got.Description != "clear sky" {
		t.Fatalf("Description = %q, want %q", got.Description, "clear sky")
	}
}

func TestCurrentByCityUnknownCity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewWeatherClient(ts.URL, "secret", time.Second)
	if _, err := c.CurrentByCity(context.Background(), "Nowhereville"); err == nil {
		t.Fatalf("CurrentByCity() error = nil, want not-found error")
	}
}

func TestCurrentByCityEmptyConditions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"weather":[],"main":{"temp":290.0}}`))
	}))
	defer ts.Close()

	c := NewWeatherClient(ts.URL, "secret", time.Second)
	if _, err := c.CurrentByCity(context.Background(), "Limbo"); err == nil {
		t.Fatalf("CurrentByCity() error = nil, want empty-conditions error")
	}
}
