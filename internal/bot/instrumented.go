package bot

import (
	"context"

	"github.com/mkamau/habaribot/internal/dialog"
	"github.com/mkamau/habaribot/internal/observability"
	"github.com/mkamau/habaribot/internal/upstream"
)

// instrumentedWeather counts upstream failures without changing semantics.
type instrumentedWeather struct {
	svc     dialog.WeatherService
	metrics *observability.Metrics
}

func (w *instrumentedWeather) CurrentByCity(ctx context.Context, city string) (upstream.Weather, error) {
	res, err := w.svc.CurrentByCity(ctx, city)
	if err != nil {
		w.metrics.UpstreamErrors.WithLabelValues("weather").Inc()
	}
	return res, err
}

type instrumentedCovid struct {
	svc     dialog.CovidService
	metrics *observability.Metrics
}

func (c *instrumentedCovid) StatsByCountryCode(ctx context.Context, iso2 string) (upstream.Stats, error) {
	res, err := c.svc.StatsByCountryCode(ctx, iso2)
	if err != nil {
		c.metrics.UpstreamErrors.WithLabelValues("covid").Inc()
	}
	return res, err
}

func (c *instrumentedCovid) WorldBrief(ctx context.Context) (upstream.Stats, error) {
	res, err := c.svc.WorldBrief(ctx)
	if err != nil {
		c.metrics.UpstreamErrors.WithLabelValues("covid").Inc()
	}
	return res, err
}
