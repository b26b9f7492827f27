// Package geo resolves approximate coordinates for a caller through an
// external IP geolocation provider. Every lookup is one-shot: there is no
// cached fix, and the request deadline is fixed at configuration time.
package geo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Rolando1980/client-geo-logger/internal/platform/config"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

const msgLocationFailed = "no se pudo obtener la ubicación actual"

// Fix is one resolved position.
type Fix struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	City       string    `json:"city,omitempty"`
	Region     string    `json:"region,omitempty"`
	Country    string    `json:"country,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// providerResponse matches the ip-api.com JSON shape.
type providerResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Region  string  `json:"regionName"`
	Country string  `json:"country"`
}

// Locator calls the geolocation provider.
type Locator struct {
	client  *resty.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewLocator builds a Locator against cfg.ProviderURL with cfg.Timeout as
// the per-request deadline.
func NewLocator(cfg config.GeoConfig, m *metrics.Metrics, logger *slog.Logger) *Locator {
	client := resty.New().
		SetBaseURL(cfg.ProviderURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)
	return &Locator{client: client, metrics: m, logger: logger}
}

// Locate resolves the approximate position of ip. Failures classify as
// Unavailable; the caller decides whether a missing fix blocks its flow.
func (l *Locator) Locate(ctx context.Context, ip string) (*Fix, error) {
	var out providerResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/" + ip)
	if err != nil {
		l.record("error")
		l.logger.WarnContext(ctx, "geolocation provider unreachable", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgLocationFailed)
	}
	if resp.IsError() {
		l.record("error")
		l.logger.WarnContext(ctx, "geolocation provider error", "status", resp.StatusCode())
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "%s", msgLocationFailed)
	}
	if out.Status != "success" {
		l.record("denied")
		l.logger.WarnContext(ctx, "geolocation lookup denied",
			"ip", ip,
			"reason", out.Message,
		)
		return nil, dErrors.Wrap(fmt.Errorf("provider: %s", out.Message), dErrors.CodeUnavailable, msgLocationFailed)
	}

	l.record("success")
	return &Fix{
		Latitude:   out.Lat,
		Longitude:  out.Lon,
		City:       out.City,
		Region:     out.Region,
		Country:    out.Country,
		CapturedAt: time.Now().UTC(),
	}, nil
}

func (l *Locator) record(result string) {
	if l.metrics != nil {
		l.metrics.GeoLookups.WithLabelValues(result).Inc()
	}
}
