// Package geo resolves the local client's approximate location.
package geo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/metrics"
)

const DefaultEndpoint = "http://ip-api.com/json/?fields=country,countryCode,city"

type Options struct {
	Endpoint string
	Timeout  time.Duration
}

// Locator looks the location up once; the result, including the unknown
// fallback after a failure, is cached so the lookup is not retried.
type Locator struct {
	http     *http.Client
	endpoint string
	cache    Cache
	log      *slog.Logger
	metrics  metrics.Recorder
}

func NewLocator(opts Options, cache Cache, log *slog.Logger, m metrics.Recorder) *Locator {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if cache == nil {
		cache = noopCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Locator{
		http:     &http.Client{Timeout: opts.Timeout},
		endpoint: opts.Endpoint,
		cache:    cache,
		log:      log,
		metrics:  metrics.OrNoop(m),
	}
}

// Lookup never fails: any error yields domain.UnknownLocation.
func (l *Locator) Lookup(ctx context.Context) domain.Location {
	if raw, ok := l.cache.Get(l.endpoint); ok {
		var loc domain.Location
		if err := json.Unmarshal(raw, &loc); err == nil {
			l.metrics.IncGeoLookups("cached")
			return loc
		}
	}

	loc, err := l.fetch(ctx)
	if err != nil {
		l.log.Warn("geolocation failed, using unknown", "endpoint", l.endpoint, "err", err)
		l.metrics.IncGeoLookups("error")
		loc = domain.UnknownLocation
	} else {
		l.metrics.IncGeoLookups("ok")
	}

	if raw, err := json.Marshal(loc); err == nil {
		l.cache.Set(l.endpoint, raw)
	}
	return loc
}

func (l *Locator) fetch(ctx context.Context) (domain.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return domain.Location{}, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return domain.Location{}, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		return domain.Location{}, fmt.Errorf("GET %s: status %s", l.endpoint, resp.Status)
	}

	var loc domain.Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return domain.Location{}, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	return withDefaults(loc), nil
}

func withDefaults(loc domain.Location) domain.Location {
	if loc.CountryCode == "" {
		loc.CountryCode = domain.UnknownCountryCode
	}
	if loc.Country == "" {
		loc.Country = domain.UnknownPlace
	}
	if loc.City == "" {
		loc.City = domain.UnknownPlace
	}
	return loc
}
