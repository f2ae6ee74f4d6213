// Package exchange looks up the JPY to THB conversion rate.
package exchange

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Defaults for the public Frankfurter API.
const (
	DefaultBaseURL  = "https://api.frankfurter.app"
	DefaultFallback = 0.20
	DefaultTTL      = time.Hour
	DefaultTimeout  = 5 * time.Second

	baseCurrency  = "JPY"
	quoteCurrency = "THB"

	// maxBodySize bounds the response body; a rate payload is a few hundred bytes.
	maxBodySize = 64 * 1024
)

// Quote is a conversion rate together with where it came from.
type Quote struct {
	FetchedAt time.Time `json:"fetched_at"`
	Base      string    `json:"base"`
	Quote     string    `json:"quote"`
	Rate      float64   `json:"rate"`
	Fallback  bool      `json:"fallback"`
}

// Provider returns a usable positive rate. It never fails.
type Provider interface {
	Rate(ctx context.Context) float64
}

// Config configures an HTTPProvider.
type Config struct {
	Client   *http.Client
	BaseURL  string
	TTL      time.Duration
	Fallback float64
}

// HTTPProvider fetches the rate over HTTP and caches successful answers for TTL.
// Failures yield the fallback rate and are not cached, so the next call tries
// again. There are no retries within a call. Concurrent callers share one request.
type HTTPProvider struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	ttl      time.Duration
	fallback float64
	logger   *slog.Logger
	now      func() time.Time

	group  singleflight.Group
	mu     sync.RWMutex
	cached *Quote
}

// NewHTTPProvider creates a provider. Zero config fields take the package defaults.
func NewHTTPProvider(cfg Config, logger *slog.Logger) *HTTPProvider {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Fallback <= 0 {
		cfg.Fallback = DefaultFallback
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout := cfg.Client.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	q := url.Values{}
	q.Set("from", baseCurrency)
	q.Set("to", quoteCurrency)

	return &HTTPProvider{
		client:   cfg.Client,
		endpoint: cfg.BaseURL + "/latest?" + q.Encode(),
		timeout:  timeout,
		ttl:      cfg.TTL,
		fallback: cfg.Fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Rate returns the current rate, or the fallback if it cannot be fetched.
func (p *HTTPProvider) Rate(ctx context.Context) float64 {
	return p.Quote(ctx).Rate
}

// Quote returns the current rate with its provenance.
func (p *HTTPProvider) Quote(ctx context.Context) Quote {
	if q, ok := p.fresh(); ok {
		return q
	}

	v, _, _ := p.group.Do("rate", func() (any, error) {
		if q, ok := p.fresh(); ok {
			return q, nil
		}

		// The fetch is shared, so one caller going away must not fail the rest.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		rate, err := p.fetch(fetchCtx)
		if err != nil {
			p.logger.Warn("exchange rate unavailable, using fallback",
				slog.String("error", err.Error()),
				slog.Float64("fallback", p.fallback))
			return p.fallbackQuote(), nil
		}

		q := Quote{
			FetchedAt: p.now(),
			Base:      baseCurrency,
			Quote:     quoteCurrency,
			Rate:      rate,
		}
		p.mu.Lock()
		p.cached = &q
		p.mu.Unlock()

		p.logger.Debug("exchange rate fetched", slog.Float64("rate", rate))
		return q, nil
	})

	return v.(Quote)
}

// Cached returns the last successfully fetched quote, if any.
func (p *HTTPProvider) Cached() (Quote, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cached == nil {
		return Quote{}, false
	}
	return *p.cached, true
}

func (p *HTTPProvider) fresh() (Quote, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cached == nil || p.now().Sub(p.cached.FetchedAt) >= p.ttl {
		return Quote{}, false
	}
	return *p.cached, true
}

func (p *HTTPProvider) fallbackQuote() Quote {
	return Quote{
		FetchedAt: p.now(),
		Base:      baseCurrency,
		Quote:     quoteCurrency,
		Rate:      p.fallback,
		Fallback:  true,
	}
}

type latestResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (p *HTTPProvider) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	var payload latestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode body: %w", err)
	}

	rate, ok := payload.Rates[quoteCurrency]
	if !ok {
		return 0, fmt.Errorf("response has no %s rate", quoteCurrency)
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("unusable rate %v", rate)
	}
	return rate, nil
}

// Static is a Provider that always returns the same rate.
type Static float64

// Rate implements Provider.
func (s Static) Rate(context.Context) float64 {
	return float64(s)
}

var (
	_ Provider = (*HTTPProvider)(nil)
	_ Provider = Static(0)
)
