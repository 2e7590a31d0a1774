package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/httpx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

const defaultGoogleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

type GoogleConfig struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
}

type googleGeocoder struct {
	log        *logger.Logger
	metrics    *observability.Metrics
	httpClient *http.Client
	apiKey     string
	baseURL    string
	maxRetries int
}

func NewGoogleGeocoder(log *logger.Logger, metrics *observability.Metrics, cfg GoogleConfig) (Geocoder, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GOOGLE_API_KEY")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &googleGeocoder{
		log:        log.With("service", "GoogleGeocoder"),
		metrics:    metrics,
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		maxRetries: maxRetries,
	}, nil
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *googleGeocoder) ResolveAddress(ctx context.Context, address string) (Coordinates, error) {
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		resp, coords, err := g.doOnce(ctx, address)
		if err == nil {
			g.metrics.IncGeocode("google", "ok")
			return coords, nil
		}
		if !httpx.IsRetryableError(err) || attempt == g.maxRetries {
			g.metrics.IncGeocode("google", statusLabel(err))
			return Coordinates{}, err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		g.log.Warn("Geocode request retrying",
			"attempt", attempt+1,
			"max_retries", g.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return Coordinates{}, err
		}
		backoff *= 2
	}
	return Coordinates{}, fmt.Errorf("unreachable retry loop")
}

func (g *googleGeocoder) doOnce(ctx context.Context, address string) (*http.Response, Coordinates, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, Coordinates{}, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, Coordinates{}, err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, Coordinates{}, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, Coordinates{}, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var payload googleResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return resp, Coordinates{}, fmt.Errorf("geocode decode error: %w", err)
	}
	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return resp, Coordinates{}, ErrNoResults
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return resp, Coordinates{}, &StatusError{StatusCode: http.StatusTooManyRequests, Body: payload.Status + ": " + payload.ErrorMessage}
	default:
		return resp, Coordinates{}, fmt.Errorf("geocode status %s: %s", payload.Status, payload.ErrorMessage)
	}
	if len(payload.Results) == 0 {
		return resp, Coordinates{}, ErrNoResults
	}
	return resp, payload.Results[0].Geometry.Location, nil
}

func statusLabel(err error) string {
	if errors.Is(err, ErrNoResults) {
		return "no_results"
	}
	return "error"
}
