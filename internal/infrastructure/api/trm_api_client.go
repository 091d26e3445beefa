package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/service"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the open-data portal publishing the official TRM
	DefaultBaseURL = "https://www.datos.gov.co"
	trmDatasetPath = "/resource/mcec-87by.json"

	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
)

var (
	// ErrNoRecord means the source answered but published nothing for the date
	ErrNoRecord = errors.New("no TRM published for date")
	// ErrInvalidValue means the published value could not be used
	ErrInvalidValue = errors.New("invalid TRM value")
)

// Options tunes the TRM client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     logger.Logger
}

// TRMClient implements service.RateSource against the datos.gov.co TRM dataset
type TRMClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
	group      singleflight.Group
}

var _ service.RateSource = (*TRMClient)(nil)

// NewTRMClient creates a new TRM client
func NewTRMClient(opts Options) *TRMClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: opts.Timeout,
		}
	}

	return &TRMClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		logger:     logger.OrDefault(opts.Logger).WithField("component", "trm_client"),
	}
}

// trmRecord is one row of the dataset; only the fields we read are mapped
type trmRecord struct {
	Valor         string `json:"valor"`
	Unidad        string `json:"unidad"`
	VigenciaDesde string `json:"vigenciadesde"`
	VigenciaHasta string `json:"vigenciahasta"`
}

// FetchRate retrieves the official TRM in force on date. Concurrent calls for the
// same date share one request, bounded by the client timeout rather than by the
// first caller's cancellation.
func (c *TRMClient) FetchRate(ctx context.Context, date time.Time) service.RateOutcome {
	key := entity.Day(date).Format(entity.DateLayout)
	shareCtx := context.WithoutCancel(ctx)

	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		outcome := c.fetch(shareCtx, date)
		metrics.ObserveTRMFetch(string(outcome.Kind), time.Since(start))
		return outcome, nil
	})
	if shared {
		c.logger.Debug("Shared in-flight TRM lookup", map[string]interface{}{
			"date": key,
		})
	}
	return v.(service.RateOutcome)
}

func (c *TRMClient) requestURL(date time.Time) string {
	where := fmt.Sprintf("vigenciadesde='%sT00:00:00.000'", entity.Day(date).Format(entity.DateLayout))
	q := url.Values{}
	q.Set("$where", where)
	return c.baseURL + trmDatasetPath + "?" + q.Encode()
}

func (c *TRMClient) fetch(ctx context.Context, date time.Time) service.RateOutcome {
	dateStr := entity.Day(date).Format(entity.DateLayout)
	reqURL := c.requestURL(date)

	c.logger.Debug("Requesting official TRM", map[string]interface{}{
		"date": dateStr,
		"url":  reqURL,
	})

	resp, err := c.doWithRetry(ctx, reqURL)
	if err != nil {
		c.logger.Warn("TRM request failed", map[string]interface{}{
			"date":  dateStr,
			"error": err.Error(),
		})
		return service.FetchFailed(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing TRM response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return service.FetchFailed(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("TRM source returned error status", map[string]interface{}{
			"date":   dateStr,
			"status": resp.StatusCode,
		})
		return service.FetchFailed(fmt.Errorf("API returned error status: %d", resp.StatusCode))
	}

	var records []trmRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return service.FetchFailed(fmt.Errorf("failed to decode response: %w", err))
	}

	if len(records) == 0 {
		c.logger.Info("No TRM published for date", map[string]interface{}{
			"date": dateStr,
		})
		return service.NoData(fmt.Errorf("%w: %s", ErrNoRecord, dateStr))
	}

	value, err := ParseTRMValue(records[0].Valor)
	if err != nil {
		c.logger.Warn("Unusable TRM value", map[string]interface{}{
			"date":  dateStr,
			"valor": records[0].Valor,
			"error": err.Error(),
		})
		return service.NoData(err)
	}

	c.logger.Info("Official TRM retrieved", map[string]interface{}{
		"date": dateStr,
		"trm":  value,
	})
	return service.Ok(value)
}

// doWithRetry retries transport failures with quadratic backoff. HTTP error
// statuses are returned to the caller untouched.
func (c *TRMClient) doWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Add("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == c.maxRetries || ctx.Err() != nil {
			break
		}

		wait := time.Duration(attempt*attempt) * c.backoff
		c.logger.Warn("TRM request failed, retrying", map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": c.maxRetries,
			"retry_in":     wait.String(),
			"error":        err.Error(),
		})

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("request cancelled while retrying: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to execute request after %d attempts: %w", c.maxRetries, lastErr)
}

// ParseTRMValue turns a published value such as "4,123.456" into a positive
// amount rounded to two decimals
func ParseTRMValue(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidValue)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidValue, raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q is not positive", ErrInvalidValue, raw)
	}

	return math.Round(v*100) / 100, nil
}
