package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const genericErrDetail = "Request failed"

// APIError is a non-2xx response converted into an application error.
// The transport layer never treats server rejections as panics or raw
// status codes; callers read Detail for the user-facing message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Detail, e.Status)
}

// Client talks HTTP/JSON to the forecasting/inventory service. The service
// is a black box: all forecasting and reorder math happens behind it.
type Client struct {
	base string
	http *http.Client
	log  zerolog.Logger
}

// New returns a client for the service at baseURL. No retries and no
// per-request backoff: a failed call is reported once and left to the
// caller's refresh triggers.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// ListSKUs fetches the full SKU registry contents.
func (c *Client) ListSKUs(ctx context.Context) ([]SKU, error) {
	var out struct {
		SKUs []SKU `json:"skus"`
	}
	if err := c.get(ctx, "/skus", nil, &out); err != nil {
		return nil, err
	}
	return out.SKUs, nil
}

// History fetches the sales/purchase/stock series for one SKU window.
func (c *Client) History(ctx context.Context, skuID string, days int) (HistoryResponse, error) {
	var out HistoryResponse
	err := c.get(ctx, "/history", url.Values{
		"sku_id": {skuID},
		"days":   {strconv.Itoa(days)},
	}, &out)
	return out, err
}

// Forecast fetches predicted demand plus the per-call stock meta.
func (c *Client) Forecast(ctx context.Context, skuID string, days int) (ForecastResponse, error) {
	var out ForecastResponse
	err := c.get(ctx, "/forecast", url.Values{
		"sku_id": {skuID},
		"days":   {strconv.Itoa(days)},
	}, &out)
	return out, err
}

// RecordTransaction posts a draft. Validation happens before this call;
// here only the server's verdict matters.
func (c *Client) RecordTransaction(ctx context.Context, draft TransactionDraft) (TransactionResult, error) {
	var out TransactionResult
	err := c.post(ctx, "/record-transaction", draft, &out)
	return out, err
}

// ReplenishmentSettings fetches the server-owned reorder parameters.
func (c *Client) ReplenishmentSettings(ctx context.Context, skuID string) (ReplenishmentSettings, error) {
	var out ReplenishmentSettings
	err := c.get(ctx, "/replenishment-settings/"+url.PathEscape(skuID), nil, &out)
	return out, err
}

// UpdateReplenishmentSettings posts the full settings draft and returns the
// server's confirmation message.
func (c *Client) UpdateReplenishmentSettings(ctx context.Context, skuID string, s ReplenishmentSettings) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.post(ctx, "/replenishment-settings/"+url.PathEscape(skuID), s, &out)
	return out.Message, err
}

// ReplenishmentRecommendation fetches the server's reorder advice.
func (c *Client) ReplenishmentRecommendation(ctx context.Context, skuID string, days int) (ReplenishmentRecommendation, error) {
	var out ReplenishmentRecommendation
	err := c.get(ctx, "/replenishment-recommendation", url.Values{
		"sku_id": {skuID},
		"days":   {strconv.Itoa(days)},
	}, &out)
	return out, err
}

// Replenishment issues the settings and recommendation reads concurrently
// and succeeds only when both do. On any failure neither half is returned,
// so callers can never apply a partial update.
func (c *Client) Replenishment(ctx context.Context, skuID string, days int) (ReplenishmentBundle, error) {
	var bundle ReplenishmentBundle
	var g errgroup.Group
	g.Go(func() error {
		s, err := c.ReplenishmentSettings(ctx, skuID)
		if err != nil {
			return err
		}
		bundle.Settings = s
		return nil
	})
	g.Go(func() error {
		r, err := c.ReplenishmentRecommendation(ctx, skuID, days)
		if err != nil {
			return err
		}
		bundle.Recommendation = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return ReplenishmentBundle{}, err
	}
	return bundle, nil
}

// Detail extracts the user-facing message from an error, falling back to a
// generic one for transport failures and detail-less rejections.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return genericErrDetail
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Str("path", path).Str("request_id", reqID).Err(err).Msg("request failed")
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}

	c.log.Debug().
		Str("path", path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: errorDetail(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response %s: %w", path, err)
	}
	return nil
}

// errorDetail pulls the conventional {"detail": "..."} field out of an
// error body. Anything else falls back to the generic message.
func errorDetail(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Detail) != "" {
		return body.Detail
	}
	return genericErrDetail
}
