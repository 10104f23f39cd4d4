// Package client talks to a listing page's AJAX actions over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/remui-admin-api/internal/models"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
	"github.com/noah-isme/remui-admin-api/pkg/pagination"
)

const maxBodyBytes = 4 << 20

// Options configures a ListingClient.
type Options struct {
	// ItemsKey is the key holding records in list responses, e.g. "users".
	ItemsKey string
	Timeout  time.Duration
	Token    string
	Limit    int
	HTTP     *http.Client
	Logger   *zap.Logger
}

// ListingClient fetches suggestions and list pages from one listing endpoint.
type ListingClient struct {
	endpoint *url.URL
	itemsKey string
	token    string
	limit    int
	http     *http.Client
	logger   *zap.Logger
}

// New builds a client for endpoint, e.g. http://localhost:8080/admin/users.
func New(endpoint string, opts Options) (*ListingClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse endpoint: %q is not absolute", endpoint)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ItemsKey == "" {
		opts.ItemsKey = "items"
	}
	return &ListingClient{
		endpoint: u,
		itemsKey: opts.ItemsKey,
		token:    opts.Token,
		limit:    opts.Limit,
		http:     opts.HTTP,
		logger:   opts.Logger,
	}, nil
}

type suggestionEnvelope struct {
	Success     bool                     `json:"success"`
	Suggestions []map[string]interface{} `json:"suggestions"`
	Error       string                   `json:"error"`
}

// Suggest calls action=search_suggestions.
func (c *ListingClient) Suggest(ctx context.Context, text string) ([]models.Record, error) {
	values := url.Values{}
	values.Set("action", "search_suggestions")
	values.Set("q", text)
	if c.limit > 0 {
		values.Set("limit", strconv.Itoa(c.limit))
	}

	var env suggestionEnvelope
	if err := c.get(ctx, values, &env); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, appErrors.Clone(appErrors.ErrStore, env.Error)
	}

	out := make([]models.Record, 0, len(env.Suggestions))
	for _, row := range env.Suggestions {
		out = append(out, normalize(row))
	}
	return out, nil
}

// List calls action=list with the spec encoded the way listing pages read it.
func (c *ListingClient) List(ctx context.Context, spec models.SearchSpec) (*models.PageResult, error) {
	values := SpecValues(spec)
	values.Set("action", "list")

	var env map[string]json.RawMessage
	if err := c.get(ctx, values, &env); err != nil {
		return nil, err
	}
	if raw, ok := env["error"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) == nil && msg != "" {
			return nil, appErrors.Clone(appErrors.ErrStore, msg)
		}
	}

	var rows []map[string]interface{}
	if raw, ok := env[c.itemsKey]; ok {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, appErrors.Network(err, "malformed "+c.itemsKey)
		}
	}
	result := &models.PageResult{Items: make([]models.Record, 0, len(rows))}
	for _, row := range rows {
		result.Items = append(result.Items, normalize(row))
	}
	result.TotalCount = intField(env, "total_count")
	result.Page = intField(env, "current_page")
	result.PageSize = intField(env, "per_page")
	result.TotalPages = intField(env, "total_pages")
	result.Sort.Field = stringField(env, "sort")
	if dir, ok := models.ParseDirection(stringField(env, "order")); ok {
		result.Sort.Direction = dir
	}
	return result, nil
}

// SpecValues encodes a spec as listing query parameters.
func SpecValues(spec models.SearchSpec) url.Values {
	values := url.Values{}
	if spec.Query != "" {
		values.Set(pagination.ParamSearch, spec.Query)
	}
	if spec.Sort.Field != "" {
		values.Set(pagination.ParamSort, spec.Sort.Field)
		if spec.Sort.Direction != "" {
			values.Set(pagination.ParamOrder, string(spec.Sort.Direction))
		}
	}
	values.Set(pagination.ParamPage, strconv.Itoa(spec.Page))
	if spec.PageSize > 0 {
		values.Set(pagination.ParamPerPage, strconv.Itoa(spec.PageSize))
	}
	for name, value := range spec.Filters {
		values.Set(name, value)
	}
	return values
}

func (c *ListingClient) get(ctx context.Context, values url.Values, out interface{}) error {
	u := *c.endpoint
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return appErrors.Network(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.logger.Debug("listing request failed", zap.String("action", values.Get("action")), zap.Error(err))
		return appErrors.Network(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return appErrors.Network(err, "read response")
	}
	c.logger.Debug("listing request",
		zap.String("action", values.Get("action")),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return appErrors.Network(fmt.Errorf("status %d", resp.StatusCode), fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return appErrors.Network(fmt.Errorf("content type %q", ct), "response is not JSON")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.Network(err, "response is not JSON")
	}
	return nil
}

func intField(env map[string]json.RawMessage, key string) int {
	raw, ok := env[key]
	if !ok {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n
}

func stringField(env map[string]json.RawMessage, key string) string {
	raw, ok := env[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func normalize(row map[string]interface{}) models.Record {
	out := make(models.Record, len(row))
	for k, v := range row {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			out[k] = int64(f)
			continue
		}
		out[k] = v
	}
	return out
}
