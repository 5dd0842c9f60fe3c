// Package catalog looks up DLC candidates in the Steam store.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dlcini/internal/concurrent"
	"dlcini/internal/model"
)

// Options configure the store client. Zero values take defaults.
type Options struct {
	BaseURL        string // e.g. https://store.steampowered.com
	Language       string // l= query parameter
	Country        string // cc= query parameter, controls price currency
	TimeoutSeconds int    // per request
	ChunkSize      int    // detail lookups started together
	SearchLimit    int    // search results confirmed per query
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://store.steampowered.com"
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Language == "" {
		o.Language = "en"
	}
	if o.Country == "" {
		o.Country = "us"
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 15
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 20
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 30
	}
}

// Client talks to the store's public JSON endpoints.
type Client struct {
	opts Options
	log  *zap.Logger
	do   func(*http.Request) (*http.Response, error)
}

// New builds a client.
func New(opts Options, log *zap.Logger) *Client {
	opts.defaults()
	if log == nil {
		log = zap.NewNop()
	}
	hc := &http.Client{Timeout: time.Duration(opts.TimeoutSeconds) * time.Second}
	return &Client{opts: opts, log: log.Named("catalog"), do: hc.Do}
}

// AppDetails describes one store application. Only the fields used here are
// decoded.
type AppDetails struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	SteamAppID  int64   `json:"steam_appid"`
	DLC         []int64 `json:"dlc"`
	ReleaseDate struct {
		Date string `json:"date"`
	} `json:"release_date"`
	PriceOverview struct {
		FinalFormatted string `json:"final_formatted"`
	} `json:"price_overview"`
}

type appDetailsEnvelope struct {
	Success bool        `json:"success"`
	Data    *AppDetails `json:"data"`
}

type searchResponse struct {
	Total int `json:"total"`
	Items []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"items"`
}

// StatusError is a non-2xx store response.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d", e.Op, e.Status)
}

// AppDetails fetches details for appid. A store answer without data (unknown
// or region locked app) yields nil without error.
func (c *Client) AppDetails(ctx context.Context, appid string) (*AppDetails, error) {
	q := c.query()
	q.Set("appids", appid)
	var env map[string]appDetailsEnvelope
	if err := c.getJSON(ctx, "appdetails", "/api/appdetails", q, &env); err != nil {
		return nil, err
	}
	node, ok := env[appid]
	if !ok || !node.Success || node.Data == nil {
		return nil, nil
	}
	return node.Data, nil
}

// DLCForApp lists the DLCs of baseAppID with their names, release dates and
// prices, in the order the store lists them.
func (c *Client) DLCForApp(ctx context.Context, baseAppID string) ([]model.Candidate, error) {
	base, err := c.AppDetails(ctx, baseAppID)
	if err != nil {
		return nil, err
	}
	if base == nil {
		c.log.Info("base app not found", zap.String("appid", baseAppID))
		return []model.Candidate{}, nil
	}

	ids := make([]string, 0, len(base.DLC))
	for _, id := range base.DLC {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	c.log.Debug("resolving dlc list", zap.String("appid", baseAppID), zap.Int("count", len(ids)))

	runner := concurrent.NewRunner[string, model.Candidate](concurrent.RunnerConfig{Name: "dlc-details"}, c.log)
	res := runner.RunChunked(ctx, ids, c.opts.ChunkSize, func(ctx context.Context, id string) (model.Candidate, bool, error) {
		d, err := c.AppDetails(ctx, id)
		if err != nil || d == nil {
			return model.Candidate{}, false, err
		}
		cand := toCandidate(d, id, "DLC "+id)
		return cand, cand.Type == "dlc", nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := allFailed("dlc details", res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// Search runs a store text search and keeps the hits that the details
// endpoint confirms as DLC.
func (c *Client) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	q := c.query()
	q.Set("term", query)
	var sr searchResponse
	if err := c.getJSON(ctx, "storesearch", "/api/storesearch/", q, &sr); err != nil {
		return nil, err
	}
	items := sr.Items
	if len(items) > c.opts.SearchLimit {
		items = items[:c.opts.SearchLimit]
	}
	c.log.Debug("search hits", zap.String("query", query), zap.Int("total", sr.Total), zap.Int("checked", len(items)))

	type hit struct {
		id   string
		name string
	}
	hits := make([]hit, 0, len(items))
	for _, it := range items {
		hits = append(hits, hit{id: strconv.FormatInt(it.ID, 10), name: it.Name})
	}

	runner := concurrent.NewRunner[hit, model.Candidate](concurrent.RunnerConfig{Name: "search-confirm"}, c.log)
	res := runner.Run(ctx, hits, func(ctx context.Context, h hit) (model.Candidate, bool, error) {
		d, err := c.AppDetails(ctx, h.id)
		if err != nil || d == nil || d.Type != "dlc" {
			return model.Candidate{}, false, err
		}
		return toCandidate(d, h.id, h.name), true, nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := allFailed("search confirm", res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// allFailed turns a run where nothing succeeded and something failed into an
// error. Partial failures keep the results that did come back.
func allFailed(op string, res concurrent.RunResult[model.Candidate]) error {
	if len(res.Results) > 0 || len(res.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %d lookups failed: %w", op, len(res.Errors), res.Errors[0])
}

func toCandidate(d *AppDetails, fallbackID, fallbackName string) model.Candidate {
	id := fallbackID
	if d.SteamAppID != 0 {
		id = strconv.FormatInt(d.SteamAppID, 10)
	}
	name := d.Name
	if name == "" {
		name = fallbackName
	}
	return model.Candidate{
		AppID:       id,
		Name:        name,
		Type:        d.Type,
		ReleaseDate: d.ReleaseDate.Date,
		Price:       d.PriceOverview.FinalFormatted,
	}
}

func (c *Client) query() url.Values {
	q := url.Values{}
	q.Set("l", c.opts.Language)
	q.Set("cc", c.opts.Country)
	return q
}

func (c *Client) getJSON(ctx context.Context, op, path string, q url.Values, out any) error {
	u := c.opts.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.log.Debug("store request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Op: op, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
