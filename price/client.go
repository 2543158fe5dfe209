// Copyright (c) 2025 BVK Chaitanya

// Package price fetches BTC and ETH spot prices in USD from a CoinGecko
// compatible endpoint.
package price

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Coin ids and quote currency as named by the CoinGecko api.
const (
	bitcoinID  = "bitcoin"
	ethereumID = "ethereum"
	quoteID    = "usd"
)

// Prices holds the spot prices of both supported assets from a single fetch.
type Prices struct {
	BTC float64
	ETH float64
}

type Client struct {
	opts Options

	client *resty.Client

	limiter *rate.Limiter
}

// New creates a price feed client.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if opts.HTTPTimeout > 0 {
		client.SetTimeout(opts.HTTPTimeout)
	}

	limit := rate.Limit(float64(opts.RequestsPerMinute) / 60)
	c := &Client{
		opts:    *opts,
		client:  client,
		limiter: rate.NewLimiter(limit, opts.Burst),
	}
	return c, nil
}

// FetchPrices issues one request for both asset prices. Every call is an
// independent fetch; nothing is cached.
func (c *Client) FetchPrices(ctx context.Context) (*Prices, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FeedError{Err: err}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("ids", bitcoinID+","+ethereumID).
		SetQueryParam("vs_currencies", quoteID).
		Get("/simple/price")
	if err != nil {
		slog.Warn("could not fetch prices", "err", err)
		return nil, &FeedError{Err: err}
	}
	if !resp.IsSuccess() {
		slog.Warn("price feed returned unsuccessful status code", "status-code", resp.StatusCode(), "body", resp.String())
		return nil, feedErrorf(resp.StatusCode(), "unsuccessful response %q", resp.Status())
	}
	return parsePrices(resp.Body())
}

func parsePrices(body []byte) (*Prices, error) {
	var reply map[string]map[string]json.RawMessage
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, feedErrorf(0, "could not decode response body: %w", err)
	}
	btc, err := lookup(reply, bitcoinID)
	if err != nil {
		return nil, err
	}
	eth, err := lookup(reply, ethereumID)
	if err != nil {
		return nil, err
	}
	p := &Prices{
		BTC: btc,
		ETH: eth,
	}
	return p, nil
}

func lookup(reply map[string]map[string]json.RawMessage, id string) (float64, error) {
	quotes, ok := reply[id]
	if !ok {
		return 0, feedErrorf(0, "response has no %q field", id)
	}
	raw, ok := quotes[quoteID]
	if !ok {
		return 0, feedErrorf(0, "response has no %q price for %q", quoteID, id)
	}
	d, err := decimal.NewFromString(strings.Trim(string(raw), `"`))
	if err != nil {
		return 0, feedErrorf(0, "%s price %s is not a number: %w", id, raw, err)
	}
	if !d.IsPositive() {
		return 0, feedErrorf(0, "%s price %s is not positive", id, d)
	}
	return d.InexactFloat64(), nil
}
