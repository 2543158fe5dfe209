// Copyright (c) 2025 BVK Chaitanya

package price

import (
	"fmt"
	"net/url"
	"time"
)

// CoinGeckoURL is the default base url for the price feed.
var CoinGeckoURL = url.URL{
	Scheme: "https",
	Host:   "api.coingecko.com",
	Path:   "/api/v3",
}

type Options struct {
	// BaseURL of the CoinGecko compatible price api. Defaults to CoinGeckoURL.
	BaseURL string

	// HTTPTimeout is the timeout for each price request. Zero value leaves the
	// http client default.
	HTTPTimeout time.Duration

	// RequestsPerMinute limits outbound price requests. Public CoinGecko api
	// rejects bursts above its quota.
	RequestsPerMinute int

	// Burst is the max number of requests allowed back to back.
	Burst int
}

func (v *Options) setDefaults() {
	if len(v.BaseURL) == 0 {
		v.BaseURL = CoinGeckoURL.String()
	}
	if v.RequestsPerMinute == 0 {
		v.RequestsPerMinute = 30
	}
	if v.Burst == 0 {
		v.Burst = 5
	}
}

func (v *Options) Check() error {
	u, err := url.Parse(v.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid price base url %q: %w", v.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("price base url %q must use http or https", v.BaseURL)
	}
	if v.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout cannot be negative")
	}
	if v.RequestsPerMinute < 0 || v.Burst < 0 {
		return fmt.Errorf("rate limits cannot be negative")
	}
	return nil
}
