// Package uplink talks to the remote telemetry channel.
//
// The channel stores one integer field per candidate. Two operations are
// exposed: FetchState reads the most recent field values (used once, for
// startup reconciliation) and PushState writes the current absolute
// totals (used by the upload scheduler). Both are bounded by the client's
// HTTP timeout so a stalled call can only delay, never block, the
// runner's poll cycle.
//
// Roster IDs are mapped onto channel fields by ascending ID order:
// the lowest ID is field1, the next field2, and so on. The channel
// supports at most MaxFields candidates.
package uplink

import (
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

	"github.com/votebridge/votebridge/internal/vote"
)

// MaxFields is the number of fields a channel can carry.
const MaxFields = 8

// ErrUnavailable means the remote state could not be retrieved: network
// failure, non-success status, malformed payload, or an empty channel.
// Callers fall back to local state; they never treat this as fatal.
var ErrUnavailable = errors.New("remote state unavailable")

// Config carries the channel credentials and endpoint.
type Config struct {
	BaseURL   string // e.g. https://api.thingspeak.com
	WriteKey  string // key required by PushState
	ReadKey   string // key required by FetchState
	ChannelID string
	Timeout   time.Duration // per-call HTTP timeout
}

// Client performs the two remote operations. Both are idempotent from the
// caller's perspective: the push carries absolute totals, so a failed or
// repeated push is superseded by the next successful one.
type Client struct {
	cfg    Config
	roster *vote.Roster
	http   *http.Client
}

// New creates a client for the given channel and roster.
func New(cfg Config, roster *vote.Roster) (*Client, error) {
	if roster.Len() > MaxFields {
		return nil, fmt.Errorf("roster has %d candidates, channel supports at most %d", roster.Len(), MaxFields)
	}
	return &Client{
		cfg:    cfg,
		roster: roster,
		http:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// FetchState retrieves the last known totals from the channel. Any
// failure yields ErrUnavailable; this call never distinguishes transient
// from permanent trouble.
func (c *Client) FetchState(ctx context.Context) (vote.Tally, error) {
	u := fmt.Sprintf("%s/channels/%s/feeds/last.json?api_key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.ChannelID), url.QueryEscape(c.cfg.ReadKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var feed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, ok := feed["field1"]; !ok {
		// Channel exists but has no entries yet.
		return nil, fmt.Errorf("%w: channel is empty", ErrUnavailable)
	}

	t := vote.NewTally(c.roster)
	for i, id := range c.roster.IDs() {
		t[id] = coerceCount(feed[fieldName(i)])
	}
	return t, nil
}

// PushState writes the full current tally as one atomic channel update.
// On success it returns the remote entry ID. The remote signals a
// rejected update (rate limit, bad key) with a zero body, which is
// reported as an error.
func (c *Client) PushState(ctx context.Context, t vote.Tally) (string, error) {
	form := url.Values{"api_key": {c.cfg.WriteKey}}
	for i, id := range c.roster.IDs() {
		form.Set(fieldName(i), strconv.Itoa(t[id]))
	}

	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/update"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("push state: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("push state: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("push state: read response: %w", err)
	}
	entry := strings.TrimSpace(string(body))

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("push state: HTTP %d: %s", resp.StatusCode, entry)
	}
	if entry == "0" {
		// The remote's failure sentinel: update rejected.
		return "", fmt.Errorf("push state: update rejected by channel")
	}
	return entry, nil
}

// fieldName maps a roster position (0-based) to the channel field key.
func fieldName(i int) string {
	return "field" + strconv.Itoa(i+1)
}

// coerceCount converts a decoded JSON field value to a non-negative
// count. The channel reports fields as strings; null, absent, or
// malformed values count as zero.
func coerceCount(v any) int {
	switch x := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil || n < 0 {
			return 0
		}
		return n
	case float64:
		if x < 0 {
			return 0
		}
		return int(x)
	default:
		return 0
	}
}
