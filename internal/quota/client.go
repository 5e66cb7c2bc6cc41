// Package quota talks to the provider's rate-limit surface: a live client
// reading utilization headers off a minimal inference request, and an
// on-disk cache of the last snapshot with absolute reset timestamps.
package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LimitStatus is the provider's verdict on whether requests are admitted.
type LimitStatus string

const (
	StatusAllowed        LimitStatus = "allowed"
	StatusAllowedWarning LimitStatus = "allowed_warning"
	StatusDenied         LimitStatus = "denied"
)

// warnThreshold is the utilization at which an allowed verdict is
// downgraded to allowed_warning locally. A remote denial always wins.
const warnThreshold = 0.75

// RateLimit is one observation of the rolling rate-limit windows.
// Reset values are seconds remaining, floored at zero.
type RateLimit struct {
	Utilization5h float64     `json:"utilization_5h"`
	Utilization7d float64     `json:"utilization_7d"`
	ResetIn5h     float64     `json:"reset_in_5h"`
	ResetIn7d     float64     `json:"reset_in_7d"`
	LimitStatus   LimitStatus `json:"limit_status"`
}

const (
	defaultEndpoint = "https://api.anthropic.com/v1/messages"
	probeModel      = "claude-haiku-4-5-20251001"
)

// Credential file shape written by the CLI. The OAuth access token is the
// only field consumed here.
type credentialsFile struct {
	ClaudeAIOAuth struct {
		AccessToken string `json:"accessToken"`
	} `json:"claudeAiOauth"`
}

// DefaultCredentialsPath returns ~/.claude/.credentials.json.
func DefaultCredentialsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", ".credentials.json")
}

// Client issues minimal-cost probe requests and reads the rate-limit
// state from response headers. The response body is irrelevant.
type Client struct {
	httpClient *http.Client
	endpoint   string
	credPath   string
}

func NewClient(credPath string) *Client {
	if credPath == "" {
		credPath = DefaultCredentialsPath()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   defaultEndpoint,
		credPath:   credPath,
	}
}

// SetEndpoint overrides the probe endpoint. Used by tests.
func (c *Client) SetEndpoint(url string) { c.endpoint = url }

func (c *Client) readToken() (string, error) {
	data, err := os.ReadFile(c.credPath)
	if err != nil {
		return "", &CredentialError{Path: c.credPath, Err: err}
	}
	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", &CredentialError{Path: c.credPath, Err: fmt.Errorf("parsing: %w", err)}
	}
	if creds.ClaudeAIOAuth.AccessToken == "" {
		return "", &CredentialError{Path: c.credPath, Err: fmt.Errorf("no OAuth access token in file")}
	}
	return creds.ClaudeAIOAuth.AccessToken, nil
}

// Fetch performs one probe request and decodes the rate-limit headers.
// Failures are typed: *CredentialError when the token cannot be read,
// *RemoteError for transport problems.
func (c *Client) Fetch(ctx context.Context) (RateLimit, error) {
	token, err := c.readToken()
	if err != nil {
		return RateLimit{}, err
	}

	body := strings.NewReader(fmt.Sprintf(
		`{"model":%q,"max_tokens":1,"messages":[{"role":"user","content":"."}]}`, probeModel))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return RateLimit{}, &RemoteError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("anthropic-beta", "oauth-2025-04-20")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RateLimit{}, &RemoteError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	// Rate-limit headers ride along even on 429 responses, so the HTTP
	// status is not checked here.
	return DecodeHeaders(resp.Header, time.Now()), nil
}

// DecodeHeaders extracts a RateLimit from the unified rate-limit response
// headers. Tolerates both reset encodings the provider has shipped
// (epoch seconds and RFC 3339) and both denial encodings (a "denied"
// status token and an allowed flag equal to false).
func DecodeHeaders(h http.Header, now time.Time) RateLimit {
	util5h := parseRatio(h.Get("anthropic-ratelimit-unified-5h-utilization"))
	util7d := parseRatio(h.Get("anthropic-ratelimit-unified-7d-utilization"))

	rl := RateLimit{
		Utilization5h: util5h,
		Utilization7d: util7d,
		ResetIn5h:     parseResetSeconds(h.Get("anthropic-ratelimit-unified-5h-reset"), now),
		ResetIn7d:     parseResetSeconds(h.Get("anthropic-ratelimit-unified-7d-reset"), now),
	}

	switch {
	case isDenied(h):
		rl.LimitStatus = StatusDenied
	case util5h >= warnThreshold || util7d >= warnThreshold:
		rl.LimitStatus = StatusAllowedWarning
	default:
		rl.LimitStatus = StatusAllowed
	}
	return rl
}

func isDenied(h http.Header) bool {
	if h.Get("anthropic-ratelimit-unified-5h-status") == "denied" {
		return true
	}
	if h.Get("anthropic-ratelimit-unified-status") == "denied" {
		return true
	}
	if raw := h.Get("anthropic-ratelimit-unified-allowed"); raw != "" {
		if allowed, err := strconv.ParseBool(raw); err == nil && !allowed {
			return true
		}
	}
	return false
}

func parseRatio(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseResetSeconds converts a reset header into seconds remaining,
// floored at zero. Epoch seconds are tried first, then RFC 3339.
func parseResetSeconds(raw string, now time.Time) float64 {
	if raw == "" {
		return 0
	}
	var at time.Time
	if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
		at = time.Unix(epoch, 0)
	} else if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		at = ts
	} else {
		return 0
	}
	remaining := at.Sub(now).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}
