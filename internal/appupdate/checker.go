// Package appupdate checks the project's GitHub releases for a newer
// build. The check is best-effort: a short timeout, and any failure is
// reported to the caller to log and ignore.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultReleaseURL = "https://api.github.com/repos/claudewatch/claudewatch/releases/latest"
	defaultTimeout    = 1500 * time.Millisecond
)

// Checker queries a GitHub "latest release" endpoint and compares its
// tag against the running version.
type Checker struct {
	releaseURL string
	httpClient *http.Client
}

func NewChecker() *Checker {
	return &Checker{
		releaseURL: defaultReleaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetReleaseURL overrides the release endpoint, for tests.
func (c *Checker) SetReleaseURL(u string) { c.releaseURL = u }

// Result describes the outcome of one update check.
type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
}

// Check fetches the latest release tag and reports whether it is newer
// than currentVersion. Development builds ("dev", empty, non-semver)
// never report an available update.
func (c *Checker) Check(ctx context.Context, currentVersion string) (Result, error) {
	current := normalizeVersion(currentVersion)
	result := Result{CurrentVersion: current}
	if !semver.IsValid(current) {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.releaseURL, nil)
	if err != nil {
		return result, fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "claudewatch/"+current)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return result, fmt.Errorf("decode latest release: %w", err)
	}

	latest := normalizeVersion(payload.TagName)
	if !semver.IsValid(latest) {
		return result, fmt.Errorf("latest release has non-semver tag %q", payload.TagName)
	}

	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	return result, nil
}

// normalizeVersion maps release tags and build versions onto the
// canonical "vX.Y.Z" form semver expects. Prerelease suffixes are kept.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
