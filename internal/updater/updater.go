// Package updater checks GitHub Releases for a newer launcher version.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeppplayer/zeppplayer/internal/buildinfo"
)

// DefaultAPIBase is the GitHub REST API root.
const DefaultAPIBase = "https://api.github.com"

// ErrNoRelease is returned when the repository has no published release.
var ErrNoRelease = errors.New("no published release")

// ReleaseInfo contains information about a GitHub release.
type ReleaseInfo struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
	Draft      bool   `json:"draft"`
}

// UpdateResult contains the result of an update check.
type UpdateResult struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
}

// Client queries the latest release of one repository.
type Client struct {
	apiBase        string
	repository     string
	currentVersion string
	httpClient     *http.Client
}

// NewClient creates a client for repository ("owner/name").
func NewClient(repository string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiBase:        DefaultAPIBase,
		repository:     repository,
		currentVersion: buildinfo.Version,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// WithAPIBase points the client at a different API root.
func (c *Client) WithAPIBase(base string) *Client {
	c.apiBase = strings.TrimSuffix(base, "/")
	return c
}

// WithCurrentVersion overrides the version compared against.
func (c *Client) WithCurrentVersion(v string) *Client {
	c.currentVersion = v
	return c
}

// CheckForUpdate queries GitHub Releases API for a newer version.
func (c *Client) CheckForUpdate(ctx context.Context) (*UpdateResult, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBase, c.repository)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoRelease
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	latest, err := ParseSemver(latestVersion)
	if err != nil {
		return nil, fmt.Errorf("parse latest version %q: %w", latestVersion, err)
	}

	result := &UpdateResult{
		CurrentVersion: c.currentVersion,
		LatestVersion:  latest.String(),
		ReleaseURL:     release.HTMLURL,
	}

	current, err := ParseSemver(c.currentVersion)
	if err != nil {
		// Unparseable local builds are treated as older than any release.
		result.Available = true
		return result, nil
	}
	result.Available = current.LessThan(latest)
	return result, nil
}
