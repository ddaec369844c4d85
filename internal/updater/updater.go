// Package updater checks GitHub for newer sfh releases.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// GitHubAPIURL is the endpoint for checking releases
	GitHubAPIURL = "https://api.github.com/repos/Dicklesworthstone/sfh/releases/latest"
	// CheckTimeout is the maximum time to wait for update check
	CheckTimeout = 2 * time.Second
)

// Release represents a GitHub release
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Name    string `json:"name"`
}

// UpdateInfo contains information about an available update
type UpdateInfo struct {
	Available   bool   `json:"available"`
	NewVersion  string `json:"new_version,omitempty"`
	CurrentVer  string `json:"current_version"`
	ReleaseURL  string `json:"release_url,omitempty"`
	ReleaseName string `json:"release_name,omitempty"`
}

// Checker queries a releases endpoint.
type Checker struct {
	Client *http.Client
	URL    string
}

// NewChecker returns a Checker for the sfh GitHub releases.
func NewChecker() *Checker {
	return &Checker{
		Client: &http.Client{Timeout: CheckTimeout},
		URL:    GitHubAPIURL,
	}
}

// Check fetches the latest release and compares it with currentVersion.
// Rate limits and non-200 responses report no update rather than an error.
func (c *Checker) Check(ctx context.Context, currentVersion string) (*UpdateInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}

	// GitHub recommends sending a User-Agent
	req.Header.Set("User-Agent", "sfh-update-check")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpdateInfo{Available: false, CurrentVer: currentVersion}, nil
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	return &UpdateInfo{
		Available:   compareVersions(rel.TagName, currentVersion) > 0,
		CurrentVer:  currentVersion,
		NewVersion:  rel.TagName,
		ReleaseURL:  rel.HTMLURL,
		ReleaseName: rel.Name,
	}, nil
}

// CheckAsync runs Check in a goroutine. The channel receives exactly one
// value, never nil, and is then closed. Development builds never report an
// update.
func (c *Checker) CheckAsync(ctx context.Context, currentVersion string) <-chan *UpdateInfo {
	ch := make(chan *UpdateInfo, 1)
	go func() {
		defer close(ch)
		if currentVersion == "" || currentVersion == "dev" {
			ch <- &UpdateInfo{CurrentVer: currentVersion}
			return
		}
		info, err := c.Check(ctx, currentVersion)
		if err != nil {
			info = &UpdateInfo{Available: false, CurrentVer: currentVersion}
		}
		ch <- info
	}()
	return ch
}

// ShouldNotify reports whether info is worth a banner given the version the
// user chose to ignore.
func ShouldNotify(info *UpdateInfo, ignored string) bool {
	if info == nil || !info.Available {
		return false
	}
	return ignored == "" || compareVersions(info.NewVersion, ignored) > 0
}

// compareVersions compares semver-ish strings with optional leading 'v' and optional pre-release
// suffix (e.g., v1.2.3-alpha). Pre-release versions are considered LOWER than their corresponding
// release version per Semantic Versioning.
// Returns 1 if v1>v2, -1 if v1<v2, 0 if equal.
func compareVersions(v1, v2 string) int {
	p1, ok1 := parseVersion(v1)
	p2, ok2 := parseVersion(v2)

	if !ok1 || !ok2 {
		// Fallback: lexicographic
		return strings.Compare(strings.TrimPrefix(v1, "v"), strings.TrimPrefix(v2, "v"))
	}

	for i := range p1.parts {
		if p1.parts[i] != p2.parts[i] {
			if p1.parts[i] > p2.parts[i] {
				return 1
			}
			return -1
		}
	}

	switch {
	case p1.pre == p2.pre:
		return 0
	case p1.pre == "":
		return 1
	case p2.pre == "":
		return -1
	default:
		return strings.Compare(p1.pre, p2.pre)
	}
}

type version struct {
	parts [3]int
	pre   string
}

func parseVersion(v string) (version, bool) {
	var out version
	v = strings.TrimPrefix(v, "v")
	if idx := strings.Index(v, "-"); idx != -1 {
		out.pre = v[idx+1:]
		v = v[:idx]
	}
	parts := strings.Split(v, ".")
	for i := 0; i < len(out.parts) && i < len(parts); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return version{}, false
		}
		out.parts[i] = n
	}
	return out, true
}
