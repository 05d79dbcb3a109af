// Package release asks GitHub whether a newer release of the tool exists.
// It never downloads anything.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// ErrNoRelease is returned when the repository has no usable release.
var ErrNoRelease = errors.New("no published release found")

// Release is the subset of the GitHub release payload that is reported.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	Prerelease  bool      `json:"prerelease"`
	Draft       bool      `json:"draft"`
	PublishedAt time.Time `json:"published_at"`
}

// Status compares the running version with the latest release.
type Status struct {
	Current string
	Latest  *Release
	// Comparable is false when either version is not semver (e.g. "dev").
	Comparable bool
	Newer      bool
}

// Checker queries the releases of one repository.
type Checker struct {
	Repo    string // owner/name
	BaseURL string
	Client  *http.Client
}

// NewChecker returns a checker for repo using the public GitHub API.
func NewChecker(repo string) *Checker {
	return &Checker{Repo: repo, BaseURL: DefaultBaseURL, Client: newClient()}
}

func newClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			// Try IPv4 first; some dual-stack resolvers hand out dead IPv6 routes.
			conn, err := dialer.DialContext(ctx, "tcp4", addr)
			if err != nil {
				return dialer.DialContext(ctx, network, addr)
			}
			return conn, nil
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: server returned status %d", e.url, e.code)
}

func (c *Checker) get(ctx context.Context, path string, v any) error {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "vibe-coding-setup")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode, url: url}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// Latest returns the latest stable release. When the "latest" endpoint has
// nothing (404), the release list is scanned for the highest stable semver tag.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	if c.Repo == "" {
		return nil, errors.New("no repository configured")
	}

	var latest Release
	err := c.get(ctx, "/repos/"+c.Repo+"/releases/latest", &latest)
	if err == nil && latest.TagName != "" {
		return &latest, nil
	}
	var se *statusError
	if err != nil && !(errors.As(err, &se) && se.code == http.StatusNotFound) {
		return nil, err
	}

	var releases []Release
	if err := c.get(ctx, "/repos/"+c.Repo+"/releases", &releases); err != nil {
		return nil, err
	}
	best := pickStable(releases)
	if best == nil {
		return nil, ErrNoRelease
	}
	return best, nil
}

func pickStable(releases []Release) *Release {
	var best *Release
	for i := range releases {
		r := &releases[i]
		if r.Draft || r.Prerelease {
			continue
		}
		v := Canonical(r.TagName)
		if !semver.IsValid(v) || semver.Prerelease(v) != "" {
			continue
		}
		if best == nil || semver.Compare(v, Canonical(best.TagName)) > 0 {
			best = r
		}
	}
	return best
}

// Check fetches the latest release and compares it with current.
func (c *Checker) Check(ctx context.Context, current string) (*Status, error) {
	latest, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	st := &Status{Current: current, Latest: latest}
	st.Newer, st.Comparable = IsNewer(latest.TagName, current)
	return st, nil
}

// Canonical adds the "v" prefix semver expects ("1.2.0" becomes "v1.2.0").
func Canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// IsNewer reports whether remote is a higher semver than local. ok is false
// when either value is not a valid semantic version.
func IsNewer(remote, local string) (newer, ok bool) {
	r, l := Canonical(remote), Canonical(local)
	if !semver.IsValid(r) || !semver.IsValid(l) {
		return false, false
	}
	return semver.Compare(r, l) > 0, true
}
