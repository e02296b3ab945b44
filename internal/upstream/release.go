package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	// ErrUpstreamURL is returned when the descriptor url is missing or not a
	// recognized GitHub repository URL
	ErrUpstreamURL = errors.New("invalid upstream URL")
	// ErrUnparseableVersion is returned when no usable version can be derived
	// from the upstream release feed
	ErrUnparseableVersion = errors.New("unparseable upstream version")
	// ErrRateLimit indicates GitHub API rate limit exceeded
	ErrRateLimit = errors.New("GitHub API rate limit exceeded")
	// ErrAPIError indicates a general GitHub API error
	ErrAPIError = errors.New("GitHub API error")
)

// repoURLRegex matches https://github.com/owner/repo with optional .git or
// trailing slash
var repoURLRegex = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// versionCharRegex proves a candidate version contains at least one digit,
// dot or hyphen somewhere. Deliberately unanchored: many non-numeric strings
// pass, preserving the permissive acceptance of the historical tool.
var versionCharRegex = regexp.MustCompile(`[0-9.\-]`)

// Release is the subset of a GitHub release entry this tool consumes
type Release struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// ParseRepoURL extracts owner and repository from a GitHub URL
func ParseRepoURL(url string) (owner, repo string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("%w: url is not set", ErrUpstreamURL)
	}
	m := repoURLRegex.FindStringSubmatch(url)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q is not a https://github.com/owner/repo URL", ErrUpstreamURL, url)
	}
	return m[1], m[2], nil
}

// NormalizeTag strips a single leading v or r prefix from a release tag
func NormalizeTag(tag string) string {
	if len(tag) > 0 && (tag[0] == 'v' || tag[0] == 'r') {
		return tag[1:]
	}
	return tag
}

// ValidVersion reports whether a normalized version string is usable. The
// check only proves the string contains a digit, dot or hyphen somewhere.
func ValidVersion(s string) bool {
	return versionCharRegex.MatchString(s)
}

// Client fetches release metadata from the GitHub API
type Client struct {
	BaseURL    string
	UserAgent  string
	Token      string
	HTTPClient *RetryableHTTPClient
}

// NewClient creates a new release feed client. An empty token is allowed;
// authenticated requests just get a higher rate limit.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:    "https://api.github.com",
		UserAgent:  "aurup/1.0",
		Token:      token,
		HTTPClient: NewRetryableHTTPClient(),
	}
}

// LatestRelease returns the tag of the first release in feed order that is
// neither a draft nor a prerelease, or "" if no release qualifies.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.BaseURL, owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.DoWithContext(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		reset := resp.Header.Get("X-RateLimit-Reset")
		return "", fmt.Errorf("%w: rate limit resets at %s", ErrRateLimit, reset)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return "", fmt.Errorf("failed to parse releases feed: %w", err)
	}

	for _, r := range releases {
		if !r.Draft && !r.Prerelease {
			return r.TagName, nil
		}
	}
	return "", nil
}

// ResolveVersion fetches the latest qualifying release tag and normalizes it
// into a version string. An empty or unusable result is ErrUnparseableVersion.
func (c *Client) ResolveVersion(ctx context.Context, owner, repo string) (string, error) {
	tag, err := c.LatestRelease(ctx, owner, repo)
	if err != nil {
		return "", err
	}

	version := NormalizeTag(tag)
	if !ValidVersion(version) {
		return "", fmt.Errorf("%w: %s/%s latest tag %q", ErrUnparseableVersion, owner, repo, tag)
	}
	return version, nil
}
