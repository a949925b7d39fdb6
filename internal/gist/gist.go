// Package gist fetches Markdown files from GitHub gists.
package gist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

// DefaultAPIURL is the GitHub REST API root.
const DefaultAPIURL = "https://api.github.com"

var (
	ErrInvalidURL   = errors.New("invalid GitHub gist URL")
	ErrNotFound     = errors.New("gist not found")
	ErrAccessDenied = errors.New("access denied to gist (private gists need a GitHub token)")
	ErrRateLimited  = errors.New("GitHub API rate limit exceeded, consider using a GitHub token")
	ErrUnauthorized = errors.New("invalid GitHub token or authentication failed")
)

var (
	gistURLRe = regexp.MustCompile(`(https?://)?gist\.github\.com/([a-zA-Z0-9_-]+/)?[a-f0-9]+(\.git)?/?$`)
	gistIDRe  = regexp.MustCompile(`gist\.github\.com/(?:[a-zA-Z0-9_-]+/)?([a-f0-9]+)`)
)

// IsGistURL reports whether s looks like a gist URL (scheme optional).
func IsGistURL(s string) bool {
	return gistURLRe.MatchString(strings.TrimSpace(s))
}

// ExtractID returns the hex gist ID of a gist URL.
func ExtractID(s string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(s), "/")
	u = strings.TrimSuffix(u, ".git")
	m := gistIDRe.FindStringSubmatch(u)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, s)
	}
	return m[1], nil
}

// File is one file of a gist as returned by the API.
type File struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Gist is the subset of the API response we use.
type Gist struct {
	ID    string          `json:"id"`
	Files map[string]File `json:"files"`
}

// Client talks to the gists API.
type Client struct {
	BaseURL string // DefaultAPIURL when empty
	Token   string // optional bearer token
	HTTP    *http.Client
}

// NewClient creates a Client with a 30 s timeout.
func NewClient(token string) *Client {
	return &Client{Token: token, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// Get downloads gist metadata and file contents.
func (c *Client) Get(ctx context.Context, id string) (*Gist, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/gists/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error while fetching gist %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusError(id, resp.StatusCode, string(body))
	}

	var g Gist
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return nil, fmt.Errorf("invalid JSON response from GitHub API: %w", err)
	}
	return &g, nil
}

func statusError(id string, code int, body string) error {
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(body), "rate limit") {
			return ErrRateLimited
		}
		return fmt.Errorf("%w: %s", ErrAccessDenied, id)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("HTTP error %d while fetching gist %s", code, id)
	}
}

// Fetch returns the Markdown files of the gist at url sorted by name. Filename is
// reduced to its base name. A gist without Markdown files yields no files and no error.
func (c *Client) Fetch(ctx context.Context, url string) ([]File, error) {
	if !IsGistURL(url) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	id, err := ExtractID(url)
	if err != nil {
		return nil, err
	}
	g, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var names []string
	for name := range g.Files {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".md", ".markdown":
			names = append(names, name)
		}
	}
	slices.Sort(names)

	files := make([]File, 0, len(names))
	for _, name := range names {
		// имя файла приходит из сети: только базовое имя
		files = append(files, File{Filename: filepath.Base(name), Content: g.Files[name].Content})
	}
	return files, nil
}
