package gist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsGistURL(t *testing.T) {
	tests := map[string]bool{
		"https://gist.github.com/username/abc123def456":   true,
		"https://gist.github.com/abc123def456":            true,
		"gist.github.com/username/abc123":                 true,
		"https://gist.github.com/user/abc123.git":         true,
		"  https://gist.github.com/user-name_1/0f0f/ ":    true,
		"https://github.com/user/repo":                    false,
		"https://gist.github.com/user/not-hex":            false,
		"docs/README.md":                                  false,
		"https://gist.github.com/user/abc123/raw/file.md": false,
	}
	for in, want := range tests {
		if got := IsGistURL(in); got != want {
			t.Errorf("IsGistURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExtractID(t *testing.T) {
	tests := map[string]string{
		"https://gist.github.com/user/abc123def456": "abc123def456",
		"https://gist.github.com/abc123def456/":     "abc123def456",
		"https://gist.github.com/user/abc123.git":   "abc123",
	}
	for in, want := range tests {
		got, err := ExtractID(in)
		if err != nil || got != want {
			t.Errorf("ExtractID(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ExtractID("https://example.com/x"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
}

func TestFetch(t *testing.T) {
	var gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gists/abc123" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("X-GitHub-Api-Version")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc123","files":{
			"z.md":{"filename":"z.md","content":"# Z"},
			"a.markdown":{"filename":"a.markdown","content":"# A"},
			"script.py":{"filename":"script.py","content":"print()"}}}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Token: "tkn", HTTP: srv.Client()}
	files, err := c.Fetch(context.Background(), "https://gist.github.com/someone/abc123")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(files) != 2 || files[0].Filename != "a.markdown" || files[1].Filename != "z.md" {
		t.Fatalf("files = %+v", files)
	}
	if files[1].Content != "# Z" {
		t.Errorf("content = %q", files[1].Content)
	}
	if gotAuth != "Bearer tkn" || gotVersion != "2022-11-28" {
		t.Errorf("headers: auth=%q version=%q", gotAuth, gotVersion)
	}
}

func TestFetchNoMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"ff","files":{"a.txt":{"filename":"a.txt","content":"x"}}}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	files, err := c.Fetch(context.Background(), "gist.github.com/ff")
	if err != nil || len(files) != 0 {
		t.Errorf("Fetch = %v, %v", files, err)
	}
}

func TestFetchStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusNotFound, "", ErrNotFound},
		{http.StatusForbidden, `{"message":"API rate limit exceeded"}`, ErrRateLimited},
		{http.StatusForbidden, `{"message":"Forbidden"}`, ErrAccessDenied},
		{http.StatusUnauthorized, "", ErrUnauthorized},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))
		c := &Client{BaseURL: srv.URL}
		_, err := c.Fetch(context.Background(), "https://gist.github.com/u/abc")
		srv.Close()
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
	}

	c := &Client{BaseURL: "http://unused"}
	if _, err := c.Fetch(context.Background(), "https://github.com/u/repo"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("invalid url: got %v", err)
	}
}
