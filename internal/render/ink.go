package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"
)

// DefaultInkURL is the public mermaid.ink endpoint.
const DefaultInkURL = "https://mermaid.ink"

const defaultInkTimeout = 30 * time.Second

// HTTP failure kinds reported through *HTTPError.
var (
	ErrInvalidSyntax = errors.New("invalid mermaid syntax")
	ErrTooLarge      = errors.New("diagram too large for API, consider local rendering")
	ErrRateLimited   = errors.New("rate limited by API, try again later")
	ErrAPIFailure    = errors.New("API request failed")
)

// HTTPError is a non-200 answer from the rendering API.
type HTTPError struct {
	StatusCode int
	Kind       error
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%v (HTTP %d): %s", e.Kind, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%v (HTTP %d)", e.Kind, e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Kind }

func statusKind(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrInvalidSyntax
	case http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrAPIFailure
	}
}

// InkRenderer renders through mermaid.ink. Identical requests within one process are
// answered from an LRU cache.
type InkRenderer struct {
	baseURL string
	client  *http.Client
	cache   *lru.Cache[string, []byte]
}

// NewInkRenderer creates an API renderer. cacheSize <= 0 disables the response cache.
func NewInkRenderer(baseURL string, timeout time.Duration, cacheSize int) (*InkRenderer, error) {
	if baseURL == "" {
		baseURL = DefaultInkURL
	}
	if timeout <= 0 {
		timeout = defaultInkTimeout
	}
	r := &InkRenderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	if cacheSize > 0 {
		c, err := lru.New[string, []byte](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
		r.cache = c
	}
	return r, nil
}

// Encode compresses content the way mermaid.live does: zlib level 9, URL-safe base64.
func Encode(content string) (string, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write([]byte(content)); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// URL builds the request URL for content.
func (r *InkRenderer) URL(content string, opts Options) (string, error) {
	encoded, err := Encode(content)
	if err != nil {
		return "", fmt.Errorf("failed to encode diagram: %w", err)
	}
	endpoint := "img"
	if opts.Format == "svg" {
		endpoint = "svg"
	}
	u := fmt.Sprintf("%s/%s/pako:%s", r.baseURL, endpoint, encoded)

	params := url.Values{}
	if opts.Theme != "" && opts.Theme != "default" {
		params.Set("theme", opts.Theme)
	}
	if opts.Background != "" && opts.Background != "white" {
		params.Set("bgColor", opts.Background)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u, nil
}

// Render fetches the image and writes it to outputPath.
func (r *InkRenderer) Render(ctx context.Context, content, outputPath string, opts Options) error {
	if err := prepare(content, outputPath, opts); err != nil {
		return err
	}
	u, err := r.URL(content, opts)
	if err != nil {
		return err
	}

	body, ok := r.cached(u)
	if !ok {
		body, err = r.fetch(ctx, u)
		if err != nil {
			return err
		}
		if r.cache != nil {
			r.cache.Add(u, body)
		}
	}
	if len(body) == 0 {
		return ErrEmptyOutput
	}
	if err := os.WriteFile(outputPath, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return checkOutput(outputPath)
}

func (r *InkRenderer) cached(u string) ([]byte, bool) {
	if r.cache == nil {
		return nil, false
	}
	return r.cache.Get(u)
}

func (r *InkRenderer) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Kind:       statusKind(resp.StatusCode),
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read API response: %w", err)
	}
	return body, nil
}

// Ping checks that the API answers a tiny diagram.
func (r *InkRenderer) Ping(ctx context.Context) error {
	u, err := r.URL("graph TD\nA-->B", Options{Format: "png"})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = r.fetch(ctx, u)
	return err
}
