// Package mineru provides a document parser adapter for MinerU-style
// structured-parsing services. The service accepts a multipart upload
// and answers with extracted markdown, which survives OCR and layout
// analysis far better than local byte-level decoding.
package mineru

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Default configuration values.
const (
	// DefaultTimeout bounds a single parse request. Structured parsing
	// of a large scanned PDF can legitimately take minutes.
	DefaultTimeout = 300 * time.Second

	// pingTimeout bounds the availability probe.
	pingTimeout = 5 * time.Second
)

// Config holds configuration for the MinerU parser client.
type Config struct {
	// URL is the full parse endpoint, e.g. http://localhost:8888/file_parse.
	URL string

	// Timeout bounds a single parse request (default: 300s).
	Timeout time.Duration
}

// Parser uploads documents to a MinerU-compatible service and extracts
// the markdown from its response.
type Parser struct {
	client *resty.Client
	url    string
}

// NewParser creates a MinerU parser client.
func NewParser(cfg Config) (*Parser, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mineru: parse URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Parser{
		client: client,
		url:    cfg.URL,
	}, nil
}

// Parse uploads the document and returns the extracted markdown. Any
// transport failure, non-200 response, or unusable response body is an
// error, which the extraction chain treats as a cue to fall back to
// local extraction.
func (p *Parser) Parse(ctx context.Context, src *domain.SourceDocument) (string, error) {
	if src == nil || len(src.Content) == 0 {
		return "", fmt.Errorf("%w: document has no content", domain.ErrInvalidInput)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetFileReader("files", filepath.Base(src.Path), bytes.NewReader(src.Content)).
		SetFormData(map[string]string{"return_md": "true"}).
		Post(p.url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrParserUnavailable, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("parse returned status %d: %s", resp.StatusCode(), resp.String())
	}

	text, err := extractText(resp.Body())
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filepath.Base(src.Path), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("parse %s: response contained no text", filepath.Base(src.Path))
	}

	return text, nil
}

// Ping checks the service is reachable via its docs endpoint, which
// FastAPI-based services expose at the application root.
func (p *Parser) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := p.client.R().SetContext(ctx).Get(docsURL(p.url))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParserUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: docs endpoint returned status %d", domain.ErrParserUnavailable, resp.StatusCode())
	}
	return nil
}

// extractText probes the response for markdown. Service versions vary
// in their response shape, so several well-known keys are tried before
// falling back to a per-file results list.
func extractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("response is not valid JSON")
	}
	result := gjson.ParseBytes(body)

	// Some services answer with a bare JSON string.
	if result.Type == gjson.String {
		return result.String(), nil
	}

	for _, key := range []string{"md_content", "markdown", "content", "text"} {
		if v := result.Get(key); v.Exists() {
			return v.String(), nil
		}
	}

	if results := result.Get("results"); results.IsArray() {
		var parts []string
		for _, item := range results.Array() {
			if item.Type == gjson.String {
				parts = append(parts, item.String())
				continue
			}
			for _, key := range []string{"md_content", "markdown", "content"} {
				if v := item.Get(key); v.Exists() && v.String() != "" {
					parts = append(parts, v.String())
					break
				}
			}
		}
		return strings.Join(parts, "\n\n"), nil
	}

	return "", fmt.Errorf("response has no recognised content field")
}

// docsURL derives the service docs endpoint by dropping the last path
// segment of the parse endpoint.
func docsURL(parseURL string) string {
	u, err := url.Parse(parseURL)
	if err != nil {
		return strings.TrimSuffix(parseURL, "/") + "/docs"
	}

	dir := path.Dir(strings.TrimSuffix(u.Path, "/"))
	if dir == "." || dir == "/" {
		dir = ""
	}
	u.Path = dir + "/docs"
	u.RawQuery = ""

	return u.String()
}
