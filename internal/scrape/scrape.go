// Package scrape turns a job posting URL into plain text. A plain HTTP fetch
// is tried first; pages that yield no text are rendered in headless Chrome.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultMaxBody   = 4 << 20
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// ErrNoContent is returned when neither fetch strategy produced text.
var ErrNoContent = errors.New("job posting has no readable content")

// RenderFunc returns the rendered HTML of a page.
type RenderFunc func(ctx context.Context, pageURL string) (string, error)

type Scraper struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string

	// MaxBodySize caps the bytes read from a page; the rest is dropped.
	MaxBodySize int64

	// Render is the fallback used when the plain fetch yields nothing.
	// Nil disables the fallback.
	Render RenderFunc
}

// New returns a scraper that falls back to headless Chrome.
func New(logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scraper{
		logger:      logger,
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
		UserAgent:   defaultUserAgent,
		MaxBodySize: defaultMaxBody,
		Render:      RenderWithChrome,
	}
}

// Fetch returns the main text of the job posting at pageURL.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid job posting url %q", pageURL)
	}

	text, err := s.fetchHTTP(ctx, pageURL)
	if err != nil {
		s.logger.Debug("plain fetch failed", zap.String("url", pageURL), zap.Error(err))
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	if s.Render == nil {
		if err != nil {
			return "", err
		}
		return "", ErrNoContent
	}

	s.logger.Info("falling back to headless browser", zap.String("url", pageURL))

	html, err := s.Render(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}

	text, err = ExtractMainText(html)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}

	return text, nil
}

func (s *Scraper) fetchHTTP(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	limit := s.MaxBodySize
	if limit <= 0 {
		limit = defaultMaxBody
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > limit {
		s.logger.Warn("job posting page truncated", zap.String("url", pageURL), zap.Int64("limit", limit))
		body = body[:limit]
	}

	return ExtractMainText(string(body))
}

// ExtractMainText parses html and returns the readable text of the most
// specific job content container, falling back to the body.
func ExtractMainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, header, footer, nav, .cookie-banner").Remove()

	var main *goquery.Selection
	for _, selector := range jobSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	return strings.Join(strings.Fields(main.Text()), " "), nil
}

var jobSelectors = []string{
	".job-description",
	"#job-description",
	".jobs-description",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
}
