package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/types"
)

// HTTPScraper fetches catalog result pages with plain HTTP requests.
type HTTPScraper struct {
	client  *http.Client
	opts    Options
	logger  *zap.Logger
	baseURL func(types.Gender) string
}

// NewHTTPScraper creates a scraper. A nil client gets one with opts.Timeout.
func NewHTTPScraper(client *http.Client, opts Options, logger *zap.Logger) *HTTPScraper {
	opts = opts.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPScraper{client: client, opts: opts, logger: logger, baseURL: SearchURL}
}

// WithBaseURL overrides the search URL, for tests and mirrors.
func (s *HTTPScraper) WithBaseURL(base string) *HTTPScraper {
	s.baseURL = func(types.Gender) string { return base }
	return s
}

// FetchTitles walks up to MaxPages result pages for keyword.
func (s *HTTPScraper) FetchTitles(ctx context.Context, keyword string, gender types.Gender) ([]string, error) {
	start, err := url.Parse(s.baseURL(gender))
	if err != nil {
		return nil, &Error{URL: s.baseURL(gender), Message: "invalid URL", Cause: err}
	}
	q := start.Query()
	q.Set("keyword", keyword)
	start.RawQuery = q.Encode()

	var titles []string
	current := start
	for page := 1; page <= s.opts.MaxPages; page++ {
		html, err := s.get(ctx, current.String())
		if err != nil {
			if page == 1 {
				return nil, err
			}
			s.logger.Warn("stopping pagination after fetch error", zap.Int("page", page), zap.Error(err))
			break
		}

		parsed, err := ParsePage(html, keyword)
		if err != nil {
			return nil, &Error{URL: current.String(), Message: "failed to parse page", Cause: err}
		}
		if len(parsed.Titles) == 0 {
			s.logger.Warn("no matching titles on page", zap.Int("page", page))
		}
		titles = append(titles, parsed.Titles...)
		s.logger.Info("scraped catalog page",
			zap.Int("page", page), zap.Int("titles", len(parsed.Titles)))

		if parsed.NextURL == "" || page == s.opts.MaxPages {
			break
		}
		next, err := current.Parse(parsed.NextURL)
		if err != nil {
			s.logger.Warn("invalid next page link", zap.String("href", parsed.NextURL))
			break
		}
		current = next

		if err := sleep(ctx, randomDelay(s.opts.DelayMin, s.opts.DelayMax)); err != nil {
			return titles, err
		}
	}

	s.logger.Info("scraping finished", zap.String("keyword", keyword), zap.Int("titles", len(titles)))
	return titles, nil
}

func (s *HTTPScraper) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &Error{URL: target, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &Error{URL: target, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: target, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, io.LimitReader(resp.Body, 10<<20)); err != nil {
		return "", &Error{URL: target, Message: "failed to read response body", Cause: err}
	}
	return sb.String(), nil
}
