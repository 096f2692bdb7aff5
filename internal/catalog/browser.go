package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/types"
)

// BrowserScraper drives a headless Chrome through the catalog search form.
// Requires Chrome/Chromium on the host.
type BrowserScraper struct {
	opts   Options
	logger *zap.Logger
}

// NewBrowserScraper creates a chromedp-backed scraper.
func NewBrowserScraper(opts Options, logger *zap.Logger) *BrowserScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserScraper{opts: opts.withDefaults(), logger: logger}
}

// FetchTitles types keyword into the search box, submits, and collects titles
// from up to MaxPages result pages.
func (s *BrowserScraper) FetchTitles(ctx context.Context, keyword string, gender types.Gender) ([]string, error) {
	target := SearchURL(gender)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(s.opts.UserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, s.opts.Timeout*time.Duration(s.opts.MaxPages+1))
	defer cancel()

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible(SearchBoxSelector, chromedp.ByQuery),
		chromedp.SendKeys(SearchBoxSelector+" input", keyword, chromedp.ByQuery),
		chromedp.Click(SearchButtonSelector, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &Error{URL: target, Message: "search form failed", Cause: err}
	}

	var titles []string
	for page := 1; page <= s.opts.MaxPages; page++ {
		var html string
		err := chromedp.Run(browserCtx,
			chromedp.WaitReady(StyleListSelector, chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		if err != nil {
			if page == 1 {
				return nil, &Error{URL: target, Message: "result list not found", Cause: err}
			}
			s.logger.Warn("stopping pagination", zap.Int("page", page), zap.Error(err))
			break
		}

		parsed, err := ParsePage(html, keyword)
		if err != nil {
			return nil, &Error{URL: target, Message: "failed to parse page", Cause: err}
		}
		titles = append(titles, parsed.Titles...)
		s.logger.Info("scraped catalog page (browser)",
			zap.Int("page", page), zap.Int("titles", len(parsed.Titles)))

		if parsed.NextURL == "" || page == s.opts.MaxPages {
			break
		}

		if err := sleep(ctx, randomDelay(s.opts.DelayMin, s.opts.DelayMax)); err != nil {
			return titles, err
		}
		if err := chromedp.Run(browserCtx,
			chromedp.ScrollIntoView(NextPageSelector, chromedp.ByQuery),
			chromedp.Click(NextPageSelector, chromedp.ByQuery),
		); err != nil {
			s.logger.Warn("next page click failed", zap.Int("page", page), zap.Error(err))
			break
		}
	}

	s.logger.Info("browser scraping finished",
		zap.String("keyword", keyword), zap.Int("titles", len(titles)))
	return titles, nil
}

// Mode selects a scraper implementation.
type Mode string

// Scraper modes.
const (
	ModeHTTP    Mode = "http"
	ModeBrowser Mode = "browser"
)

// ParseMode validates a scraper mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHTTP:
		return ModeHTTP, nil
	case ModeBrowser:
		return ModeBrowser, nil
	default:
		return "", fmt.Errorf("unknown scraper mode %q", s)
	}
}

// New returns the scraper for mode.
func New(mode Mode, opts Options, logger *zap.Logger) Scraper {
	if mode == ModeBrowser {
		return NewBrowserScraper(opts, logger)
	}
	return NewHTTPScraper(nil, opts, logger)
}
