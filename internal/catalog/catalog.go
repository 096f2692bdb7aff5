// Package catalog scrapes hairstyle titles from the HotPepper Beauty hair
// catalog search.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/salon-copy/internal/types"
)

// Catalog search entry points.
const (
	LadiesURL = "https://beauty.hotpepper.jp/CSP/bt/hairCatalogSearch/ladys/condtion/"
	MensURL   = "https://beauty.hotpepper.jp/CSP/bt/hairCatalogSearch/mens/condtion/"
)

// CSS selectors for the catalog search pages.
const (
	SearchBoxSelector    = "#keyword > div > div.mT15 > p.cFix.kwInputWrapper"
	SearchButtonSelector = "#keyword > div > div.mT15 > p.mT10 > input"
	StyleListSelector    = "#jsiHoverAlphaLayerScope"
	StyleTitleSelector   = "#jsiHoverAlphaLayerScope > li > div.mT5 > a > p > span"
	NextPageSelector     = "#searchList > div:nth-child(2) > div.pT5.pr.cFix > div > ul > li.pa.top0.right0.afterPage > a"
)

// DefaultUserAgent is sent with catalog requests.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Scraper fetches candidate titles for a keyword.
type Scraper interface {
	FetchTitles(ctx context.Context, keyword string, gender types.Gender) ([]string, error)
}

// Options configures paging and politeness.
type Options struct {
	MaxPages  int
	DelayMin  time.Duration
	DelayMax  time.Duration
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns three pages with a 1-3s delay between them.
func DefaultOptions() Options {
	return Options{
		MaxPages:  3,
		DelayMin:  time.Second,
		DelayMax:  3 * time.Second,
		Timeout:   30 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxPages <= 0 {
		o.MaxPages = def.MaxPages
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.DelayMax < o.DelayMin {
		o.DelayMax = o.DelayMin
	}
	return o
}

// SearchURL returns the catalog search page for a gender.
func SearchURL(g types.Gender) string {
	if g == types.GenderMens {
		return MensURL
	}
	return LadiesURL
}

// Error represents a scraping failure.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scrape error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("scrape error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
