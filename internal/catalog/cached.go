package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/types"
)

// TitleCache stores scraped titles per keyword and gender.
type TitleCache interface {
	GetTitles(ctx context.Context, keyword, gender string, maxAge time.Duration) ([]string, bool, error)
	PutTitles(ctx context.Context, keyword, gender string, titles []string) error
}

// CachedScraper serves fresh cache entries and scrapes on a miss. Cache
// failures are logged and never fail the request.
type CachedScraper struct {
	next   Scraper
	cache  TitleCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedScraper wraps next with cache.
func NewCachedScraper(next Scraper, cache TitleCache, ttl time.Duration, logger *zap.Logger) *CachedScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedScraper{next: next, cache: cache, ttl: ttl, logger: logger}
}

// FetchTitles implements Scraper.
func (s *CachedScraper) FetchTitles(ctx context.Context, keyword string, gender types.Gender) ([]string, error) {
	key := cacheKey(keyword)

	titles, found, err := s.cache.GetTitles(ctx, key, string(gender), s.ttl)
	if err != nil {
		s.logger.Warn("title cache read failed", zap.Error(err))
	} else if found && len(titles) > 0 {
		s.logger.Debug("title cache hit", zap.String("keyword", key), zap.Int("titles", len(titles)))
		return titles, nil
	}

	titles, err = s.next.FetchTitles(ctx, keyword, gender)
	if err != nil {
		return nil, err
	}

	if len(titles) > 0 {
		if err := s.cache.PutTitles(ctx, key, string(gender), titles); err != nil {
			s.logger.Warn("title cache write failed", zap.Error(err))
		}
	}
	return titles, nil
}

func cacheKey(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
