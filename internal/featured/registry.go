package featured

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/types"
)

// maxLoggedWarnings is how many skipped entries are logged one by one.
const maxLoggedWarnings = 5

// snapshot is an immutable view of the registry. It is replaced, never mutated.
type snapshot struct {
	entries  []types.FeaturedKeyword
	index    map[string]int
	lastErr  error
	warnings []string
	loadedAt time.Time
}

func newSnapshot(entries []types.FeaturedKeyword, lastErr error, warnings []string) *snapshot {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[NormalizeKey(e.Keyword)] = i
	}
	return &snapshot{
		entries:  entries,
		index:    index,
		lastErr:  lastErr,
		warnings: warnings,
		loadedAt: time.Now(),
	}
}

// HealthStatus reports the registry state for health endpoints.
type HealthStatus struct {
	IsAvailable   bool      `json:"is_available"`
	KeywordsCount int       `json:"keywords_count"`
	FilePath      string    `json:"file_path"`
	FileExists    bool      `json:"file_exists"`
	LastError     string    `json:"last_error,omitempty"`
	ErrorType     string    `json:"error_type,omitempty"`
	WarningsCount int       `json:"warnings_count"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// Registry is a read-mostly, concurrency-safe view of the featured keywords.
// Lookups read an atomic snapshot; Reload swaps it.
type Registry struct {
	path   string
	logger *zap.Logger

	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
}

// NewRegistry loads path and returns a registry over the result. A failed load
// yields an empty, unavailable registry rather than an error.
func NewRegistry(path string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{path: path, logger: logger}

	result := Load(path)
	r.logResult(result)
	r.current.Store(newSnapshot(result.Entries, result.Err, result.Warnings))
	return r
}

// FromEntries builds a registry from in-memory entries. The entries are
// validated the same way as file contents.
func FromEntries(entries []types.FeaturedKeyword, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	items := make([]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"name":      e.Name,
			"keyword":   e.Keyword,
			"gender":    string(e.Gender),
			"condition": e.Condition,
		})
	}
	valid, warnings := validateEntries(items)

	r := &Registry{logger: logger}
	r.current.Store(newSnapshot(valid, nil, warnings))
	return r
}

// Path returns the registry source path; empty for in-memory registries.
func (r *Registry) Path() string {
	return r.path
}

// IsAvailable reports whether the registry holds at least one entry.
func (r *Registry) IsAvailable() bool {
	return len(r.current.Load().entries) > 0
}

// IsFeatured reports whether keyword matches an entry after trim and case fold.
func (r *Registry) IsFeatured(keyword string) bool {
	_, ok := r.Lookup(keyword)
	return ok
}

// Lookup returns a copy of the entry matching keyword.
func (r *Registry) Lookup(keyword string) (types.FeaturedKeyword, bool) {
	key := NormalizeKey(keyword)
	if key == "" {
		return types.FeaturedKeyword{}, false
	}
	s := r.current.Load()
	i, ok := s.index[key]
	if !ok {
		return types.FeaturedKeyword{}, false
	}
	return s.entries[i], true
}

// All returns a copy of every entry in source order.
func (r *Registry) All() []types.FeaturedKeyword {
	s := r.current.Load()
	out := make([]types.FeaturedKeyword, len(s.entries))
	copy(out, s.entries)
	return out
}

// ByGender returns the entries for one gender.
func (r *Registry) ByGender(g types.Gender) []types.FeaturedKeyword {
	s := r.current.Load()
	var out []types.FeaturedKeyword
	for _, e := range s.entries {
		if e.Gender == g {
			out = append(out, e)
		}
	}
	return out
}

// LastError returns the error from the most recent load attempt, or nil.
func (r *Registry) LastError() error {
	return r.current.Load().lastErr
}

// Warnings returns the entry-level warnings from the current snapshot.
func (r *Registry) Warnings() []string {
	s := r.current.Load()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Health summarises the registry state.
func (r *Registry) Health() HealthStatus {
	s := r.current.Load()
	h := HealthStatus{
		IsAvailable:   len(s.entries) > 0,
		KeywordsCount: len(s.entries),
		FilePath:      r.path,
		WarningsCount: len(s.warnings),
		LoadedAt:      s.loadedAt,
	}
	if r.path != "" {
		_, err := os.Stat(r.path)
		h.FileExists = err == nil
	}
	if s.lastErr != nil {
		h.LastError = s.lastErr.Error()
		h.ErrorType = errorType(s.lastErr)
	}
	return h
}

// Reload re-reads the source file. On a LoadError or ValidationError the
// current entries are kept, the error is recorded and false is returned.
// A clean load replaces the snapshot.
func (r *Registry) Reload() bool {
	if r.path == "" {
		return false
	}

	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	result := Load(r.path)
	r.logResult(result)

	if result.Err != nil {
		prev := r.current.Load()
		r.current.Store(&snapshot{
			entries:  prev.entries,
			index:    prev.index,
			lastErr:  result.Err,
			warnings: prev.warnings,
			loadedAt: prev.loadedAt,
		})
		return false
	}

	r.current.Store(newSnapshot(result.Entries, nil, result.Warnings))
	return true
}

func (r *Registry) logResult(result LoadResult) {
	if result.Err != nil {
		if isNotFound(result.Err) {
			r.logger.Warn("featured keywords file not found", zap.String("path", r.path))
			return
		}
		r.logger.Error("failed to load featured keywords",
			zap.String("path", r.path),
			zap.String("error_type", errorType(result.Err)),
			zap.Error(result.Err))
		return
	}

	for i, w := range result.Warnings {
		if i >= maxLoggedWarnings {
			r.logger.Warn("additional featured keyword entries skipped",
				zap.Int("count", len(result.Warnings)-maxLoggedWarnings))
			break
		}
		r.logger.Warn("featured keyword entry skipped", zap.String("reason", w))
	}

	r.logger.Info("featured keywords loaded",
		zap.String("path", r.path),
		zap.Int("count", len(result.Entries)),
		zap.Int("skipped", len(result.Warnings)))
}

func isNotFound(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr) && loadErr.Message == msgNotFound
}
