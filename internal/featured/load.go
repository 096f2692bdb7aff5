// Package featured manages the curated featured-keyword registry: loading and
// validating the JSON source, exact-match lookup, and hot reload.
package featured

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/jonathan/salon-copy/internal/types"
)

// MaxFileSize is the largest registry file accepted.
const MaxFileSize = 1 << 20

const msgNotFound = "file not found"

var requiredFields = []string{"name", "keyword", "gender", "condition"}

// LoadResult is the outcome of reading a registry source. Err is nil, a
// *LoadError or a *ValidationError; Entries is empty whenever Err is set.
// Warnings lists entries that were skipped.
type LoadResult struct {
	Entries  []types.FeaturedKeyword
	Warnings []string
	Err      error
}

// NormalizeKey is the comparison form of a keyword: trimmed, width-folded
// (full-width ASCII to half-width, half-width katakana to full-width) and
// lower-cased.
func NormalizeKey(keyword string) string {
	return strings.ToLower(width.Fold.String(strings.TrimSpace(keyword)))
}

// Load reads and validates the registry file at path. It never returns an
// error directly; failures are reported in LoadResult.Err.
func Load(path string) LoadResult {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LoadResult{Err: &LoadError{Path: path, Message: msgNotFound}}
		}
		return LoadResult{Err: &LoadError{Path: path, Message: "cannot stat file", Cause: err}}
	}
	if info.IsDir() {
		return LoadResult{Err: &LoadError{Path: path, Message: "path is a directory"}}
	}
	if info.Size() == 0 {
		return LoadResult{Err: &LoadError{Path: path, Message: "file is empty"}}
	}
	if info.Size() > MaxFileSize {
		return LoadResult{Err: &LoadError{
			Path:    path,
			Message: fmt.Sprintf("file too large: %d bytes (limit %d)", info.Size(), MaxFileSize),
		}}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{Err: &LoadError{Path: path, Message: "failed to read file", Cause: err}}
	}
	return Parse(path, data)
}

// Parse validates raw registry JSON. path is only used in error messages.
func Parse(path string, data []byte) LoadResult {
	if len(data) == 0 {
		return LoadResult{Err: &LoadError{Path: path, Message: "file is empty"}}
	}
	if len(data) > MaxFileSize {
		return LoadResult{Err: &LoadError{Path: path, Message: fmt.Sprintf("file too large: %d bytes", len(data))}}
	}
	if !utf8.Valid(data) {
		return LoadResult{Err: &LoadError{Path: path, Message: "file is not valid UTF-8"}}
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return LoadResult{Err: &LoadError{Path: path, Message: "invalid JSON", Cause: err}}
	}

	items, ok := root.([]any)
	if !ok {
		return LoadResult{Err: &ValidationError{Path: path, Message: "root element must be an array"}}
	}

	entries, warnings := validateEntries(items)
	return LoadResult{Entries: entries, Warnings: warnings}
}

// validateEntries keeps the well-formed entries in order. Each rejected
// entry produces one warning; the first occurrence of a keyword wins.
func validateEntries(items []any) ([]types.FeaturedKeyword, []string) {
	entries := make([]types.FeaturedKeyword, 0, len(items))
	var warnings []string
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		entry, err := validateEntry(item)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("entry[%d]: %v", i, err))
			continue
		}

		key := NormalizeKey(entry.Keyword)
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("entry[%d]: duplicate keyword %q", i, entry.Keyword))
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}

	return entries, warnings
}

func validateEntry(item any) (types.FeaturedKeyword, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return types.FeaturedKeyword{}, fmt.Errorf("not an object")
	}

	values := make(map[string]string, len(requiredFields))
	var missing []string
	for _, field := range requiredFields {
		s, ok := obj[field].(string)
		if !ok || strings.TrimSpace(s) == "" {
			missing = append(missing, field)
			continue
		}
		values[field] = s
	}
	if len(missing) > 0 {
		return types.FeaturedKeyword{}, fmt.Errorf("missing or empty fields: %s", strings.Join(missing, ", "))
	}

	gender := types.Gender(values["gender"])
	if !gender.Valid() {
		return types.FeaturedKeyword{}, fmt.Errorf("invalid gender %q", values["gender"])
	}

	if n := utf8.RuneCountInString(values["name"]); n > types.MaxFeaturedNameLength {
		return types.FeaturedKeyword{}, fmt.Errorf("name too long (%d > %d)", n, types.MaxFeaturedNameLength)
	}
	if n := utf8.RuneCountInString(values["keyword"]); n > types.MaxFeaturedKeywordLength {
		return types.FeaturedKeyword{}, fmt.Errorf("keyword too long (%d > %d)", n, types.MaxFeaturedKeywordLength)
	}
	if n := utf8.RuneCountInString(values["condition"]); n > types.MaxFeaturedConditionLength {
		return types.FeaturedKeyword{}, fmt.Errorf("condition too long (%d > %d)", n, types.MaxFeaturedConditionLength)
	}

	return types.FeaturedKeyword{
		Name:      values["name"],
		Keyword:   values["keyword"],
		Gender:    gender,
		Condition: values["condition"],
	}, nil
}
