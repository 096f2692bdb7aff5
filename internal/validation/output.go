package validation

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/types"
)

// ExtractJSONArray returns the text between the first '[' and the last ']'.
func ExtractJSONArray(raw string) (string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < 0 || end < start {
		return "", &ParseError{Message: "no JSON array found in model output"}
	}
	return raw[start : end+1], nil
}

// Report is the outcome of validating one model response.
type Report struct {
	Items    []types.GeneratedItem
	Received int
	Rejected []ItemError
}

// ValidateOutput parses raw model output and returns the items that satisfy
// the output contract for req, truncated to req.MaxItems and annotated with
// the request's classification.
func ValidateOutput(raw string, req *types.GenerationRequest, logger *zap.Logger) ([]types.GeneratedItem, error) {
	report, err := ValidateReport(raw, req, logger)
	if err != nil {
		return nil, err
	}
	return report.Items, nil
}

// ValidateReport is ValidateOutput that also reports the rejected elements
// when some items survive.
func ValidateReport(raw string, req *types.GenerationRequest, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	body, err := ExtractJSONArray(raw)
	if err != nil {
		logger.Error("model output has no JSON array", zap.Int("length", len(raw)))
		return nil, err
	}

	var elements []any
	if err := json.Unmarshal([]byte(body), &elements); err != nil {
		logger.Error("failed to decode model output", zap.Error(err))
		return nil, &ParseError{Message: "invalid JSON array", Cause: err}
	}

	schema, err := compiledSchema(req.CharLimits)
	if err != nil {
		return nil, err
	}

	keyword := strings.ToLower(req.NormalizedKeyword)
	c := req.Classification

	items := make([]types.GeneratedItem, 0, len(elements))
	var rejected []ItemError
	for i, el := range elements {
		if itemErr := validateItem(schema, i, el); itemErr != nil {
			logger.Warn("generated item rejected", zap.Int("index", i), zap.String("reason", itemErr.Error()))
			rejected = append(rejected, *itemErr)
			continue
		}

		item := decodeItem(el.(map[string]any))
		if keyword != "" && !strings.Contains(strings.ToLower(item.Title), keyword) {
			logger.Warn("generated title does not contain keyword",
				zap.String("keyword", req.NormalizedKeyword),
				zap.String("title", item.Title))
		}

		item.IsFeatured = c.IsFeatured
		item.KeywordType = c.KeywordType
		item.ProcessingMode = c.ProcessingMode
		item.OriginalKeyword = req.OriginalKeyword
		items = append(items, item)
	}

	if req.MaxItems > 0 && len(items) > req.MaxItems {
		items = items[:req.MaxItems]
	}

	logger.Info("model output validated",
		zap.Int("received", len(elements)),
		zap.Int("valid", len(items)),
		zap.Int("rejected", len(rejected)))

	if len(items) == 0 {
		return nil, &NoValidItemsError{Total: len(elements), Rejected: rejected}
	}
	return &Report{Items: items, Received: len(elements), Rejected: rejected}, nil
}

// decodeItem reads a schema-valid element.
func decodeItem(obj map[string]any) types.GeneratedItem {
	item := types.GeneratedItem{
		Title:   obj["title"].(string),
		Menu:    obj["menu"].(string),
		Comment: obj["comment"].(string),
	}
	tags := obj["hashtag"].([]any)
	item.Hashtags = make([]string, 0, len(tags))
	for _, t := range tags {
		item.Hashtags = append(item.Hashtags, t.(string))
	}
	return item
}
