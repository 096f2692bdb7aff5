package validation

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// InjectionCheckResult holds the result of a basic injection heuristic check.
type InjectionCheckResult struct {
	IsSafe           bool
	DetectedKeywords []string
	Reason           string
}

// InjectionKeywords are phrases that suggest scraped text is trying to steer
// the model. Matching is case-insensitive.
var InjectionKeywords = []string{
	"ignore previous",
	"ignore all",
	"disregard above",
	"system prompt",
	"new instructions",
	"指示を無視",
	"以前の指示",
	"システムプロンプト",
	"新しい指示",
}

// injectionPatterns must cover every entry of InjectionKeywords.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)(\s+instructions?)?`),
	regexp.MustCompile(`(?i)ignore\s+all\b`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)`),
	regexp.MustCompile(`(?i)system\s+prompt`),
	regexp.MustCompile(`(?i)new\s+instructions?:?`),
	regexp.MustCompile(`(これまでの|以前の|上記の)?指示を(すべて|全て)?無視(して|しろ|せよ)?`),
	regexp.MustCompile(`(以前の|新しい)指示`),
	regexp.MustCompile(`システムプロンプト`),
}

const redacted = "[REDACTED]"

// MaxTitleRunes bounds a scraped title before it is quoted into a prompt.
const MaxTitleRunes = 100

// CheckBasicHeuristics is a keyword check for obvious injection attempts.
func CheckBasicHeuristics(text string) *InjectionCheckResult {
	lower := strings.ToLower(text)
	var detected []string
	for _, kw := range InjectionKeywords {
		if strings.Contains(lower, kw) {
			detected = append(detected, kw)
		}
	}
	if len(detected) == 0 {
		return &InjectionCheckResult{IsSafe: true}
	}
	return &InjectionCheckResult{
		IsSafe:           false,
		DetectedKeywords: detected,
		Reason:           "detected potential injection keywords: " + strings.Join(detected, ", "),
	}
}

// StripInjectionAttempts replaces known injection patterns with [REDACTED].
func StripInjectionAttempts(text string) string {
	for _, p := range injectionPatterns {
		text = p.ReplaceAllString(text, redacted)
	}
	return text
}

// SanitizeTitles prepares scraped titles for quoting into a prompt: control
// characters and injection patterns are removed, overlong titles are cut.
// Titles left empty or holding only redactions are dropped, as are
// duplicates. Order is preserved.
func SanitizeTitles(titles []string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]string, 0, len(titles))
	seen := make(map[string]bool, len(titles))
	for _, title := range titles {
		if check := CheckBasicHeuristics(title); !check.IsSafe {
			logger.Warn("potential injection in scraped title",
				zap.String("title", title), zap.String("reason", check.Reason))
			title = StripInjectionAttempts(title)
			if strings.TrimSpace(strings.ReplaceAll(title, redacted, "")) == "" {
				continue
			}
		}

		title = strings.TrimSpace(strings.Map(func(r rune) rune {
			if r < 0x20 || r == 0x7f {
				return ' '
			}
			return r
		}, title))
		if r := []rune(title); len(r) > MaxTitleRunes {
			title = string(r[:MaxTitleRunes])
		}

		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, title)
	}
	return out
}
