// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"

	"github.com/jonathan/salon-copy/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes, in terminal cells
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// cells returns the terminal width of r. Wide and fullwidth runes take two cells.
func cells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// fit truncates s to at most n cells and pads it to exactly n.
func fit(s string, n int) string {
	var (
		sb   strings.Builder
		used int
	)
	for _, r := range s {
		w := cells(r)
		if used+w > n {
			// leave room for the ellipsis
			for used > n-3 {
				str := []rune(sb.String())
				used -= cells(str[len(str)-1])
				sb.Reset()
				sb.WriteString(string(str[:len(str)-1]))
			}
			sb.WriteString("...")
			used += 3
			break
		}
		sb.WriteRune(r)
		used += w
	}
	return sb.String() + strings.Repeat(" ", max(n-used, 0))
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", fit(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", fit(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintClassification outputs how the keyword was classified.
func (p *Printer) PrintClassification(c types.Classification) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Keyword:  %s\n", c.OriginalKeyword))
	sb.WriteString(fmt.Sprintf("Type:     %s\n", c.KeywordType))
	sb.WriteString(fmt.Sprintf("Mode:     %s\n", c.ProcessingMode))

	if len(c.SubKeywordsFeatured) > 0 {
		sb.WriteString(fmt.Sprintf("Featured: %s\n", strings.Join(c.SubKeywordsFeatured, ", ")))
	}
	if len(c.SubKeywordsNormal) > 0 {
		sb.WriteString(fmt.Sprintf("Normal:   %s\n", strings.Join(c.SubKeywordsNormal, ", ")))
	}
	if c.FeaturedEntry != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Entry:    %s (%s)\n", c.FeaturedEntry.Name, c.FeaturedEntry.Gender))
		sb.WriteString(fmt.Sprintf("Condition: %s\n", c.FeaturedEntry.Condition))
		if c.GenderMismatch {
			sb.WriteString("⚠ entry targets a different gender\n")
		}
	}

	p.printBox("KEYWORD CLASSIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRequest outputs a summary of the assembled generation request.
func (p *Printer) PrintRequest(req *types.GenerationRequest) {
	if req == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Gender:   %s\n", req.Gender.DisplayName()))
	if req.Season != nil {
		sb.WriteString(fmt.Sprintf("Season:   %s\n", *req.Season))
	}
	sb.WriteString(fmt.Sprintf("Model:    %s\n", req.Model))
	sb.WriteString(fmt.Sprintf("Variant:  %s\n", req.Variant))
	sb.WriteString(fmt.Sprintf("Titles:   %d scraped\n", len(req.CandidateTitles)))

	count := min(len(req.CandidateTitles), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", req.CandidateTitles[i]))
	}
	if len(req.CandidateTitles) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(req.CandidateTitles)-maxItemsToShow))
	}

	p.printBox("GENERATION REQUEST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintItems outputs the first generated items.
func (p *Printer) PrintItems(items []types.GeneratedItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d items:\n\n", len(items)))

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, item.Title))
		sb.WriteString(fmt.Sprintf("    Menu: %s\n", item.Menu))
		if len(item.Hashtags) > 0 {
			sb.WriteString(fmt.Sprintf("    Tags: %s\n", strings.Join(item.Hashtags, " ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more items", len(items)-maxItemsToShow))
	}

	p.printBox("GENERATED COPY", strings.TrimSuffix(sb.String(), "\n"))
}
