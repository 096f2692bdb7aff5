package catalog

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is what one catalog result page yields.
type Page struct {
	Titles  []string
	NextURL string
}

// ParsePage extracts the style titles containing keyword (case-insensitive)
// and the next-page link, if any.
func ParsePage(html, keyword string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(keyword))
	page := &Page{}
	doc.Find(StyleTitleSelector).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		if title == "" {
			return
		}
		if needle == "" || strings.Contains(strings.ToLower(title), needle) {
			page.Titles = append(page.Titles, title)
		}
	})

	if href, ok := doc.Find(NextPageSelector).First().Attr("href"); ok {
		page.NextURL = strings.TrimSpace(href)
	}

	return page, nil
}

// HasStyleList reports whether html contains the style list container.
func HasStyleList(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(StyleListSelector).Length() > 0
}
