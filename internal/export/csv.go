// Package export renders generated items for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/salon-copy/internal/types"
)

// BOM makes spreadsheet tools detect UTF-8.
const BOM = "\ufeff"

// ContentType is the media type of the CSV export.
const ContentType = "text/csv; charset=utf-8"

// Header is the CSV header row.
var Header = []string{"タイトル", "メニュー", "コメント", "ハッシュタグ"}

// WriteCSV writes items as CSV, prefixed with a UTF-8 BOM. Hashtags are joined
// with a single space.
func WriteCSV(w io.Writer, items []types.GeneratedItem) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, item := range items {
		row := []string{item.Title, item.Menu, item.Comment, strings.Join(item.Hashtags, " ")}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the export as bytes.
func CSV(items []types.GeneratedItem) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for a keyword export.
func Filename(keyword string) string {
	keyword = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|', '\n', '\r', '\t':
			return '_'
		}
		return r
	}, strings.TrimSpace(keyword))
	if keyword == "" {
		return "templates.csv"
	}
	return "templates_" + keyword + ".csv"
}
