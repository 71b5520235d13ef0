// Package export serializes the successful subset of the registry
// into agency-ready formats: CSV, a plain keyword list, and a
// human-readable clipboard block. All formatters are pure functions
// over the current item state.
package export

import (
	"strings"

	"github.com/liminalpurple/stocktag/internal/registry"
)

// csvHeader is the fixed column order expected by agency upload tools
var csvHeader = []string{"Filename", "Description", "Keywords", "Categories", "Editorial", "Mature content", "illustration"}

// categoryDisplayNames translates internal category labels to the
// display names agency CSVs expect; unknown labels pass through
// verbatim
var categoryDisplayNames = map[string]string{
	"Animals":      "Animals/Wildlife",
	"Architecture": "Buildings/Landmarks",
	"Backgrounds":  "Backgrounds/Textures",
	"Beauty":       "Beauty/Fashion",
	"Business":     "Business/Finance",
	"Food":         "Food and drink",
	"Healthcare":   "Healthcare/Medical",
	"Outdoor":      "Parks/Outdoor",
	"Signs":        "Signs/Symbols",
	"Sports":       "Sports/Recreation",
}

// CSV renders successful items as CSV with a UTF-8 byte-order marker
// for spreadsheet-tool compatibility. Every field is double-quoted
// with internal quotes doubled.
func CSV(items []*registry.Item) []byte {
	var b strings.Builder
	b.WriteString("\ufeff")
	writeRow(&b, csvHeader)

	for _, it := range items {
		if it.Status != registry.StatusSuccess {
			continue
		}
		editorial := "No"
		if it.Current.Editorial {
			editorial = "Yes"
		}
		writeRow(&b, []string{
			it.Filename,
			it.Current.Description,
			it.Current.Keywords,
			displayCategory(it.Current.Category),
			editorial,
			"No", // Mature content: no authoring surface
			"No", // illustration: no authoring surface
		})
	}

	return []byte(b.String())
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

func displayCategory(category string) string {
	if display, ok := categoryDisplayNames[category]; ok {
		return display
	}
	return category
}
