package export

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/liminalpurple/stocktag/internal/registry"
)

// divider separates items in the copy-all block
const divider = "----------------------------------------"

// KeywordList renders the newline-joined raw keyword strings of
// successful items with non-empty keywords
func KeywordList(items []*registry.Item) string {
	var lines []string
	for _, it := range items {
		if it.Status != registry.StatusSuccess {
			continue
		}
		if strings.TrimSpace(it.Current.Keywords) == "" {
			continue
		}
		lines = append(lines, it.Current.Keywords)
	}
	return strings.Join(lines, "\n")
}

// CopyAllText renders the human-readable per-item block used by the
// copy-all export
func CopyAllText(items []*registry.Item) string {
	var blocks []string
	for _, it := range items {
		if it.Status != registry.StatusSuccess {
			continue
		}
		var b strings.Builder
		b.WriteString("File: " + it.Filename + "\n")
		b.WriteString("Title: " + it.Current.Title + "\n")
		b.WriteString("Description: " + it.Current.Description + "\n")
		b.WriteString("Keywords: " + it.Current.Keywords + "\n")
		b.WriteString("Category: " + it.Current.Category)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n"+divider+"\n")
}

// CopyAll writes the copy-all block to the system clipboard
func CopyAll(items []*registry.Item) error {
	return clipboard.WriteAll(CopyAllText(items))
}
