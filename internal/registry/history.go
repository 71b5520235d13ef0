package registry

import "strings"

// EditIntent is one explicit, exhaustively matchable field edit.
// Each intent merges onto the snapshot at the current history cursor.
type EditIntent interface {
	apply(base Metadata) Metadata
}

// TitleEdit replaces the title
type TitleEdit struct{ Value string }

// DescriptionEdit replaces the description
type DescriptionEdit struct{ Value string }

// KeywordsEdit replaces the comma-joined keyword string
type KeywordsEdit struct{ Value string }

// CategoryEdit replaces the category label
type CategoryEdit struct{ Value string }

// AltTextEdit replaces the alt text
type AltTextEdit struct{ Value string }

// EditorialFieldsEdit replaces the editorial city/region/date/fact and
// re-derives the description prefix in the same snapshot
type EditorialFieldsEdit struct {
	City, Region, Date, Fact string
}

// EditorialToggle switches the editorial flag on or off
type EditorialToggle struct{ On bool }

func (e TitleEdit) apply(m Metadata) Metadata       { m.Title = e.Value; return m }
func (e DescriptionEdit) apply(m Metadata) Metadata { m.Description = e.Value; return m }
func (e KeywordsEdit) apply(m Metadata) Metadata    { m.Keywords = e.Value; return m }
func (e CategoryEdit) apply(m Metadata) Metadata    { m.Category = e.Value; return m }
func (e AltTextEdit) apply(m Metadata) Metadata     { m.AltText = e.Value; return m }

func (e EditorialFieldsEdit) apply(m Metadata) Metadata {
	oldPrefix := EditorialPrefix(m.EditorialCity, m.EditorialRegion, m.EditorialDate, m.EditorialFact)
	body := StripEditorialPrefix(m.Description, oldPrefix)

	m.EditorialCity = e.City
	m.EditorialRegion = e.Region
	m.EditorialDate = e.Date
	m.EditorialFact = e.Fact

	newPrefix := EditorialPrefix(e.City, e.Region, e.Date, e.Fact)
	m.Description = newPrefix + body
	return m
}

func (e EditorialToggle) apply(m Metadata) Metadata {
	prefix := EditorialPrefix(m.EditorialCity, m.EditorialRegion, m.EditorialDate, m.EditorialFact)
	if e.On {
		m.Editorial = true
		if prefix != "" && !strings.HasPrefix(m.Description, prefix) {
			m.Description = prefix + m.Description
		}
		m.Keywords = PrependKeyword(m.Keywords, EditorialKeyword)
		return m
	}

	m.Editorial = false
	m.Description = StripEditorialPrefix(m.Description, prefix)
	m.EditorialCity = ""
	m.EditorialRegion = ""
	m.EditorialDate = ""
	m.EditorialFact = ""
	m.Keywords = RemoveKeywordToken(m.Keywords, EditorialKeyword)
	return m
}

// RecordEdit merges the intent onto the snapshot at the current
// cursor, truncates any forward history, appends the merged snapshot,
// advances the cursor, and applies the result to live state. An item
// that has never been processed gets the merged snapshot as its first
// history entry.
func RecordEdit(it *Item, intent EditIntent) {
	base := it.Current
	if it.HistoryIndex >= 0 && it.HistoryIndex < len(it.History) {
		base = it.History[it.HistoryIndex]
	}

	merged := intent.apply(base)

	if len(it.History) > 0 {
		it.History = it.History[:it.HistoryIndex+1]
	}
	it.History = append(it.History, merged)
	it.HistoryIndex = len(it.History) - 1
	it.Current = merged
}

// InitHistory installs the first generated snapshot after successful
// processing, replacing any prior history
func InitHistory(it *Item, m Metadata) {
	it.History = []Metadata{m}
	it.HistoryIndex = 0
	it.Current = m
	it.Status = StatusSuccess
	it.ErrorMessage = ""
}

// Undo steps the cursor back one snapshot; no-op at the start of
// history
func Undo(it *Item) bool {
	if it.HistoryIndex <= 0 {
		return false
	}
	it.HistoryIndex--
	it.Current = it.History[it.HistoryIndex]
	return true
}

// Redo steps the cursor forward one snapshot; no-op at the end of
// history
func Redo(it *Item) bool {
	if it.HistoryIndex < 0 || it.HistoryIndex >= len(it.History)-1 {
		return false
	}
	it.HistoryIndex++
	it.Current = it.History[it.HistoryIndex]
	return true
}
