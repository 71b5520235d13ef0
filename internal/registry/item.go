// Package registry holds the in-memory collection of uploaded media
// items and their editable metadata, including per-item undo/redo
// history. All mutations replace whole items so readers always see a
// consistent snapshot.
package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the media type of an item
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Status tracks an item's position in the processing lifecycle
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Metadata is one editable snapshot of an item's generated fields
type Metadata struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Keywords        string `json:"keywords"` // comma-joined
	Category        string `json:"category"`
	AltText         string `json:"alt_text"`
	Editorial       bool   `json:"editorial"`
	EditorialCity   string `json:"editorial_city,omitempty"`
	EditorialRegion string `json:"editorial_region,omitempty"`
	EditorialDate   string `json:"editorial_date,omitempty"`
	EditorialFact   string `json:"editorial_fact,omitempty"`
}

// Analysis holds categorized keyword suggestions from deep analysis
type Analysis struct {
	Objects  []string `json:"objects,omitempty"`
	Concepts []string `json:"concepts,omitempty"`
	Colors   []string `json:"colors,omitempty"`
	Style    []string `json:"style,omitempty"`
	Lighting []string `json:"lighting,omitempty"`
}

// BusyFlags marks which per-field regenerations are in flight.
// Transient: never persisted.
type BusyFlags struct {
	Title       bool `json:"-"`
	Description bool `json:"-"`
	AltText     bool `json:"-"`
	Keywords    bool `json:"-"`
	Analyzing   bool `json:"-"`
}

// Item represents one uploaded media file and its derived state
type Item struct {
	ID       string `json:"id"`       // filename + timestamp + random salt
	Filename string `json:"filename"` // original filename
	Kind     Kind   `json:"kind"`     // image or video
	MimeType string `json:"mime_type"`

	Content []byte `json:"-"` // raw binary handle
	Preview []byte `json:"-"` // renderable preview handle

	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	Current      Metadata   `json:"current"`
	History      []Metadata `json:"history"`
	HistoryIndex int        `json:"history_index"` // -1 iff History is empty

	Busy        BusyFlags `json:"-"`
	Analysis    *Analysis `json:"analysis,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"` // alternative titles from generation

	// Restored marks an item reconstructed from an imported archive
	// without its original binary; AI regeneration is disabled.
	Restored bool      `json:"restored,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// NewItem creates an idle item for an uploaded file
func NewItem(filename string, kind Kind, mimeType string, content, preview []byte) *Item {
	now := time.Now()
	return &Item{
		ID:           newItemID(filename, now),
		Filename:     filename,
		Kind:         kind,
		MimeType:     mimeType,
		Content:      content,
		Preview:      preview,
		Status:       StatusIdle,
		HistoryIndex: -1,
		AddedAt:      now,
	}
}

// newItemID derives an opaque unique ID from the filename, the upload
// timestamp, and a random salt
func newItemID(filename string, at time.Time) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, filename)
	salt := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%d-%s", base, at.UnixMilli(), salt)
}

// Processed reports whether the item has completed generation
func (it *Item) Processed() bool {
	return it.Status == StatusSuccess
}

// CanRegenerate reports whether AI calls are allowed for this item
func (it *Item) CanRegenerate() bool {
	return !it.Restored && len(it.Content) > 0
}

// Clone returns a deep copy of the item so callers can mutate it and
// swap it back via Registry.Replace without exposing partial writes
func (it *Item) Clone() *Item {
	cp := *it
	cp.History = make([]Metadata, len(it.History))
	copy(cp.History, it.History)
	if it.Analysis != nil {
		a := *it.Analysis
		cp.Analysis = &a
	}
	if it.Suggestions != nil {
		cp.Suggestions = append([]string(nil), it.Suggestions...)
	}
	return &cp
}
