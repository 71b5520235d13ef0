package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Categories is the fixed list the model must choose from exactly
var Categories = []string{
	"Abstract",
	"Animals",
	"Architecture",
	"Backgrounds",
	"Beauty",
	"Business",
	"Celebrities",
	"Education",
	"Fashion",
	"Food",
	"Healthcare",
	"Holidays",
	"Industrial",
	"Interiors",
	"Landscapes",
	"Lifestyle",
	"Nature",
	"Objects",
	"Outdoor",
	"People",
	"Religion",
	"Science",
	"Signs",
	"Sports",
	"Technology",
	"Transportation",
}

// Field names one regenerable metadata field
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldAltText     Field = "alt"
	FieldKeywords    Field = "keywords"
)

// BatchContext carries rolling anti-duplication context across a batch
type BatchContext struct {
	PreviousTitles   []string
	PreviousKeywords []string
}

// FieldContext carries the item's current edited values when
// regenerating a single field
type FieldContext struct {
	Title       string
	Description string
	Keywords    string
	AltText     string
}

// Result is the collaborator's full metadata output for one item
type Result struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords"`
	Category        string   `json:"category"`
	Suggestions     []string `json:"suggestions,omitempty"`
	IsEditorial     bool     `json:"is_editorial"`
	EditorialCity   string   `json:"editorial_city,omitempty"`
	EditorialRegion string   `json:"editorial_region,omitempty"`
	EditorialDate   string   `json:"editorial_date,omitempty"`
	EditorialFact   string   `json:"editorial_fact,omitempty"`

	Tokens int64 `json:"-"` // estimated token cost of the call
}

// AnalysisResult holds categorized keyword suggestion lists
type AnalysisResult struct {
	Objects  []string `json:"objects"`
	Concepts []string `json:"concepts"`
	Colors   []string `json:"colors"`
	Style    []string `json:"style,omitempty"`
	Lighting []string `json:"lighting,omitempty"`

	Tokens int64 `json:"-"`
}

const metadataPromptTemplate = `You are a stock media metadata expert. Analyze this %s and produce metadata for a stock agency submission.

Output ONLY a JSON object with these fields, no markdown and no commentary:
{
  "title": "50-70 character commercial title, no filler words",
  "description": "one factual sentence, 100-200 characters",
  "keywords": ["30-45 single-word or short-phrase keywords, most relevant first"],
  "category": "exactly one of: %s",
  "suggestions": ["up to 5 alternative title ideas"],
  "is_editorial": false,
  "editorial_city": "", "editorial_region": "", "editorial_date": "", "editorial_fact": ""
}

Mark is_editorial true only for recognizable people, brands, logos, or newsworthy events; then fill the editorial fields (date like "March 3, 2026", fact one neutral sentence).%s`

const fieldPromptTemplate = `You are a stock media metadata expert. %s

Current metadata for context (use it, do not repeat it verbatim):
Title: %s
Description: %s
Keywords: %s

Output ONLY the %s - no quotes, no markdown, no commentary.`

const analyzePrompt = `Analyze this image for stock keyword research. Output ONLY a JSON object:
{
  "objects": ["concrete things visible"],
  "concepts": ["abstract ideas and moods it conveys"],
  "colors": ["dominant colors"],
  "style": ["photographic or artistic style terms"],
  "lighting": ["lighting characteristics"]
}
5-10 entries per list, lowercase.`

// GenerateMetadata produces the full metadata set for one media file.
// The batch context biases the model away from titles and keywords
// already used earlier in the batch.
func (c *Client) GenerateMetadata(ctx context.Context, imageData []byte, mimeType string, isVideo bool, bctx *BatchContext) (*Result, error) {
	kind := "photo"
	if isVideo {
		kind = "video (represented by this frame)"
	}

	avoid := ""
	if bctx != nil && (len(bctx.PreviousTitles) > 0 || len(bctx.PreviousKeywords) > 0) {
		avoid = fmt.Sprintf("\n\nAlready used in this batch - produce distinct wording:\nTitles: %s\nOverused keywords: %s",
			strings.Join(bctx.PreviousTitles, "; "),
			strings.Join(bctx.PreviousKeywords, ", "))
	}

	prompt := fmt.Sprintf(metadataPromptTemplate, kind, strings.Join(Categories, ", "), avoid)

	text, tokens, err := c.callText(ctx, imageData, mimeType, prompt)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(extractJSON(text), &result); err != nil {
		return nil, NewError(KindUnknown, fmt.Errorf("failed to parse metadata response: %w", err))
	}
	result.Category = canonicalCategory(result.Category)
	result.Tokens = tokens

	return &result, nil
}

// GenerateField regenerates exactly one field using the item's current
// edited values as context
func (c *Client) GenerateField(ctx context.Context, field Field, imageData []byte, mimeType string, fctx FieldContext) (string, int64, error) {
	var task, want string
	switch field {
	case FieldTitle:
		task = "Write a fresh 50-70 character commercial title for this image."
		want = "title"
	case FieldDescription:
		task = "Write a fresh one-sentence factual description (100-200 characters) for this image."
		want = "description"
	case FieldAltText:
		task = "Write concise accessibility alt text (max 125 characters) describing what is visible in this image."
		want = "alt text"
	case FieldKeywords:
		task = "Produce 30-45 comma-separated stock keywords for this image, most relevant first."
		want = "comma-separated keyword list"
	default:
		return "", 0, NewError(KindUnknown, fmt.Errorf("unknown field: %s", field))
	}

	prompt := fmt.Sprintf(fieldPromptTemplate, task, fctx.Title, fctx.Description, fctx.Keywords, want)

	text, tokens, err := c.callText(ctx, imageData, mimeType, prompt)
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(text), tokens, nil
}

// Analyze performs deep keyword-suggestion analysis on one image
func (c *Client) Analyze(ctx context.Context, imageData []byte, mimeType string) (*AnalysisResult, error) {
	text, tokens, err := c.callText(ctx, imageData, mimeType, analyzePrompt)
	if err != nil {
		return nil, err
	}

	var result AnalysisResult
	if err := json.Unmarshal(extractJSON(text), &result); err != nil {
		return nil, NewError(KindUnknown, fmt.Errorf("failed to parse analysis response: %w", err))
	}
	result.Tokens = tokens

	return &result, nil
}

// Translate translates text into the target language
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, int64, error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, nil
	}
	prompt := fmt.Sprintf("Translate the following stock media metadata text into %s. Output ONLY the translation:\n\n%s", targetLanguage, text)
	translated, tokens, err := c.callPlainText(ctx, prompt)
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(translated), tokens, nil
}

// extractJSON cuts the first JSON object out of a response that may be
// wrapped in code fences or prose
func extractJSON(text string) []byte {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return []byte(text)
	}
	return []byte(text[start : end+1])
}

// canonicalCategory snaps the model's category to the fixed list,
// tolerating case drift; unknown labels pass through verbatim
func canonicalCategory(category string) string {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(category), c) {
			return c
		}
	}
	return strings.TrimSpace(category)
}
