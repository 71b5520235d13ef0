package batch

import (
	"context"
	"fmt"

	"github.com/liminalpurple/stocktag/internal/llm"
	"github.com/liminalpurple/stocktag/internal/registry"
)

// RegenerateField regenerates exactly one field for one item using the
// item's current edited values as context. The new value is recorded
// as an undoable history snapshot, not an in-place overwrite.
func (p *Processor) RegenerateField(ctx context.Context, id string, field llm.Field) error {
	it, err := p.reg.Get(id)
	if err != nil {
		return err
	}
	if !it.CanRegenerate() {
		return fmt.Errorf("cannot regenerate %s: original file is not available for restored items", it.Filename)
	}
	if fieldBusy(it.Busy, field) {
		return fmt.Errorf("%s regeneration already in progress for %s", field, it.Filename)
	}

	p.setFieldBusy(id, field, true)
	// The flag must never remain stuck, whatever path we exit through.
	defer p.setFieldBusy(id, field, false)

	frame, mimeType, err := frameFor(it)
	if err != nil {
		return llm.Normalize(err)
	}

	fctx := llm.FieldContext{
		Title:       it.Current.Title,
		Description: it.Current.Description,
		Keywords:    it.Current.Keywords,
		AltText:     it.Current.AltText,
	}

	value, tokens, err := p.gen.GenerateField(ctx, field, frame, mimeType, fctx)
	if err != nil {
		return llm.Normalize(err)
	}
	p.charge(ctx, tokens)

	fresh, err := p.reg.Get(id)
	if err != nil {
		return err
	}
	updated := fresh.Clone()

	var intent registry.EditIntent
	switch field {
	case llm.FieldTitle:
		intent = registry.TitleEdit{Value: value}
	case llm.FieldDescription:
		intent = registry.DescriptionEdit{Value: value}
	case llm.FieldAltText:
		intent = registry.AltTextEdit{Value: value}
	case llm.FieldKeywords:
		if updated.Current.Editorial && !registry.HasKeywordToken(value, registry.EditorialKeyword) {
			value = registry.PrependKeyword(value, registry.EditorialKeyword)
		}
		intent = registry.KeywordsEdit{Value: value}
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	registry.RecordEdit(updated, intent)
	return p.reg.Replace(updated)
}

// AnalyzeItem runs deep keyword-suggestion analysis for one item
func (p *Processor) AnalyzeItem(ctx context.Context, id string) error {
	it, err := p.reg.Get(id)
	if err != nil {
		return err
	}
	if !it.CanRegenerate() {
		return fmt.Errorf("cannot analyze %s: original file is not available for restored items", it.Filename)
	}
	if it.Busy.Analyzing {
		return fmt.Errorf("analysis already in progress for %s", it.Filename)
	}

	p.setAnalyzing(id, true)
	defer p.setAnalyzing(id, false)

	frame, mimeType, err := frameFor(it)
	if err != nil {
		return llm.Normalize(err)
	}

	result, err := p.gen.Analyze(ctx, frame, mimeType)
	if err != nil {
		return llm.Normalize(err)
	}
	p.charge(ctx, result.Tokens)

	fresh, err := p.reg.Get(id)
	if err != nil {
		return err
	}
	updated := fresh.Clone()
	updated.Analysis = &registry.Analysis{
		Objects:  result.Objects,
		Concepts: result.Concepts,
		Colors:   result.Colors,
		Style:    result.Style,
		Lighting: result.Lighting,
	}
	return p.reg.Replace(updated)
}

func (p *Processor) setFieldBusy(id string, field llm.Field, busy bool) {
	it, err := p.reg.Get(id)
	if err != nil {
		return
	}
	updated := it.Clone()
	switch field {
	case llm.FieldTitle:
		updated.Busy.Title = busy
	case llm.FieldDescription:
		updated.Busy.Description = busy
	case llm.FieldAltText:
		updated.Busy.AltText = busy
	case llm.FieldKeywords:
		updated.Busy.Keywords = busy
	}
	_ = p.reg.Replace(updated)
}

func (p *Processor) setAnalyzing(id string, busy bool) {
	it, err := p.reg.Get(id)
	if err != nil {
		return
	}
	updated := it.Clone()
	updated.Busy.Analyzing = busy
	_ = p.reg.Replace(updated)
}

func fieldBusy(b registry.BusyFlags, field llm.Field) bool {
	switch field {
	case llm.FieldTitle:
		return b.Title
	case llm.FieldDescription:
		return b.Description
	case llm.FieldAltText:
		return b.AltText
	case llm.FieldKeywords:
		return b.Keywords
	default:
		return false
	}
}
