package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/liminalpurple/stocktag/internal/llm"
	"github.com/liminalpurple/stocktag/internal/registry"
)

func regenFixture(t *testing.T, gen *fakeGen) (*registry.Registry, *Processor, string) {
	t.Helper()
	reg := registry.New()
	it := registry.NewItem("beach.jpg", registry.KindImage, "image/jpeg", []byte("jpeg-bytes"), nil)
	registry.InitHistory(it, registry.Metadata{
		Title:       "Original title",
		Description: "Original description",
		Keywords:    "sunset, beach",
		Category:    "Nature",
	})
	reg.Add(it)
	p := NewProcessor(reg, gen, nil, 0, zerolog.Nop())
	p.Pause = 0
	return reg, p, it.ID
}

// TestRegenerateField_RecordsSnapshot verifies the new value lands as
// an undoable history entry
func TestRegenerateField_RecordsSnapshot(t *testing.T) {
	gen := &fakeGen{fieldValue: "Fresh new title"}
	reg, p, id := regenFixture(t, gen)

	if err := p.RegenerateField(context.Background(), id, llm.FieldTitle); err != nil {
		t.Fatalf("Failed to regenerate: %v", err)
	}

	it, _ := reg.Get(id)
	if it.Current.Title != "Fresh new title" {
		t.Errorf("Expected regenerated title, got %q", it.Current.Title)
	}
	if len(it.History) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(it.History))
	}
	if !registry.Undo(it) || it.Current.Title != "Original title" {
		t.Errorf("Expected regeneration to be undoable, got %q", it.Current.Title)
	}
}

// TestRegenerateField_RejectsRestored verifies restored items are a
// no-op with a user-visible message
func TestRegenerateField_RejectsRestored(t *testing.T) {
	gen := &fakeGen{fieldValue: "should never be used"}
	reg, p, id := regenFixture(t, gen)

	it, _ := reg.Get(id)
	restored := it.Clone()
	restored.Restored = true
	_ = reg.Replace(restored)

	err := p.RegenerateField(context.Background(), id, llm.FieldTitle)
	if err == nil {
		t.Fatal("Expected error for restored item")
	}

	got, _ := reg.Get(id)
	if got.Current.Title != "Original title" {
		t.Errorf("Restored item was modified: %q", got.Current.Title)
	}
}

// TestRegenerateField_BusyFlagCleared verifies the flag never stays
// stuck, including on failure
func TestRegenerateField_BusyFlagCleared(t *testing.T) {
	gen := &fakeGen{fieldErr: errors.New("service down")}
	reg, p, id := regenFixture(t, gen)

	if err := p.RegenerateField(context.Background(), id, llm.FieldDescription); err == nil {
		t.Fatal("Expected error from failing collaborator")
	}

	it, _ := reg.Get(id)
	if it.Busy.Description {
		t.Error("Busy flag stuck after failure")
	}
}

// TestRegenerateField_BusyRejectsConcurrent verifies a second request
// for the same field is rejected while one is in flight
func TestRegenerateField_BusyRejectsConcurrent(t *testing.T) {
	gen := &fakeGen{fieldValue: "x"}
	reg, p, id := regenFixture(t, gen)

	it, _ := reg.Get(id)
	busy := it.Clone()
	busy.Busy.Keywords = true
	_ = reg.Replace(busy)

	if err := p.RegenerateField(context.Background(), id, llm.FieldKeywords); err == nil {
		t.Error("Expected rejection while keywords regeneration is busy")
	}
}

// TestRegenerateField_KeywordsEditorialPrepend verifies the editorial
// token is re-prepended when the flag is on
func TestRegenerateField_KeywordsEditorialPrepend(t *testing.T) {
	gen := &fakeGen{fieldValue: "crowd, city, street"}
	reg, p, id := regenFixture(t, gen)

	it, _ := reg.Get(id)
	editorial := it.Clone()
	registry.RecordEdit(editorial, registry.EditorialToggle{On: true})
	_ = reg.Replace(editorial)

	if err := p.RegenerateField(context.Background(), id, llm.FieldKeywords); err != nil {
		t.Fatalf("Failed to regenerate keywords: %v", err)
	}

	got, _ := reg.Get(id)
	if got.Current.Keywords != "editorial, crowd, city, street" {
		t.Errorf("Expected editorial prepended to regenerated keywords, got %q", got.Current.Keywords)
	}
}

// TestRegenerateField_UsesCurrentEditsAsContext verifies the field
// context reflects edited values, not the original AI output
func TestRegenerateField_UsesCurrentEditsAsContext(t *testing.T) {
	var captured llm.FieldContext
	gen := &fakeGen{fieldValue: "whatever"}
	reg, p, id := regenFixture(t, gen)

	it, _ := reg.Get(id)
	edited := it.Clone()
	registry.RecordEdit(edited, registry.TitleEdit{Value: "User edited title"})
	_ = reg.Replace(edited)

	// Wrap the fake to capture the context.
	p.gen = captureGen{fakeGen: gen, captured: &captured}
	if err := p.RegenerateField(context.Background(), id, llm.FieldDescription); err != nil {
		t.Fatalf("Failed to regenerate: %v", err)
	}

	if captured.Title != "User edited title" {
		t.Errorf("Expected edited title in context, got %q", captured.Title)
	}
}

type captureGen struct {
	*fakeGen
	captured *llm.FieldContext
}

func (c captureGen) GenerateField(ctx context.Context, field llm.Field, imageData []byte, mimeType string, fctx llm.FieldContext) (string, int64, error) {
	*c.captured = fctx
	return c.fakeGen.GenerateField(ctx, field, imageData, mimeType, fctx)
}

// TestAnalyzeItem verifies deep analysis lands on the item and clears
// the analyzing flag
func TestAnalyzeItem(t *testing.T) {
	gen := &fakeGen{analysis: &llm.AnalysisResult{
		Objects:  []string{"boat", "sea"},
		Concepts: []string{"calm"},
		Colors:   []string{"blue"},
		Tokens:   50,
	}}
	reg, p, id := regenFixture(t, gen)

	if err := p.AnalyzeItem(context.Background(), id); err != nil {
		t.Fatalf("Failed to analyze: %v", err)
	}

	it, _ := reg.Get(id)
	if it.Analysis == nil {
		t.Fatal("Expected analysis result on item")
	}
	if len(it.Analysis.Objects) != 2 || it.Analysis.Objects[0] != "boat" {
		t.Errorf("Unexpected objects: %v", it.Analysis.Objects)
	}
	if it.Busy.Analyzing {
		t.Error("Analyzing flag stuck after completion")
	}
}

// TestAnalyzeItem_Failure verifies the flag clears when analysis fails
func TestAnalyzeItem_Failure(t *testing.T) {
	gen := &fakeGen{}
	reg, p, id := regenFixture(t, gen)

	if err := p.AnalyzeItem(context.Background(), id); err == nil {
		t.Fatal("Expected error from unscripted analysis")
	}

	it, _ := reg.Get(id)
	if it.Busy.Analyzing {
		t.Error("Analyzing flag stuck after failure")
	}
}
