// Package batch orchestrates metadata generation: sequential batch
// processing with rolling anti-duplication context, per-field
// regeneration with advisory busy flags, and deep analysis.
package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/liminalpurple/stocktag/internal/llm"
	"github.com/liminalpurple/stocktag/internal/media"
	"github.com/liminalpurple/stocktag/internal/registry"
)

// Generator is the metadata-generation collaborator
type Generator interface {
	GenerateMetadata(ctx context.Context, imageData []byte, mimeType string, isVideo bool, bctx *llm.BatchContext) (*llm.Result, error)
	GenerateField(ctx context.Context, field llm.Field, imageData []byte, mimeType string, fctx llm.FieldContext) (string, int64, error)
	Analyze(ctx context.Context, imageData []byte, mimeType string) (*llm.AnalysisResult, error)
}

// Ledger charges estimated token costs against the daily quota
type Ledger interface {
	AddTokenUsage(ctx context.Context, tokens int64) error
	RemainingTokens(ctx context.Context, dailyQuota int64) (int64, error)
}

// Summary reports the outcome of one batch run
type Summary struct {
	Processed int
	Failed    int
	Skipped   int
	Cancelled bool
}

// Processor walks newly added items one at a time so later generations
// can be biased away from earlier ones
type Processor struct {
	reg        *registry.Registry
	gen        Generator
	ledger     Ledger // nil disables quota enforcement
	dailyQuota int64
	log        zerolog.Logger

	// Pause is the yield between items; it also gives cancellation a
	// prompt point to take effect.
	Pause time.Duration
}

// NewProcessor creates a batch processor
func NewProcessor(reg *registry.Registry, gen Generator, ledger Ledger, dailyQuota int64, logger zerolog.Logger) *Processor {
	return &Processor{
		reg:        reg,
		gen:        gen,
		ledger:     ledger,
		dailyQuota: dailyQuota,
		log:        logger,
		Pause:      100 * time.Millisecond,
	}
}

// ProcessBatch processes the given items strictly in order. One item's
// failure never aborts the rest; cancellation is checked before each
// item, so an item already in flight completes or fails normally.
func (p *Processor) ProcessBatch(ctx context.Context, ids []string) Summary {
	titles, keywords := p.seedContext()

	var sum Summary
	for i, id := range ids {
		if ctx.Err() != nil {
			sum.Cancelled = true
			p.log.Info().Int("remaining", len(ids)-i).Msg("batch cancelled")
			return sum
		}
		if i > 0 {
			if !p.pause(ctx) {
				sum.Cancelled = true
				return sum
			}
		}

		it, err := p.reg.Get(id)
		if err != nil {
			p.log.Warn().Str("id", id).Msg("batch item vanished, skipping")
			sum.Skipped++
			continue
		}
		if it.Processed() {
			sum.Skipped++
			continue
		}
		if it.Restored {
			// No source pixels; nothing to generate.
			sum.Skipped++
			continue
		}

		if quotaErr := p.checkQuota(ctx); quotaErr != nil {
			p.failItem(it, quotaErr)
			sum.Failed++
			p.log.Warn().Str("id", id).Msg("daily quota exhausted, stopping batch")
			return sum
		}

		processing := it.Clone()
		processing.Status = registry.StatusProcessing
		processing.ErrorMessage = ""
		_ = p.reg.Replace(processing)

		result, err := p.generateOne(ctx, it, titles, keywords)
		if err != nil {
			serr := llm.Normalize(err)
			p.failItem(it, serr)
			sum.Failed++
			p.log.Warn().Str("id", id).Str("file", it.Filename).Err(serr).Msg("item failed")
			continue
		}

		done := it.Clone()
		registry.InitHistory(done, resultMetadata(result))
		done.Suggestions = result.Suggestions
		_ = p.reg.Replace(done)
		sum.Processed++
		p.log.Info().Str("id", id).Str("file", it.Filename).Str("title", result.Title).Msg("item processed")

		// Feed the rolling context so later items avoid duplication.
		titles = append(titles, result.Title)
		for _, kw := range result.Keywords {
			keywords[strings.ToLower(strings.TrimSpace(kw))] = true
		}
	}

	return sum
}

// seedContext gathers titles and lower-cased keywords from all
// already-successful items
func (p *Processor) seedContext() ([]string, map[string]bool) {
	var titles []string
	keywords := make(map[string]bool)
	for _, it := range p.reg.Successful() {
		titles = append(titles, it.Current.Title)
		for _, kw := range registry.SplitKeywords(it.Current.Keywords) {
			keywords[strings.ToLower(kw)] = true
		}
	}
	return titles, keywords
}

func (p *Processor) generateOne(ctx context.Context, it *registry.Item, titles []string, keywords map[string]bool) (*llm.Result, error) {
	frame, mimeType, err := frameFor(it)
	if err != nil {
		return nil, err
	}

	bctx := &llm.BatchContext{
		PreviousTitles:   titles,
		PreviousKeywords: sortedKeys(keywords),
	}

	result, err := p.gen.GenerateMetadata(ctx, frame, mimeType, it.Kind == registry.KindVideo, bctx)
	if err != nil {
		return nil, err
	}

	p.charge(ctx, result.Tokens)
	return result, nil
}

// resultMetadata converts a collaborator result into the item's first
// history snapshot, prepending the editorial keyword when flagged
func resultMetadata(result *llm.Result) registry.Metadata {
	kw := registry.JoinKeywords(result.Keywords)
	if result.IsEditorial && !registry.HasKeywordToken(kw, registry.EditorialKeyword) {
		kw = registry.PrependKeyword(kw, registry.EditorialKeyword)
	}
	return registry.Metadata{
		Title:           result.Title,
		Description:     result.Description,
		Keywords:        kw,
		Category:        result.Category,
		Editorial:       result.IsEditorial,
		EditorialCity:   result.EditorialCity,
		EditorialRegion: result.EditorialRegion,
		EditorialDate:   result.EditorialDate,
		EditorialFact:   result.EditorialFact,
	}
}

func (p *Processor) failItem(it *registry.Item, serr *llm.ServiceError) {
	failed := it.Clone()
	failed.Status = registry.StatusError
	failed.ErrorMessage = serr.UserMessage()
	_ = p.reg.Replace(failed)
}

// checkQuota returns a quota-exceeded error once the daily allowance
// is used up; never retried
func (p *Processor) checkQuota(ctx context.Context) *llm.ServiceError {
	if p.ledger == nil || p.dailyQuota <= 0 {
		return nil
	}
	remaining, err := p.ledger.RemainingTokens(ctx, p.dailyQuota)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to read token ledger")
		return nil
	}
	if remaining <= 0 {
		return llm.NewError(llm.KindQuotaExceeded, fmt.Errorf("daily quota of %d tokens used up", p.dailyQuota))
	}
	return nil
}

func (p *Processor) charge(ctx context.Context, tokens int64) {
	if p.ledger == nil || tokens <= 0 {
		return
	}
	if err := p.ledger.AddTokenUsage(ctx, tokens); err != nil {
		p.log.Warn().Err(err).Msg("failed to charge token ledger")
	}
}

// pause yields between items; returns false when cancelled
func (p *Processor) pause(ctx context.Context) bool {
	if p.Pause <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.Pause):
		return true
	}
}

// frameFor picks the bytes sent to the collaborator: the original
// content for images, the poster frame for videos
func frameFor(it *registry.Item) ([]byte, string, error) {
	if it.Kind == registry.KindVideo {
		if len(it.Preview) == 0 {
			return nil, "", llm.NewError(llm.KindVideoDecodeFailed, fmt.Errorf("no poster frame for %s", it.Filename))
		}
		return it.Preview, media.DetectMimeType(it.Preview), nil
	}
	if len(it.Content) == 0 {
		return nil, "", llm.NewError(llm.KindUnsupportedFormat, fmt.Errorf("no content for %s", it.Filename))
	}
	return it.Content, it.MimeType, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Deterministic prompt ordering keeps generations reproducible.
	sort.Strings(out)
	return out
}
