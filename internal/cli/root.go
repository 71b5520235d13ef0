// Package cli provides command-line interface commands for stocktag.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/liminalpurple/stocktag/internal/batch"
	"github.com/liminalpurple/stocktag/internal/config"
	applog "github.com/liminalpurple/stocktag/internal/log"
	"github.com/liminalpurple/stocktag/internal/llm"
	"github.com/liminalpurple/stocktag/internal/registry"
	"github.com/liminalpurple/stocktag/internal/store"
)

// Verbose enables debug logging; wired to the root --verbose flag
var Verbose bool

// appSession bundles everything a command needs to work on the
// persisted tagging session
type appSession struct {
	cfg  *config.Config
	st   *store.Store
	reg  *registry.Registry
	save *store.Autosaver
	log  zerolog.Logger
}

// openSession loads config, opens the session database, and restores
// the registry. The returned close function flushes a final save (or
// clears the persisted copy when the registry is empty) and releases
// the database.
func openSession(ctx context.Context) (*appSession, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.Open(cfg.SessionDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}

	items, err := st.LoadSession(ctx)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}

	reg := registry.New()
	for _, it := range items {
		reg.Add(it)
	}

	logger := applog.New(Verbose)

	s := &appSession{cfg: cfg, st: st, reg: reg, log: logger}

	// Debounced write-through: every registry change schedules a save
	// after a quiet period; an empty registry clears the persisted copy.
	delay := time.Duration(cfg.Batch.AutosaveDelay) * time.Millisecond
	s.save = store.NewAutosaver(delay, func() {
		if err := s.persist(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("autosave failed")
		}
	})
	reg.SetOnChange(s.save.Notify)

	closeFn := func() {
		s.save.Flush()
		s.save.Close()
		if err := st.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close session store")
		}
	}
	return s, closeFn, nil
}

func (s *appSession) persist(ctx context.Context) error {
	items := s.reg.Items()
	if len(items) == 0 {
		return s.st.ClearSession(ctx)
	}
	return s.st.SaveSession(ctx, items)
}

// newProcessor wires the collaborator, ledger, and registry together
func (s *appSession) newProcessor() (*batch.Processor, error) {
	if s.cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("no Anthropic API key configured - run 'stocktag configure' or set ANTHROPIC_API_KEY")
	}
	client := llm.NewClient(s.cfg.Anthropic.APIKey, s.cfg.Anthropic.Model, s.cfg.Anthropic.MaxTokens)
	p := batch.NewProcessor(s.reg, client, s.st, s.cfg.Quota.DailyTokens, s.log)
	p.Pause = time.Duration(s.cfg.Batch.PauseMillis) * time.Millisecond
	return p, nil
}

// resolveItem accepts either a full item ID or a filename and returns
// the matching item
func (s *appSession) resolveItem(ref string) (*registry.Item, error) {
	if it, err := s.reg.Get(ref); err == nil {
		return it, nil
	}
	var match *registry.Item
	for _, it := range s.reg.Items() {
		if it.Filename == ref {
			if match != nil {
				return nil, fmt.Errorf("multiple items named %s - use the item ID", ref)
			}
			match = it
		}
	}
	if match == nil {
		return nil, fmt.Errorf("item not found: %s", ref)
	}
	return match, nil
}
