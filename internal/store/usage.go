package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// usageKey is the fixed record name for the token ledger
const usageKey = "token_usage"

// dateFormat is the ledger's calendar-day key (local time)
const dateFormat = "2006-01-02"

// TokenUsage returns today's cumulative estimated token count. A
// ledger persisted under a different date reads as zero (daily reset).
func (s *Store) TokenUsage(ctx context.Context) (int64, error) {
	var date string
	var tokens int64
	err := s.db.QueryRowContext(ctx,
		"SELECT date, tokens FROM usage WHERE name = ?", usageKey,
	).Scan(&date, &tokens)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read token usage: %w", err)
	}

	if date != s.now().Format(dateFormat) {
		return 0, nil
	}
	return tokens, nil
}

// AddTokenUsage charges estimated tokens against today's ledger,
// resetting it first if the persisted date is stale
func (s *Store) AddTokenUsage(ctx context.Context, tokens int64) error {
	current, err := s.TokenUsage(ctx)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO usage (name, date, tokens) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET date = excluded.date, tokens = excluded.tokens`,
		usageKey, s.now().Format(dateFormat), current+tokens,
	)
	if err != nil {
		return fmt.Errorf("write token usage: %w", err)
	}
	return nil
}

// RemainingTokens returns how much of the daily quota is left
func (s *Store) RemainingTokens(ctx context.Context, dailyQuota int64) (int64, error) {
	used, err := s.TokenUsage(ctx)
	if err != nil {
		return 0, err
	}
	remaining := dailyQuota - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
