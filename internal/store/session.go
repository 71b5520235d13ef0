package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/liminalpurple/stocktag/internal/registry"
)

// SaveSession replaces the persisted session with the given items.
// Binary and preview handles are excluded from the item record; the
// original file bytes are stored separately so handles can be
// regenerated on load.
func (s *Store) SaveSession(ctx context.Context, items []*registry.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files"); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}

	for pos, it := range items {
		record, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshal item %s: %w", it.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, position, record) VALUES (?, ?, ?)",
			it.ID, pos, record,
		); err != nil {
			return fmt.Errorf("save item %s: %w", it.ID, err)
		}
		if len(it.Content) > 0 {
			// Images regenerate their preview from the content on load;
			// videos persist the poster frame separately.
			var preview []byte
			if it.Kind == registry.KindVideo {
				preview = it.Preview
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO files (item_id, data, preview) VALUES (?, ?, ?)",
				it.ID, it.Content, preview,
			); err != nil {
				return fmt.Errorf("save file %s: %w", it.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadSession restores all persisted items in submission order,
// regenerating binary and preview handles from the stored file bytes
func (s *Store) LoadSession(ctx context.Context) ([]*registry.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.record, f.data, f.preview
		FROM items i LEFT JOIN files f ON f.item_id = i.id
		ORDER BY i.position`)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	var items []*registry.Item
	for rows.Next() {
		var record []byte
		var data, preview []byte
		if err := rows.Scan(&record, &data, &preview); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		var it registry.Item
		if err := json.Unmarshal(record, &it); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}

		it.Content = data
		switch {
		case len(preview) > 0:
			it.Preview = preview
		case it.Kind == registry.KindImage && len(data) > 0:
			it.Preview = data
		}
		// An interrupted run must not leave items stuck in processing.
		if it.Status == registry.StatusProcessing {
			it.Status = registry.StatusIdle
		}

		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return items, nil
}

// ClearSession deletes the persisted session entirely
func (s *Store) ClearSession(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files"); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}
