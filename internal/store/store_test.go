package store

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/liminalpurple/stocktag/internal/registry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func successItem(t *testing.T, filename string) *registry.Item {
	t.Helper()
	it := registry.NewItem(filename, registry.KindImage, "image/jpeg", []byte("jpeg-bytes-"+filename), nil)
	registry.InitHistory(it, registry.Metadata{
		Title:    "Title for " + filename,
		Keywords: "one, two, three",
		Category: "Nature",
	})
	return it
}

// TestSaveLoadSession_RoundTrip verifies items survive a save/load
// cycle with handles regenerated from stored file bytes
func TestSaveLoadSession_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := successItem(t, "a.jpg")
	b := successItem(t, "b.jpg")
	registry.RecordEdit(b, registry.TitleEdit{Value: "Edited title"})

	if err := s.SaveSession(ctx, []*registry.Item{a, b}); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	items, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	if items[0].ID != a.ID || items[1].ID != b.ID {
		t.Error("Submission order not preserved")
	}
	if string(items[0].Content) != "jpeg-bytes-a.jpg" {
		t.Errorf("File bytes not restored: %q", items[0].Content)
	}
	if len(items[0].Preview) == 0 {
		t.Error("Preview handle not regenerated for image item")
	}
	if items[1].Current.Title != "Edited title" {
		t.Errorf("Edited state lost: %q", items[1].Current.Title)
	}
	if len(items[1].History) != 2 || items[1].HistoryIndex != 1 {
		t.Errorf("History lost: %d snapshots, cursor %d", len(items[1].History), items[1].HistoryIndex)
	}
}

// TestSaveLoadSession_VideoPosterFrame verifies a video's poster frame
// survives the round trip separately from the video bytes
func TestSaveLoadSession_VideoPosterFrame(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v := registry.NewItem("clip.mp4", registry.KindVideo, "video/mp4", []byte("mp4-bytes"), []byte("poster-jpeg"))

	if err := s.SaveSession(ctx, []*registry.Item{v}); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	items, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if string(items[0].Content) != "mp4-bytes" {
		t.Errorf("Video bytes not restored: %q", items[0].Content)
	}
	if string(items[0].Preview) != "poster-jpeg" {
		t.Errorf("Poster frame not restored: %q", items[0].Preview)
	}
}

// TestSaveSession_Replaces verifies saving overwrites, not appends
func TestSaveSession_Replaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveSession(ctx, []*registry.Item{successItem(t, "a.jpg"), successItem(t, "b.jpg")}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := s.SaveSession(ctx, []*registry.Item{successItem(t, "c.jpg")}); err != nil {
		t.Fatalf("Failed to re-save: %v", err)
	}

	items, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 item after replacement save, got %d", len(items))
	}
}

// TestLoadSession_ProcessingReverts verifies an item persisted as
// processing comes back idle
func TestLoadSession_ProcessingReverts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	it := registry.NewItem("stuck.jpg", registry.KindImage, "image/jpeg", []byte("x"), nil)
	it.Status = registry.StatusProcessing
	if err := s.SaveSession(ctx, []*registry.Item{it}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	items, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if items[0].Status != registry.StatusIdle {
		t.Errorf("Expected idle after reload, got %s", items[0].Status)
	}
}

// TestClearSession verifies the persisted copy is removed
func TestClearSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveSession(ctx, []*registry.Item{successItem(t, "a.jpg")}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	items, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty session after clear, got %d items", len(items))
	}
}

// TestTokenUsage_Accumulates verifies charges add up within one day
func TestTokenUsage_Accumulates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.AddTokenUsage(ctx, 100); err != nil {
		t.Fatalf("Failed to add usage: %v", err)
	}
	if err := s.AddTokenUsage(ctx, 250); err != nil {
		t.Fatalf("Failed to add usage: %v", err)
	}

	used, err := s.TokenUsage(ctx)
	if err != nil {
		t.Fatalf("Failed to read usage: %v", err)
	}
	if used != 350 {
		t.Errorf("Expected 350 tokens, got %d", used)
	}
}

// TestTokenUsage_DailyReset verifies a date change resets the ledger
// to zero
func TestTokenUsage_DailyReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.AddTokenUsage(ctx, 500); err != nil {
		t.Fatalf("Failed to add usage: %v", err)
	}

	// Simulate the clock rolling to the next local day.
	s.now = func() time.Time { return time.Now().AddDate(0, 0, 1) }

	used, err := s.TokenUsage(ctx)
	if err != nil {
		t.Fatalf("Failed to read usage: %v", err)
	}
	if used != 0 {
		t.Errorf("Expected 0 after date change, got %d", used)
	}

	// The first charge of the new day starts from zero.
	if err := s.AddTokenUsage(ctx, 40); err != nil {
		t.Fatalf("Failed to add usage: %v", err)
	}
	used, err = s.TokenUsage(ctx)
	if err != nil {
		t.Fatalf("Failed to read usage: %v", err)
	}
	if used != 40 {
		t.Errorf("Expected 40 after reset, got %d", used)
	}
}

// TestRemainingTokens verifies quota arithmetic never goes negative
func TestRemainingTokens(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.AddTokenUsage(ctx, 900); err != nil {
		t.Fatalf("Failed to add usage: %v", err)
	}

	remaining, err := s.RemainingTokens(ctx, 1000)
	if err != nil {
		t.Fatalf("Failed to read remaining: %v", err)
	}
	if remaining != 100 {
		t.Errorf("Expected 100 remaining, got %d", remaining)
	}

	remaining, err = s.RemainingTokens(ctx, 500)
	if err != nil {
		t.Fatalf("Failed to read remaining: %v", err)
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining when over quota, got %d", remaining)
	}
}

// TestAutosaver_Debounces verifies rapid notifications collapse into
// one save after the quiet period
func TestAutosaver_Debounces(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(50*time.Millisecond, func() { saves.Add(1) })
	defer a.Close()

	for i := 0; i < 5; i++ {
		a.Notify()
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)
	if got := saves.Load(); got != 1 {
		t.Errorf("Expected exactly 1 debounced save, got %d", got)
	}
}

// TestAutosaver_CloseCancels verifies teardown cancels a pending save
func TestAutosaver_CloseCancels(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(50*time.Millisecond, func() { saves.Add(1) })

	a.Notify()
	a.Close()

	time.Sleep(100 * time.Millisecond)
	if got := saves.Load(); got != 0 {
		t.Errorf("Expected no save after close, got %d", got)
	}
	// Notify after close must stay inert.
	a.Notify()
	time.Sleep(100 * time.Millisecond)
	if got := saves.Load(); got != 0 {
		t.Errorf("Expected closed autosaver to ignore notifications, got %d saves", got)
	}
}

// TestAutosaver_Flush verifies an immediate save cancels the pending
// timer
func TestAutosaver_Flush(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(50*time.Millisecond, func() { saves.Add(1) })
	defer a.Close()

	a.Notify()
	a.Flush()

	time.Sleep(120 * time.Millisecond)
	if got := saves.Load(); got != 1 {
		t.Errorf("Expected exactly 1 save from flush, got %d", got)
	}
}
