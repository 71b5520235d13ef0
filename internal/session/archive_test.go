package session

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/liminalpurple/stocktag/internal/registry"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func archiveItem(t *testing.T, filename string) *registry.Item {
	t.Helper()
	it := registry.NewItem(filename, registry.KindImage, "image/png", pngBytes(t, 320, 200), nil)
	registry.InitHistory(it, registry.Metadata{Title: "Title " + filename, Keywords: "a, b"})
	return it
}

// TestExportImport_RoundTrip verifies metadata, history, and
// thumbnails survive the archive cycle and items come back restored
func TestExportImport_RoundTrip(t *testing.T) {
	items := []*registry.Item{archiveItem(t, "a.png"), archiveItem(t, "b.png")}
	registry.RecordEdit(items[1], registry.TitleEdit{Value: "Edited"})

	var buf bytes.Buffer
	if err := Export(&buf, items); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	got, err := Import(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(got))
	}

	if got[0].ID != items[0].ID {
		t.Errorf("Item ID changed: %s vs %s", got[0].ID, items[0].ID)
	}
	if got[1].Current.Title != "Edited" {
		t.Errorf("Edited title lost: %q", got[1].Current.Title)
	}
	if len(got[1].History) != 2 {
		t.Errorf("History lost: %d snapshots", len(got[1].History))
	}
	for _, it := range got {
		if !it.Restored {
			t.Errorf("Item %s not marked restored", it.ID)
		}
		if len(it.Preview) == 0 || len(it.Content) == 0 {
			t.Errorf("Item %s missing stand-in handles", it.ID)
		}
		if _, _, err := image.Decode(bytes.NewReader(it.Preview)); err != nil {
			t.Errorf("Item %s preview not decodable: %v", it.ID, err)
		}
	}
}

// TestImport_MissingThumbnail verifies an item whose thumbnail payload
// is absent gets a placeholder while other items keep theirs
func TestImport_MissingThumbnail(t *testing.T) {
	items := []*registry.Item{archiveItem(t, "a.png"), archiveItem(t, "b.png"), archiveItem(t, "c.png")}

	// Build the archive by hand, omitting item 2's thumbnail.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	manifest, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("Failed to marshal manifest: %v", err)
	}
	mf, _ := zw.Create("session.json")
	if _, err := mf.Write(manifest); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	for i, it := range items {
		if i == 1 {
			continue
		}
		thumb, err := Thumbnail(it.Content)
		if err != nil {
			t.Fatalf("Failed to build thumbnail: %v", err)
		}
		tf, _ := zw.Create(fmt.Sprintf("thumbnails/%s.jpg", it.ID))
		if _, err := tf.Write(thumb); err != nil {
			t.Fatalf("Failed to write thumbnail: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}

	got, err := Import(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(got))
	}

	placeholder := Placeholder()
	if !bytes.Equal(got[1].Preview, placeholder) {
		t.Error("Expected item 2 to get a placeholder preview")
	}
	if bytes.Equal(got[0].Preview, placeholder) || bytes.Equal(got[2].Preview, placeholder) {
		t.Error("Expected items 1 and 3 to retain their thumbnails")
	}
	if !got[1].Restored {
		t.Error("Expected item 2 marked restored")
	}
}

// TestImport_MissingManifest verifies the whole import fails when the
// manifest is absent
func TestImport_MissingManifest(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("unrelated.txt")
	_, _ = f.Write([]byte("nothing"))
	_ = zw.Close()

	if _, err := Import(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err == nil {
		t.Error("Expected error for archive without manifest")
	}
}

// TestImport_ManifestNotAList verifies a non-array manifest aborts the
// import
func TestImport_ManifestNotAList(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("session.json")
	_, _ = f.Write([]byte(`{"items": "not a list"}`))
	_ = zw.Close()

	if _, err := Import(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err == nil {
		t.Error("Expected error for non-list manifest")
	}
}

// TestImport_MalformedArchive verifies garbage bytes fail cleanly
func TestImport_MalformedArchive(t *testing.T) {
	data := []byte("this is not a zip file at all")
	if _, err := Import(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Error("Expected error for malformed archive")
	}
}

// TestThumbnail_Downscales verifies large images shrink within bounds
func TestThumbnail_Downscales(t *testing.T) {
	thumb, err := Thumbnail(pngBytes(t, 1024, 512))
	if err != nil {
		t.Fatalf("Failed to build thumbnail: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("Thumbnail not decodable: %v", err)
	}
	if cfg.Width != 256 {
		t.Errorf("Expected width 256, got %d", cfg.Width)
	}
	if cfg.Height != 128 {
		t.Errorf("Expected height 128 (aspect preserved), got %d", cfg.Height)
	}
}

// TestThumbnail_SmallImageKept verifies images within bounds keep
// their dimensions
func TestThumbnail_SmallImageKept(t *testing.T) {
	thumb, err := Thumbnail(pngBytes(t, 100, 80))
	if err != nil {
		t.Fatalf("Failed to build thumbnail: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("Thumbnail not decodable: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 80 {
		t.Errorf("Expected 100x80, got %dx%d", cfg.Width, cfg.Height)
	}
}

// TestPlaceholder_Decodable verifies the generated placeholder is a
// valid JPEG
func TestPlaceholder_Decodable(t *testing.T) {
	if _, _, err := image.Decode(bytes.NewReader(Placeholder())); err != nil {
		t.Errorf("Placeholder not decodable: %v", err)
	}
}
