// Package session implements the portable session archive: a zip
// containing a JSON manifest of all item records plus one small JPEG
// thumbnail per item. Imported items carry no original binary and are
// marked restored.
package session

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/liminalpurple/stocktag/internal/registry"
)

const (
	manifestName = "session.json"
	thumbDir     = "thumbnails"
)

// Export writes all items as a compressed archive: the manifest holds
// every non-binary field, and each item's preview is materialized as a
// separate small JPEG so the manifest stays lightweight
func Export(w io.Writer, items []*registry.Item) error {
	zw := zip.NewWriter(w)

	manifest, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	mf, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("create manifest entry: %w", err)
	}
	if _, err := mf.Write(manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for _, it := range items {
		thumb := thumbFor(it)
		tf, err := zw.Create(fmt.Sprintf("%s/%s.jpg", thumbDir, it.ID))
		if err != nil {
			return fmt.Errorf("create thumbnail entry for %s: %w", it.ID, err)
		}
		if _, err := tf.Write(thumb); err != nil {
			return fmt.Errorf("write thumbnail for %s: %w", it.ID, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func thumbFor(it *registry.Item) []byte {
	source := it.Preview
	if len(source) == 0 {
		source = it.Content
	}
	if it.Kind == registry.KindImage && len(source) > 0 {
		if thumb, err := Thumbnail(source); err == nil {
			return thumb
		}
	}
	return Placeholder()
}

// Import reads an archive and reconstructs its items. The manifest
// must exist and be a JSON array or the whole import fails with a
// single error; no partial state is returned. Items missing their
// thumbnail payload get a generated placeholder. All imported items
// are marked restored since the original binaries are not retrievable
// from the archive.
func Import(r io.ReaderAt, size int64) ([]*registry.Item, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	manifest, err := readEntry(zr, manifestName)
	if err != nil {
		return nil, fmt.Errorf("archive has no %s manifest: %w", manifestName, err)
	}

	// The manifest must be a list of item records.
	var raw []json.RawMessage
	if err := json.Unmarshal(manifest, &raw); err != nil {
		return nil, fmt.Errorf("manifest is not a list of items: %w", err)
	}

	items := make([]*registry.Item, 0, len(raw))
	for i, entry := range raw {
		var it registry.Item
		if err := json.Unmarshal(entry, &it); err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		if it.ID == "" {
			return nil, fmt.Errorf("manifest entry %d: missing item id", i)
		}

		thumb, err := readEntry(zr, fmt.Sprintf("%s/%s.jpg", thumbDir, it.ID))
		if err != nil {
			thumb = Placeholder()
		}

		// Stand-in binary handle: the true original is not in the archive.
		it.Content = thumb
		it.Preview = thumb
		it.Restored = true
		it.Busy = registry.BusyFlags{}
		if it.Status == registry.StatusProcessing {
			it.Status = registry.StatusIdle
		}

		items = append(items, &it)
	}

	return items, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
