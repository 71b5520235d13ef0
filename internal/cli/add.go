package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stocktag/internal/media"
	"github.com/liminalpurple/stocktag/internal/registry"
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <files...>",
		Short: "Add media files to the session",
		Long: `Register one or more image or video files in the tagging session.

Images are read as-is. Videos need a poster frame: a JPEG or PNG named
<video-file>.jpg next to the video is picked up automatically; without
one, processing the video will fail with a decode error.

RAW camera formats are rejected - convert to JPEG or PNG first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	added := 0
	for _, path := range args {
		it, err := itemFromFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", path, err)
			continue
		}
		s.reg.Add(it)
		added++
		fmt.Printf("Added %s (%s, id %s)\n", it.Filename, it.Kind, it.ID)
	}

	if added == 0 {
		return fmt.Errorf("no files added")
	}
	fmt.Printf("\n%d file(s) added. Run 'stocktag process' to generate metadata.\n", added)
	return nil
}

func itemFromFile(path string) (*registry.Item, error) {
	filename := filepath.Base(path)

	if media.IsRaw(filename) {
		return nil, fmt.Errorf("RAW camera files are not supported - convert to JPEG or PNG first")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch {
	case media.IsVideo(filename):
		it := registry.NewItem(filename, registry.KindVideo, media.DetectMimeType(data), data, posterFrame(path))
		return it, nil
	case media.IsImage(filename):
		mimeType := media.DetectMimeType(data)
		if _, err := media.GetImageInfo(data); err != nil {
			return nil, fmt.Errorf("unsupported or corrupt image: %w", err)
		}
		return registry.NewItem(filename, registry.KindImage, mimeType, data, data), nil
	default:
		return nil, fmt.Errorf("unsupported file format")
	}
}

// posterFrame loads the sidecar poster image for a video, if present
func posterFrame(videoPath string) []byte {
	for _, ext := range []string{".jpg", ".jpeg", ".png"} {
		data, err := os.ReadFile(videoPath + ext)
		if err == nil {
			return data
		}
	}
	return nil
}
