package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ArthurCbn/photobot/internal/metadata"
	"github.com/ArthurCbn/photobot/pkg/types"
)

// DefaultExtensions returns every image and video extension the extractor reads.
func DefaultExtensions() []string {
	exts := append([]string{}, metadata.ImageExtensions...)
	return append(exts, metadata.VideoExtensions...)
}

type Scanner struct {
	includeExt map[string]bool
	videoExt   map[string]bool
	recursive  bool
}

func New(extensions []string, recursive bool) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.TrimPrefix(strings.ToLower(ext), ".")] = true
	}
	videoMap := make(map[string]bool)
	for _, ext := range metadata.VideoExtensions {
		videoMap[ext] = true
	}
	return &Scanner{includeExt: extMap, videoExt: videoMap, recursive: recursive}
}

// Scan lists media files under root in lexical order. Subdirectories are
// entered only when the scanner is recursive.
func (s *Scanner) Scan(root string) ([]types.FileEntry, error) {
	var entries []types.FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && !s.recursive {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if !s.includeExt[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		entries = append(entries, types.FileEntry{
			Path:      path,
			Name:      d.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Extension: ext,
			IsVideo:   s.videoExt[ext],
		})

		return nil
	})

	return entries, err
}
