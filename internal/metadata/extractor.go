// Package metadata extracts capture time and GPS coordinates from media files.
package metadata

import (
	"strings"

	"github.com/ArthurCbn/photobot/pkg/types"
)

// MetadataSource reads one kind of media file.
type MetadataSource interface {
	Name() string
	Read(path string) types.MediaRecord
}

// VideoExtensions lists the extensions read through the video source.
var VideoExtensions = []string{"mp4", "mov", "m4v"}

// ImageExtensions lists the extensions read through the image source.
var ImageExtensions = []string{"jpg", "jpeg", "png", "heic", "tif", "tiff"}

type Extractor struct {
	image MetadataSource
	video MetadataSource
	isVid map[string]bool
}

// New returns an extractor reading images with EXIF and videos with reader.
func New(reader TagReader) *Extractor {
	return NewWithSources(NewImageSource(), NewVideoSource(reader))
}

func NewWithSources(image, video MetadataSource) *Extractor {
	isVid := make(map[string]bool, len(VideoExtensions))
	for _, ext := range VideoExtensions {
		isVid[ext] = true
	}
	return &Extractor{image: image, video: video, isVid: isVid}
}

// SourceFor returns the source used for a lowercase extension without dot.
func (e *Extractor) SourceFor(ext string) MetadataSource {
	if e.isVid[strings.ToLower(ext)] {
		return e.video
	}
	return e.image
}

// Extract reads entry. A capture date in the file name wins over tags.
func (e *Extractor) Extract(entry types.FileEntry) types.MediaRecord {
	rec := e.SourceFor(entry.Extension).Read(entry.Path)
	rec.Path = entry.Path

	if t, ok := FilenameTime(entry.Path); ok {
		rec.CapturedAt = &t
		rec.Naive = true
		rec.TimeSource = "filename"
	}
	return rec
}
