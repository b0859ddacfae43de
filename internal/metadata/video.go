package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ArthurCbn/photobot/pkg/types"
	"github.com/barasher/go-exiftool"
)

// TagReader returns the raw tag dictionary of a file.
type TagReader interface {
	ReadTags(path string) (map[string]interface{}, error)
	Close() error
}

// videoDateTags are tried in order.
var videoDateTags = []string{
	"QuickTime:CreationDate",
	"QuickTime:CreateDate",
	"EXIF:DateTimeOriginal",
	"QuickTime:ContentCreateDate",
}

// VideoSource reads GPS and capture time through a TagReader.
type VideoSource struct {
	reader TagReader
}

func NewVideoSource(reader TagReader) *VideoSource {
	return &VideoSource{reader: reader}
}

func (s *VideoSource) Name() string { return "exiftool" }

func (s *VideoSource) Read(path string) types.MediaRecord {
	rec := types.MediaRecord{Path: path}

	fields, err := s.reader.ReadTags(path)
	if err != nil {
		rec.Errors = append(rec.Errors, "metadata helper: "+err.Error())
		return rec
	}

	lat, latOK := numberField(fields, "Composite:GPSLatitude")
	lon, lonOK := numberField(fields, "Composite:GPSLongitude")
	if latOK && lonOK {
		rec.Coords = &types.GeoPoint{Lat: lat, Lon: lon}
	} else if latOK != lonOK {
		rec.Errors = append(rec.Errors, "incomplete GPS coordinates")
	}

	for _, name := range videoDateTags {
		val, ok := lookup(fields, name)
		if !ok {
			continue
		}
		str := strings.TrimSpace(fmt.Sprint(val))
		if str == "" {
			continue
		}
		if t, naive, ok := parseTimestamp(str); ok {
			rec.CapturedAt = &t
			rec.Naive = naive
			rec.TimeSource = name
		} else {
			rec.Errors = append(rec.Errors, fmt.Sprintf("unparseable %s %q", name, str))
		}
		break
	}

	return rec
}

// lookup accepts both "Group:Tag" and bare "Tag" keys.
func lookup(fields map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := fields[name]; ok && v != nil {
		return v, true
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		if v, ok := fields[name[i+1:]]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func numberField(fields map[string]interface{}, name string) (float64, bool) {
	v, ok := lookup(fields, name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// ExifTool is a TagReader backed by a stay-open exiftool process.
// The process is started on first use.
type ExifTool struct {
	mu     sync.Mutex
	binary string
	et     *exiftool.Exiftool
	err    error
}

// NewExifTool returns a reader using binary, or exiftool from PATH when empty.
func NewExifTool(binary string) *ExifTool {
	return &ExifTool{binary: binary}
}

func (e *ExifTool) start() error {
	if e.et != nil || e.err != nil {
		return e.err
	}

	opts := []func(*exiftool.Exiftool) error{exiftool.NoPrintConversion()}
	if e.binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(e.binary))
	}

	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		e.err = fmt.Errorf("failed to start exiftool: %w", err)
		return e.err
	}
	e.et = et
	return nil
}

func (e *ExifTool) ReadTags(path string) (map[string]interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.start(); err != nil {
		return nil, err
	}

	infos := e.et.ExtractMetadata(path)
	if len(infos) == 0 {
		return nil, errors.New("no metadata returned")
	}
	if infos[0].Err != nil {
		return nil, infos[0].Err
	}
	return infos[0].Fields, nil
}

func (e *ExifTool) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.et == nil {
		return nil
	}
	err := e.et.Close()
	e.et = nil
	return err
}
