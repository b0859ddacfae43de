package metadata

import (
	"fmt"
	"os"
	"strings"

	"github.com/ArthurCbn/photobot/pkg/types"
	"github.com/rwcarlsen/goexif/exif"
)

// ImageSource reads GPS and capture time from EXIF tags.
type ImageSource struct{}

func NewImageSource() *ImageSource {
	return &ImageSource{}
}

func (s *ImageSource) Name() string { return "exif" }

func (s *ImageSource) Read(path string) types.MediaRecord {
	rec := types.MediaRecord{Path: path}

	f, err := os.Open(path)
	if err != nil {
		rec.Errors = append(rec.Errors, err.Error())
		return rec
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		rec.Errors = append(rec.Errors, "no EXIF data: "+err.Error())
		return rec
	}

	if pt, err := exifCoords(x); err == nil {
		rec.Coords = pt
	} else {
		rec.Errors = append(rec.Errors, err.Error())
	}

	for _, name := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		val, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, naive, ok := parseTimestamp(val); ok {
			rec.CapturedAt = &t
			rec.Naive = naive
			rec.TimeSource = "EXIF:" + string(name)
			return rec
		}
		rec.Errors = append(rec.Errors, fmt.Sprintf("unparseable %s %q", name, val))
	}

	return rec
}

func exifCoords(x *exif.Exif) (*types.GeoPoint, error) {
	lat, err := exifDegrees(x, exif.GPSLatitude)
	if err != nil {
		return nil, err
	}
	lon, err := exifDegrees(x, exif.GPSLongitude)
	if err != nil {
		return nil, err
	}

	if exifString(x, exif.GPSLatitudeRef) != "N" {
		lat = -lat
	}
	if exifString(x, exif.GPSLongitudeRef) != "E" {
		lon = -lon
	}
	return &types.GeoPoint{Lat: lat, Lon: lon}, nil
}

// exifDegrees converts a (degrees, minutes, seconds) rational triple.
func exifDegrees(x *exif.Exif, name exif.FieldName) (float64, error) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, fmt.Errorf("no %s", name)
	}

	var parts [3]float64
	for i := range parts {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %v", name, err)
		}
		if den == 0 {
			return 0, fmt.Errorf("invalid %s: zero denominator", name)
		}
		parts[i] = float64(num) / float64(den)
	}
	return parts[0] + parts[1]/60 + parts[2]/3600, nil
}

func exifString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	val, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(val, "\x00"))
}
