package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"geospy/internal/models"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Service defines the interface for image metadata extraction
type Service interface {
	Extract(path string) (*models.ImageMetadata, error)
}

// Extractor implements Service using EXIF parsing
type Extractor struct{}

// NewExtractor creates a new metadata extractor
func NewExtractor() Service {
	return &Extractor{}
}

// Extract reads all available metadata from an image file. Images without
// EXIF data still yield file-level metadata; missing GPS tags are not an
// error.
func (e *Extractor) Extract(path string) (*models.ImageMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("image file not found: %w", err)
	}

	meta := &models.ImageMetadata{
		Filename:     filepath.Base(path),
		FileSize:     info.Size(),
		FileModified: info.ModTime().UTC(),
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF segment; file facts alone are still useful
		return meta, nil
	}

	meta.ExifData = collectTags(x)
	meta.Width, meta.Height = dimensions(x)
	meta.GPS = extractGPS(x)

	return meta, nil
}

// tagWalker accumulates EXIF tags into a string map
type tagWalker struct {
	tags map[string]string
}

func (w *tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w.tags[string(name)] = tag.String()
	return nil
}

func collectTags(x *exif.Exif) map[string]string {
	w := &tagWalker{tags: make(map[string]string)}
	_ = x.Walk(w)
	return w.tags
}

// dimensions reads pixel dimensions from EXIF, zero when absent
func dimensions(x *exif.Exif) (int, int) {
	width := tagInt(x, exif.PixelXDimension)
	height := tagInt(x, exif.PixelYDimension)
	if width == 0 || height == 0 {
		width = tagInt(x, exif.ImageWidth)
		height = tagInt(x, exif.ImageLength)
	}
	return width, height
}

// extractGPS reads GPS latitude/longitude/altitude from EXIF tags,
// nil when the image carries none
func extractGPS(x *exif.Exif) *models.GPSData {
	lat, lon, err := x.LatLong()
	if err != nil {
		return nil
	}

	gps := &models.GPSData{
		Latitude:     lat,
		Longitude:    lon,
		LatitudeRef:  refForLatitude(lat),
		LongitudeRef: refForLongitude(lon),
	}

	if tag, err := x.Get(exif.GPSLatitudeRef); err == nil {
		if ref, err := tag.StringVal(); err == nil && ref != "" {
			gps.LatitudeRef = ref
		}
	}
	if tag, err := x.Get(exif.GPSLongitudeRef); err == nil {
		if ref, err := tag.StringVal(); err == nil && ref != "" {
			gps.LongitudeRef = ref
		}
	}

	if alt := extractAltitude(x); alt != nil {
		gps.Altitude = alt
	}

	return gps
}

// extractAltitude reads GPS altitude in meters. An altitude reference of 1
// means below sea level and negates the value.
func extractAltitude(x *exif.Exif) *float64 {
	tag, err := x.Get(exif.GPSAltitude)
	if err != nil {
		return nil
	}

	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return nil
	}
	altitude := float64(num) / float64(den)

	if refTag, err := x.Get(exif.GPSAltitudeRef); err == nil {
		if ref, err := refTag.Int(0); err == nil && ref == 1 {
			altitude = -altitude
		}
	}

	return &altitude
}

func tagInt(x *exif.Exif, name exif.FieldName) int {
	tag, err := x.Get(name)
	if err != nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}

func refForLatitude(lat float64) string {
	if lat < 0 {
		return "S"
	}
	return "N"
}

func refForLongitude(lon float64) string {
	if lon < 0 {
		return "W"
	}
	return "E"
}
