package photostat

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/spf13/afero"
)

// ExifExtractor implements Extractor by decoding the EXIF block of JPEG and TIFF files.
type ExifExtractor struct {
	fs afero.Fs
}

// NewExifExtractor creates an extractor reading files from fs.
func NewExifExtractor(fs afero.Fs) *ExifExtractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ExifExtractor{fs: fs}
}

// Extract implements Extractor.
func (x *ExifExtractor) Extract(ctx context.Context, path string) (*FileRecord, error) {
	tags, err := x.decodeTags(ctx, path)
	if err != nil {
		return nil, err
	}

	record := &FileRecord{Path: path, Values: make(map[Field]string, len(Fields))}
	for _, field := range Fields {
		tag, ok := tags[field.TagName()]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %s", ErrIncompleteMetadata, path, field.TagName())
		}
		value, err := normalizeTag(field, tag)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %w", ErrIncompleteMetadata, path, field.TagName(), err)
		}
		record.Values[field] = value
	}
	return record, nil
}

// decodeTags reads every EXIF tag of the file, keyed by goexif's tag name table.
func (x *ExifExtractor) decodeTags(ctx context.Context, path string) (tags map[exif.FieldName]*tiff.Tag, err error) {
	f, err := x.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}
	defer f.Close()

	// goexif is not hardened against every malformed block; a panic there means the
	// file is unusable, not that the run is broken.
	defer func() {
		if r := recover(); r != nil {
			tags = nil
			err = fmt.Errorf("%w: %s: decoder panic: %v", ErrNoMetadata, path, r)
		}
	}()

	decoded, decodeErr := exif.Decode(&ctxReader{ctx: ctx, r: f})
	if decodeErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, ctxErr)
		}
		if decoded == nil || exif.IsCriticalError(decodeErr) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNoMetadata, path, decodeErr)
		}
		// Non-critical errors leave the successfully parsed tags usable.
	}

	collector := tagCollector{}
	if walkErr := decoded.Walk(collector); walkErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoMetadata, path, walkErr)
	}
	return collector, nil
}

// tagCollector implements exif.Walker, gathering every decoded tag.
type tagCollector map[exif.FieldName]*tiff.Tag

// Walk implements exif.Walker.
func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c[name] = tag
	return nil
}

// ctxReader fails reads once ctx is done so an abandoned decode stops early.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// normalizeTag converts a raw tag into the field's string form.
func normalizeTag(field Field, tag *tiff.Tag) (string, error) {
	switch field {
	case CaptureDate:
		s, err := tag.StringVal()
		if err != nil {
			return "", err
		}
		return NormalizeCaptureDate(s), nil
	case CameraModel, LensModel:
		s, err := tag.StringVal()
		if err != nil {
			return "", err
		}
		return StripNulls(s), nil
	case ExposureTime:
		r, err := tagRat(tag)
		if err != nil {
			return "", err
		}
		return r.RatString(), nil
	case Aperture, FocalLength:
		return tagDecimal(tag)
	case ISO:
		if tag.Format() != tiff.IntVal {
			return "", fmt.Errorf("unexpected format %v for integer value", tag.Format())
		}
		n, err := tag.Int64(0)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	}
	return "", fmt.Errorf("untracked field %q", field)
}

// NormalizeCaptureDate reduces an EXIF timestamp ("2023:05:01 12:30:00") to its
// day in ISO form ("2023-05-01").
func NormalizeCaptureDate(s string) string {
	date, _, _ := strings.Cut(StripNulls(s), " ")
	return strings.Replace(date, ":", "-", 2)
}

// StripNulls removes NUL characters, which some cameras use to pad string tags.
func StripNulls(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func tagRat(tag *tiff.Tag) (*big.Rat, error) {
	if tag.Format() != tiff.RatVal {
		return nil, fmt.Errorf("unexpected format %v for rational value", tag.Format())
	}
	num, den, err := tag.Rat2(0)
	if err != nil {
		return nil, err
	}
	if den == 0 {
		return nil, fmt.Errorf("zero denominator")
	}
	return big.NewRat(num, den), nil
}

// tagDecimal renders a rational or float tag as its shortest decimal form.
func tagDecimal(tag *tiff.Tag) (string, error) {
	var f float64
	switch tag.Format() {
	case tiff.RatVal:
		r, err := tagRat(tag)
		if err != nil {
			return "", err
		}
		f, _ = r.Float64()
	case tiff.FloatVal:
		v, err := tag.Float(0)
		if err != nil {
			return "", err
		}
		f = v
	case tiff.IntVal:
		n, err := tag.Int64(0)
		if err != nil {
			return "", err
		}
		f = float64(n)
	default:
		return "", fmt.Errorf("unexpected format %v for numeric value", tag.Format())
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
