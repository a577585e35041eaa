package photostat

import "github.com/rwcarlsen/goexif/exif"

// Field identifies one of the metadata categories the tool reports on.
type Field string

// The tracked fields. Their string values are the names used in charts and structured output.
const (
	CaptureDate  Field = "CaptureDate"
	CameraModel  Field = "CameraModel"
	LensModel    Field = "LensModel"
	Aperture     Field = "Aperture"
	ExposureTime Field = "ExposureTime"
	ISO          Field = "ISO"
	FocalLength  Field = "FocalLength"
)

// Fields lists every tracked field in report order.
var Fields = []Field{CaptureDate, CameraModel, LensModel, Aperture, ExposureTime, ISO, FocalLength}

// fieldTags maps each tracked field to the EXIF tag it is read from.
var fieldTags = map[Field]exif.FieldName{
	CaptureDate:  exif.DateTimeOriginal,
	CameraModel:  exif.Model,
	LensModel:    exif.LensModel,
	Aperture:     exif.FNumber,
	ExposureTime: exif.ExposureTime,
	ISO:          exif.ISOSpeedRatings,
	FocalLength:  exif.FocalLength,
}

// String implements fmt.Stringer.
func (f Field) String() string { return string(f) }

// TagName returns the EXIF tag name the field is read from.
func (f Field) TagName() exif.FieldName { return fieldTags[f] }

// FileRecord holds the normalized values extracted from one file.
// A record is only produced when every tracked field is present.
type FileRecord struct {
	Path   string
	Values map[Field]string
}
