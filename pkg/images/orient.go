package images

import (
	"bytes"
	"fmt"
	"image"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation is the EXIF orientation tag value of an image.
type Orientation int

// Orientation values acted upon by Normalize. The names describe where the
// stored image's top row appears visually.
const (
	Normal         Orientation = 1
	Rotated180     Orientation = 3
	RotatedRight90 Orientation = 6
	RotatedLeft90  Orientation = 8
)

const jpegQuality = 95

func (o Orientation) String() string {
	switch o {
	case Normal:
		return "normal"
	case Rotated180:
		return "rotated-180"
	case RotatedRight90:
		return "rotated-right-90"
	case RotatedLeft90:
		return "rotated-left-90"
	}
	return "other-" + strconv.Itoa(int(o))
}

// Rotates reports whether Normalize corrects o.
func (o Orientation) Rotates() bool {
	return o == Rotated180 || o == RotatedRight90 || o == RotatedLeft90
}

// ReadOrientation returns the EXIF orientation of data, or Normal when the
// tag is absent or unreadable.
func ReadOrientation(data []byte) Orientation {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return Normal
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return Normal
	}

	v, err := tag.Int(0)
	if err != nil {
		return Normal
	}
	return Orientation(v)
}

// Normalize rotates JPEG pixel data so the image displays upright without
// relying on its orientation tag, and rewrites the tag to Normal. The Exif
// pixel dimensions follow the rotation and the embedded thumbnail is dropped.
//
// Only RotatedRight90, Rotated180 and RotatedLeft90 are corrected. Any other
// value, mirrored variants included, returns data untouched. The detected
// orientation is returned alongside the bytes.
func Normalize(data []byte) ([]byte, Orientation, error) {
	if !isJPEG(data) {
		return data, Normal, nil
	}

	o := ReadOrientation(data)

	var rotate func(image.Image) *image.NRGBA
	switch o {
	case RotatedRight90:
		rotate = imaging.Rotate270
	case Rotated180:
		rotate = imaging.Rotate180
	case RotatedLeft90:
		rotate = imaging.Rotate90
	default:
		return data, o, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, o, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rotated := rotate(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rotated, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return data, o, fmt.Errorf("encode rotated image: %w", err)
	}

	b := rotated.Bounds()
	return withExif(buf.Bytes(), data, b.Dx(), b.Dy()), o, nil
}

func isJPEG(data []byte) bool {
	return len(data) > 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}
