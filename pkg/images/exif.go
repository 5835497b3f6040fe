package images

import (
	"bytes"
	"encoding/binary"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1

	tagOrientation     = 0x0112
	tagExifIFD         = 0x8769
	tagPixelXDimension = 0xA002
	tagPixelYDimension = 0xA003

	typeShort = 3
	typeLong  = 4
)

var exifHeader = []byte("Exif\x00\x00")

// exifSegment returns the APP1 Exif segment of a JPEG stream, marker and
// length included, or nil when there is none before the scan data.
func exifSegment(data []byte) []byte {
	if !isJPEG(data) {
		return nil
	}

	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return nil
		}

		marker := data[i+1]
		switch {
		case marker == 0xFF:
			i++
			continue
		case marker == markerSOI, marker == 0x01, marker >= 0xD0 && marker <= 0xD7:
			i += 2
			continue
		case marker == markerSOS, marker == markerEOI:
			return nil
		}

		length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		end := i + 2 + length
		if length < 2 || end > len(data) {
			return nil
		}

		if marker == markerAPP1 && bytes.HasPrefix(data[i+4:end], exifHeader) {
			return data[i:end]
		}
		i = end
	}
	return nil
}

// patchExif rewrites an Exif segment in place to describe a re-encoded image
// of width x height: IFD0 orientation becomes Normal, the Exif pixel
// dimensions are updated, and IFD1 is unlinked so its unrotated thumbnail is
// no longer reachable. goexif only reads, so the IFDs are walked directly.
// It reports false when the segment has no patchable orientation entry.
func patchExif(segment []byte, width, height int) bool {
	start := 4 + len(exifHeader)
	if len(segment) < start+8 {
		return false
	}
	tiff := segment[start:]

	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return false
	}

	ifd0 := int(order.Uint32(tiff[4:8]))
	oriented := false

	next, ok := walkIFD(tiff, order, ifd0, func(entry int, tag uint16) {
		switch tag {
		case tagOrientation:
			if order.Uint16(tiff[entry+2:entry+4]) == typeShort {
				order.PutUint16(tiff[entry+8:entry+10], uint16(Normal))
				oriented = true
			}
		case tagExifIFD:
			sub := int(order.Uint32(tiff[entry+8 : entry+12]))
			walkIFD(tiff, order, sub, func(e int, tag uint16) {
				switch tag {
				case tagPixelXDimension:
					putDimension(tiff[e:e+12], order, width)
				case tagPixelYDimension:
					putDimension(tiff[e:e+12], order, height)
				}
			})
		}
	})
	if !ok || !oriented {
		return false
	}

	order.PutUint32(tiff[next:next+4], 0)
	return true
}

// walkIFD calls fn with the offset and tag of every entry of the IFD at
// offset ifd. It returns the offset of the IFD's next-IFD pointer, or false
// when the IFD does not fit inside tiff.
func walkIFD(tiff []byte, order binary.ByteOrder, ifd int, fn func(entry int, tag uint16)) (int, bool) {
	if ifd < 8 || ifd+2 > len(tiff) {
		return 0, false
	}

	count := int(order.Uint16(tiff[ifd : ifd+2]))
	next := ifd + 2 + 12*count
	if next+4 > len(tiff) {
		return 0, false
	}

	for k := range count {
		entry := ifd + 2 + 12*k
		fn(entry, order.Uint16(tiff[entry:entry+2]))
	}
	return next, true
}

// putDimension stores v in a single-count SHORT or LONG entry.
func putDimension(entry []byte, order binary.ByteOrder, v int) {
	if order.Uint32(entry[4:8]) != 1 {
		return
	}
	switch order.Uint16(entry[2:4]) {
	case typeShort:
		order.PutUint16(entry[8:10], uint16(v))
	case typeLong:
		order.PutUint32(entry[8:12], uint32(v))
	}
}

// withExif inserts the original Exif segment, patched for the encoded
// width x height image, after the SOI marker of a freshly encoded JPEG. When
// the segment is missing or cannot be patched the encoded image is returned
// without Exif, which viewers also treat as Normal.
func withExif(encoded, original []byte, width, height int) []byte {
	seg := exifSegment(original)
	if seg == nil {
		return encoded
	}

	patched := bytes.Clone(seg)
	if !patchExif(patched, width, height) {
		return encoded
	}

	out := make([]byte, 0, len(encoded)+len(patched))
	out = append(out, encoded[:2]...)
	out = append(out, patched...)
	return append(out, encoded[2:]...)
}
