// Package images decodes base64 image payloads, infers image file extensions
// from content, and corrects EXIF orientation of camera images before they are
// staged.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// ErrDecode indicates an image payload or image body could not be decoded.
var ErrDecode = errors.New("image could not be decoded")

// PayloadPrefixes lists the data URI prefixes removed from base64 payloads.
// Matching is case-sensitive; any other prefix is left in place and fails decoding.
var PayloadPrefixes = []string{
	"data:image/png;base64,",
	"data:image/jpg;base64,",
	"data:image/jpeg;base64,",
	"data:image/gif;base64,",
}

var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"bmp":  "bmp",
}

// DecodePayload converts a base64 image payload into binary.
//
// Form transport turns '+' into a space, so spaces are restored to '+'
// before the known data URI prefixes are removed. Padding is optional.
// Only the base64 layer is checked: valid base64 of non-image bytes is
// returned as decoded.
func DecodePayload(raw string) ([]byte, error) {
	cleaned := strings.ReplaceAll(raw, " ", "+")
	for _, prefix := range PayloadPrefixes {
		cleaned = strings.ReplaceAll(cleaned, prefix, "")
	}

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, nil
}

// InferExtension classifies data as jpg, png, gif or bmp from its container
// signature. Anything else, including empty input, yields "".
func InferExtension(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return extensions[format]
}
