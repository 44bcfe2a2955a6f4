// Package avatar normalizes uploaded profile images. Every stored avatar
// is a 250x250 PNG regardless of the uploaded format or aspect ratio, so
// the fetch endpoint can always answer with image/png.
package avatar

import (
	"bytes"
	"errors"
	"image/png"

	"github.com/disintegration/imaging"
)

// Normalized avatar dimensions in pixels.
const Size = 250

// MaxUploadBytes caps the accepted upload size (1 MB).
const MaxUploadBytes = 1 << 20

// ErrBadImage is returned when the upload cannot be decoded as an image.
var ErrBadImage = errors.New("unsupported or corrupt image")

// Normalize decodes an uploaded image (jpg, jpeg or png), scales and crops
// it to Size x Size and re-encodes it as PNG.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrBadImage
	}
	// Fill keeps the aspect ratio and crops around the center instead of
	// distorting non-square uploads.
	img = imaging.Fill(img, Size, Size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
