package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeResizesToFixedSquare(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"small square upscaled", 100, 100},
		{"large square downscaled", 800, 800},
		{"wide image cropped", 640, 200},
		{"tall image cropped", 200, 640},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Normalize(encodePNG(t, tc.w, tc.h))
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err, "output must always be PNG")
			assert.Equal(t, Size, img.Bounds().Dx())
			assert.Equal(t, Size, img.Bounds().Dy())
		})
	}
}

func TestNormalizeAcceptsJPEG(t *testing.T) {
	src, err := png.Decode(bytes.NewReader(encodePNG(t, 300, 300)))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	out, err := Normalize(buf.Bytes())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, Size, img.Bounds().Dx())
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrBadImage)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrBadImage)
}
