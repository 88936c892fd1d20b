package avatar

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoded(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestNormalizeShrinksWideImages(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encoded(t, 1024, 768, imaging.JPEG)), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, out.Width)
	assert.Equal(t, 384, out.Height)
	assert.Equal(t, "image/jpeg", out.ContentType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Content))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, MaxWidth, cfg.Width)
}

func TestNormalizeKeepsSmallImagesAndFormat(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encoded(t, 120, 80, imaging.PNG)), "image/png")
	require.NoError(t, err)
	assert.Equal(t, 120, out.Width)

	_, format, err := image.DecodeConfig(bytes.NewReader(out.Content))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize(strings.NewReader("not an image"), "image/png")
	assert.ErrorIs(t, err, ErrUndecodable)

	_, err = Normalize(strings.NewReader("x"), "application/pdf")
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestNormalizePassesWebPThrough(t *testing.T) {
	out, err := Normalize(strings.NewReader("RIFF....WEBP"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF....WEBP"), out.Content)
}
