// Package avatar shrinks profile pictures before they are uploaded.
package avatar

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	MaxWidth    = 512
	JPEGQuality = 85
)

var ErrUndecodable = fmt.Errorf("image could not be decoded")

type Image struct {
	Content     []byte
	ContentType string
	Width       int
	Height      int
}

// Normalize decodes r, scales it down to MaxWidth and re-encodes it in the same format.
// WebP has no encoder here and is passed through as is.
func Normalize(r io.Reader, contentType string) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading image: %w", err)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "image/webp" {
		return &Image{Content: data, ContentType: contentType}, nil
	}

	format, ok := formatFor(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrUndecodable, contentType)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("error encoding image: %w", err)
	}
	b := img.Bounds()
	return &Image{Content: buf.Bytes(), ContentType: contentType, Width: b.Dx(), Height: b.Dy()}, nil
}

func formatFor(contentType string) (imaging.Format, bool) {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return imaging.JPEG, true
	case "image/png":
		return imaging.PNG, true
	case "image/gif":
		return imaging.GIF, true
	}
	return imaging.JPEG, false
}
