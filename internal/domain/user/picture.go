package user

import (
	"fmt"
	"path/filepath"
	"strings"
)

const MaxPictureSize = 5 * 1024 * 1024

var allowedPictureExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// PictureUpload describes a file before it is sent to the backend.
type PictureUpload struct {
	Filename    string
	ContentType string
	Size        int64
}

func (p PictureUpload) Validate() []string {
	var errs []string
	if !strings.HasPrefix(strings.ToLower(p.ContentType), "image/") {
		errs = append(errs, "Please select a valid image file")
	}
	if p.Size > MaxPictureSize {
		errs = append(errs, "File size must be less than 5MB")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p.Filename)), ".")
	if !allowedPictureExtensions[ext] {
		errs = append(errs, "Only JPG, JPEG, PNG, GIF, and WebP files are allowed")
	}
	return errs
}

// ResolvePictureURL turns a stored picture path into an absolute URL under origin.
func ResolvePictureURL(origin, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	origin = strings.TrimRight(origin, "/")
	if strings.HasPrefix(path, "/") {
		return origin + path
	}
	return fmt.Sprintf("%s/%s", origin, path)
}
