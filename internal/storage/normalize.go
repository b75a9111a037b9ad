package storage

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var ErrUnsupportedFile = errors.New("unsupported file type: use jpg, png or pdf")

// MaxImageEdge bounds the longer side of stored document images.
const MaxImageEdge = 2000

// Normalize checks the uploaded bytes are a JPEG, PNG or PDF. Images are
// decoded (which drops EXIF orientation quirks), scaled down to MaxImageEdge
// and re-encoded; PDFs pass through untouched. The returned name carries the
// extension that matches the stored bytes.
func Normalize(filename string, data []byte) ([]byte, string, error) {
	kind := http.DetectContentType(data)
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "document"
	}

	switch kind {
	case "application/pdf":
		return data, base + ".pdf", nil
	case "image/jpeg", "image/png":
	default:
		return nil, "", ErrUnsupportedFile
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", ErrUnsupportedFile
	}

	b := img.Bounds()
	if b.Dx() > MaxImageEdge || b.Dy() > MaxImageEdge {
		if b.Dx() >= b.Dy() {
			img = imaging.Resize(img, MaxImageEdge, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, MaxImageEdge, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if kind == "image/png" {
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), base + ".png", nil
	}
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), base + ".jpg", nil
}
