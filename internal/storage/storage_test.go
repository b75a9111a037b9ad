package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStore_PutAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://cdn.test/")
	require.NoError(t, err)

	obj, err := store.Put(context.Background(), "vendors/abc/panCard", "pan.PDF", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.ID, "vendors/abc/panCard/"))
	assert.True(t, strings.HasSuffix(obj.ID, ".pdf"))
	assert.Equal(t, "http://cdn.test/uploads/"+obj.ID, obj.URL)

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(obj.ID)))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), obj.ID))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(obj.ID)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), obj.ID), "deleting twice is not an error")
}

func TestLocalStore_RejectsEscapingIDs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "../etc/passwd"), ErrInvalidObjectID)
	assert.ErrorIs(t, store.Delete(context.Background(), ""), ErrInvalidObjectID)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "vendors/x", sanitize("/vendors/x/"))
	assert.Equal(t, "misc", sanitize("../.."))
	assert.Equal(t, "misc", sanitize(""))
}

func TestNormalize_DownscalesLargeImages(t *testing.T) {
	out, name, err := Normalize("aadhar-front.png", pngBytes(t, 3000, 1000))
	require.NoError(t, err)
	assert.Equal(t, "aadhar-front.png", name)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, MaxImageEdge, img.Bounds().Dx())
}

func TestNormalize_PassesPDFThrough(t *testing.T) {
	data := []byte("%PDF-1.7\n1 0 obj\n")
	out, name, err := Normalize("gst.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, "gst.pdf", name)
}

func TestNormalize_RejectsOtherTypes(t *testing.T) {
	_, _, err := Normalize("notes.txt", []byte("hello world"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}
