// Package storage puts uploaded binaries somewhere addressable by URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidObjectID = errors.New("invalid object id")

// Object is what the store hands back for a stored file.
type Object struct {
	URL string `json:"url"`
	ID  string `json:"storageId"`
}

type ObjectStore interface {
	Put(ctx context.Context, folder, filename string, data []byte) (Object, error)
	Delete(ctx context.Context, id string) error
}

// LocalStore writes files below Root and serves them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, folder, filename string, data []byte) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	folder = sanitize(folder)
	ext := strings.ToLower(filepath.Ext(filename))
	id := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+ext))

	full := filepath.Join(s.Root, filepath.FromSlash(id))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("failed to create folder: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Object{}, fmt.Errorf("failed to write file: %w", err)
	}

	return Object{URL: s.BaseURL + "/uploads/" + id, ID: id}, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := filepath.Clean(filepath.FromSlash(id))
	if id == "" || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return ErrInvalidObjectID
	}
	err := os.Remove(filepath.Join(s.Root, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func sanitize(folder string) string {
	var b strings.Builder
	for _, r := range folder {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '/':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "/")
	if out == "" || strings.Contains(out, "..") {
		return "misc"
	}
	return out
}
