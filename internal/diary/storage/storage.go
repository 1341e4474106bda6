// Package storage keeps the uploaded diary documents. The database only
// records the reference returned by Save.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

type BlobStore interface {
	// Save stores r under name and returns the reference to persist.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Open returns the stored bytes; a missing blob is apperror.ErrNotFound.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Remove(ctx context.Context, ref string) error
}

// StoredName builds the reference for an upload: upload time in unix
// milliseconds, a dash, and the sanitized base of the client's file name.
func StoredName(original string, at time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return -1
		case unicode.IsControl(r):
			return -1
		case unicode.IsSpace(r):
			return '_'
		}
		return r
	}, base)
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = "entry"
	}
	return fmt.Sprintf("%d-%s", at.UnixMilli(), base)
}

// ValidRef rejects references that could escape the storage root.
func ValidRef(ref string) bool {
	if ref == "" || ref == "." || ref == ".." {
		return false
	}
	return !strings.ContainsAny(ref, "/\\\x00") && !strings.HasPrefix(ref, ".")
}
