package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"diarioweb/internal/diary/model"
	"diarioweb/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEntries struct {
	rows      []model.DiaryEntry
	insertErr error
}

func (m *memEntries) ListByOwner(ctx context.Context, ownerID int64) ([]model.DiaryEntry, error) {
	out := []model.DiaryEntry{}
	for _, e := range m.rows {
		if e.UserID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntries) InsertForOwner(ctx context.Context, ownerID int64, ref string) (model.DiaryEntry, error) {
	if m.insertErr != nil {
		return model.DiaryEntry{}, m.insertErr
	}
	e := model.DiaryEntry{ID: int64(len(m.rows) + 1), UserID: ownerID, FileReference: ref}
	m.rows = append(m.rows, e)
	return e, nil
}

func (m *memEntries) FindByReference(ctx context.Context, ref string, ownerID int64) (model.DiaryEntry, error) {
	for _, e := range m.rows {
		if e.FileReference == ref && e.UserID == ownerID {
			return e, nil
		}
	}
	return model.DiaryEntry{}, fmt.Errorf("diary file %s: %w", ref, apperror.ErrNotFound)
}

func (m *memEntries) DeleteIfOwned(ctx context.Context, id, ownerID int64) (string, bool, error) {
	for i, e := range m.rows {
		if e.ID == id && e.UserID == ownerID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return e.FileReference, true, nil
		}
	}
	return "", false, nil
}

type memOwners map[string]int64

func (m memOwners) IDByUsername(ctx context.Context, username string) (int64, error) {
	id, ok := m[username]
	if !ok {
		return 0, fmt.Errorf("user %s: %w", username, apperror.ErrNotFound)
	}
	return id, nil
}

type memBlobs struct {
	data      map[string]string
	removeErr error
}

func (m *memBlobs) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.data[name] = string(b)
	return name, nil
}

func (m *memBlobs) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	d, ok := m.data[ref]
	if !ok {
		return nil, fmt.Errorf("diary file %s: %w", ref, apperror.ErrNotFound)
	}
	return io.NopCloser(strings.NewReader(d)), nil
}

func (m *memBlobs) Remove(ctx context.Context, ref string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.data, ref)
	return nil
}

func newService() (*DiaryService, *memEntries, *memBlobs) {
	entries := &memEntries{}
	blobs := &memBlobs{data: map[string]string{}}
	svc := NewDiaryService(entries, memOwners{"admin": 1, "other": 2}, blobs)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, entries, blobs
}

func TestUpload(t *testing.T) {
	svc, entries, blobs := newService()
	ctx := context.Background()

	e, err := svc.Upload(ctx, "admin", "../notes.docx", strings.NewReader("body"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-notes.docx", e.FileReference)
	assert.Equal(t, "body", blobs.data[e.FileReference])
	assert.Len(t, entries.rows, 1)
}

func TestUpload_RemovesBlobWhenInsertFails(t *testing.T) {
	svc, entries, blobs := newService()
	entries.insertErr = fmt.Errorf("insert: %w", apperror.ErrStore)

	_, err := svc.Upload(context.Background(), "admin", "a.docx", strings.NewReader("body"))
	assert.ErrorIs(t, err, apperror.ErrStore)
	assert.Empty(t, blobs.data)
}

func TestUnknownOwner(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.List(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownOwner)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestOpen(t *testing.T) {
	svc, _, blobs := newService()
	ctx := context.Background()
	e, err := svc.Upload(ctx, "admin", "a.docx", strings.NewReader("body"))
	require.NoError(t, err)

	rc, err := svc.Open(ctx, "admin", e.FileReference)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "body", string(b))

	_, err = svc.Open(ctx, "other", e.FileReference)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, errors.Is(err, ErrBlobMissing))

	delete(blobs.data, e.FileReference)
	_, err = svc.Open(ctx, "admin", e.FileReference)
	assert.ErrorIs(t, err, ErrBlobMissing)
}

func TestDelete(t *testing.T) {
	svc, entries, blobs := newService()
	ctx := context.Background()
	e, err := svc.Upload(ctx, "admin", "a.docx", strings.NewReader("body"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "other", e.ID), apperror.ErrNotFound)
	assert.Len(t, entries.rows, 1)

	blobs.removeErr = errors.New("bucket unavailable")
	require.NoError(t, svc.Delete(ctx, "admin", e.ID), "blob cleanup failures are not surfaced")
	assert.Empty(t, entries.rows)

	assert.ErrorIs(t, svc.Delete(ctx, "admin", e.ID), apperror.ErrNotFound)
}
