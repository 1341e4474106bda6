package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"diarioweb/internal/diary/model"
	"diarioweb/internal/diary/storage"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
)

// ErrBlobMissing means the entry exists but its document is gone from
// blob storage.
var ErrBlobMissing = fmt.Errorf("diary blob missing: %w", apperror.ErrNotFound)

// ErrUnknownOwner means a verified token names no row in users.
var ErrUnknownOwner = fmt.Errorf("owner not found: %w", apperror.ErrUnauthenticated)

type EntryStore interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]model.DiaryEntry, error)
	InsertForOwner(ctx context.Context, ownerID int64, ref string) (model.DiaryEntry, error)
	FindByReference(ctx context.Context, ref string, ownerID int64) (model.DiaryEntry, error)
	DeleteIfOwned(ctx context.Context, id, ownerID int64) (string, bool, error)
}

type OwnerLookup interface {
	IDByUsername(ctx context.Context, username string) (int64, error)
}

type DiaryService struct {
	Entries EntryStore
	Owners  OwnerLookup
	Blobs   storage.BlobStore
	now     func() time.Time
}

func NewDiaryService(entries EntryStore, owners OwnerLookup, blobs storage.BlobStore) *DiaryService {
	return &DiaryService{Entries: entries, Owners: owners, Blobs: blobs, now: time.Now}
}

func (s *DiaryService) ownerID(ctx context.Context, owner string) (int64, error) {
	id, err := s.Owners.IDByUsername(ctx, owner)
	if errors.Is(err, apperror.ErrNotFound) {
		logger.Sugar.Warnf("Verified token names unknown user %q", owner)
		return 0, ErrUnknownOwner
	}
	return id, err
}

func (s *DiaryService) List(ctx context.Context, owner string) ([]model.DiaryEntry, error) {
	id, err := s.ownerID(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.Entries.ListByOwner(ctx, id)
}

// Upload stores the document and records it for owner. When the record
// cannot be written the stored document is removed again.
func (s *DiaryService) Upload(ctx context.Context, owner, filename string, r io.Reader) (model.DiaryEntry, error) {
	id, err := s.ownerID(ctx, owner)
	if err != nil {
		return model.DiaryEntry{}, err
	}

	ref, err := s.Blobs.Save(ctx, storage.StoredName(filename, s.now()), r)
	if err != nil {
		return model.DiaryEntry{}, err
	}

	entry, err := s.Entries.InsertForOwner(ctx, id, ref)
	if err != nil {
		if rmErr := s.Blobs.Remove(context.WithoutCancel(ctx), ref); rmErr != nil {
			logger.Sugar.Errorf("Failed to delete uploaded file %s: %v", ref, rmErr)
		}
		return model.DiaryEntry{}, err
	}
	logger.Sugar.Infof("Diary entry %d uploaded as %s", entry.ID, ref)
	return entry, nil
}

// Open returns the document stored under ref when owner holds an entry for
// it. The caller closes the reader.
func (s *DiaryService) Open(ctx context.Context, owner, ref string) (io.ReadCloser, error) {
	id, err := s.ownerID(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.Entries.FindByReference(ctx, ref, id); err != nil {
		return nil, err
	}
	rc, err := s.Blobs.Open(ctx, ref)
	if errors.Is(err, apperror.ErrNotFound) {
		logger.Sugar.Warnf("Diary entry %s has no stored file", ref)
		return nil, ErrBlobMissing
	}
	return rc, err
}

// Delete removes the entry; failing to remove its document is only logged.
func (s *DiaryService) Delete(ctx context.Context, owner string, entryID int64) error {
	id, err := s.ownerID(ctx, owner)
	if err != nil {
		return err
	}
	ref, ok, err := s.Entries.DeleteIfOwned(ctx, entryID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("diary entry %d: %w", entryID, apperror.ErrNotFound)
	}
	if err := s.Blobs.Remove(ctx, ref); err != nil {
		logger.Sugar.Errorf("Failed to delete file from storage %s: %v", ref, err)
	}
	return nil
}
