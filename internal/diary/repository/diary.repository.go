package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"diarioweb/config/database"
	"diarioweb/internal/diary/model"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
)

// DiaryRepository scopes every statement to the owner's row id, so an entry
// owned by someone else looks exactly like a missing one.
type DiaryRepository struct {
	DB  *database.DB
	now func() time.Time
}

func NewDiaryRepository(db *database.DB) *DiaryRepository {
	return &DiaryRepository{DB: db, now: time.Now}
}

func (r *DiaryRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.DiaryEntry, error) {
	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(
		`SELECT id, user_id, file_reference, upload_date FROM diary_entries
		WHERE user_id = ? ORDER BY upload_date DESC, id DESC`), ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list diary entries for user %d: %v", ownerID, err)
		return nil, fmt.Errorf("list diary: %w", apperror.ErrStore)
	}
	defer rows.Close()

	entries := []model.DiaryEntry{}
	for rows.Next() {
		var e model.DiaryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.FileReference, &e.UploadDate); err != nil {
			logger.Sugar.Errorf("Failed to scan diary entry: %v", err)
			return nil, fmt.Errorf("scan diary entry: %w", apperror.ErrStore)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to iterate diary entries: %v", err)
		return nil, fmt.Errorf("list diary: %w", apperror.ErrStore)
	}
	return entries, nil
}

func (r *DiaryRepository) InsertForOwner(ctx context.Context, ownerID int64, ref string) (model.DiaryEntry, error) {
	e := model.DiaryEntry{UserID: ownerID, FileReference: ref, UploadDate: r.now().UTC().Truncate(time.Second)}
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		`INSERT INTO diary_entries (user_id, file_reference, upload_date) VALUES (?, ?, ?) RETURNING id`),
		ownerID, ref, e.UploadDate).Scan(&e.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert diary entry %s for user %d: %v", ref, ownerID, err)
		return model.DiaryEntry{}, fmt.Errorf("insert diary entry: %w", apperror.ErrStore)
	}
	return e, nil
}

func (r *DiaryRepository) FindByReference(ctx context.Context, ref string, ownerID int64) (model.DiaryEntry, error) {
	var e model.DiaryEntry
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		`SELECT id, user_id, file_reference, upload_date FROM diary_entries
		WHERE file_reference = ? AND user_id = ?`), ref, ownerID).
		Scan(&e.ID, &e.UserID, &e.FileReference, &e.UploadDate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DiaryEntry{}, fmt.Errorf("diary file %s: %w", ref, apperror.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to find diary file %s: %v", ref, err)
		return model.DiaryEntry{}, fmt.Errorf("find diary entry: %w", apperror.ErrStore)
	}
	return e, nil
}

// DeleteIfOwned removes the entry and returns its file reference. ok is
// false when no entry with that id belongs to ownerID.
func (r *DiaryRepository) DeleteIfOwned(ctx context.Context, id, ownerID int64) (ref string, ok bool, err error) {
	err = r.DB.QueryRowContext(ctx, r.DB.Rebind(
		`DELETE FROM diary_entries WHERE id = ? AND user_id = ? RETURNING file_reference`), id, ownerID).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to delete diary entry %d: %v", id, err)
		return "", false, fmt.Errorf("delete diary entry: %w", apperror.ErrStore)
	}
	return ref, true, nil
}
