package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
)

// LocalStore keeps documents as files in one directory.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) path(ref string) (string, error) {
	if !ValidRef(ref) {
		return "", fmt.Errorf("diary file %q: %w", ref, apperror.ErrNotFound)
	}
	return filepath.Join(s.Dir, ref), nil
}

func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", fmt.Errorf("invalid blob name %q: %w", name, apperror.ErrValidation)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		logger.Sugar.Errorf("Failed to create diary file %s: %v", p, err)
		return "", fmt.Errorf("create blob: %w", apperror.ErrStore)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		if errors.Is(err, apperror.ErrTooLarge) {
			return "", err
		}
		logger.Sugar.Errorf("Failed to write diary file %s: %v", p, err)
		return "", fmt.Errorf("write blob: %w", apperror.ErrStore)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		logger.Sugar.Errorf("Failed to close diary file %s: %v", p, err)
		return "", fmt.Errorf("write blob: %w", apperror.ErrStore)
	}
	return name, nil
}

func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	p, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("diary file %s: %w", ref, apperror.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to open diary file %s: %v", p, err)
		return nil, fmt.Errorf("open blob: %w", apperror.ErrStore)
	}
	return f, nil
}

func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("diary file %s: %w", ref, apperror.ErrNotFound)
		}
		logger.Sugar.Errorf("Failed to delete diary file %s: %v", p, err)
		return fmt.Errorf("remove blob: %w", apperror.ErrStore)
	}
	return nil
}
