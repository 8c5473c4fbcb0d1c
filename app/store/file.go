package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps one JSON array file per table under a data directory.
// Writes go through a temp file plus rename, so a table file is always either
// the previous or the next full contents, never a partial write.
type FileStore struct {
	dataDir string
	locks   *tableLocks
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileStore{
		dataDir: dataDir,
		locks:   newTableLocks(),
	}, nil
}

func (s *FileStore) Read(ctx context.Context, table string) ([]json.RawMessage, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	lock := s.locks.get(table)
	lock.Lock()
	defer lock.Unlock()

	return s.readLocked(table)
}

func (s *FileStore) Write(ctx context.Context, table string, rows []json.RawMessage) error {
	if err := validTable(table); err != nil {
		return err
	}

	lock := s.locks.get(table)
	lock.Lock()
	defer lock.Unlock()

	return s.writeLocked(table, rows)
}

func (s *FileStore) Upsert(ctx context.Context, table string, fn func(rows []json.RawMessage) ([]json.RawMessage, error)) ([]json.RawMessage, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	lock := s.locks.get(table)
	lock.Lock()
	defer lock.Unlock()

	rows, err := s.readLocked(table)
	if err != nil {
		return nil, err
	}

	next, err := fn(rows)
	if err != nil {
		return nil, err
	}

	if err := s.writeLocked(table, next); err != nil {
		return nil, err
	}

	return next, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readLocked(table string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.tablePath(table))
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		// Unreadable table files read as empty rather than poisoning
		// every caller.
		return []json.RawMessage{}, nil
	}
	return rows, nil
}

func (s *FileStore) writeLocked(table string, rows []json.RawMessage) error {
	if rows == nil {
		rows = []json.RawMessage{}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode table %s: %w", table, err)
	}

	tmp, err := os.CreateTemp(s.dataDir, table+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write table %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.tablePath(table)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace table %s: %w", table, err)
	}

	return nil
}

func (s *FileStore) tablePath(table string) string {
	return filepath.Join(s.dataDir, table+".json")
}
