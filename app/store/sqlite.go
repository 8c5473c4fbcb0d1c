package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// sqlTableNames maps logical table names onto SQL identifiers so the
// document layout stays identical to the flat-file backend.
var sqlTableNames = map[string]string{
	TableJobs:         "jobs",
	TableSavedJobs:    "saved_jobs",
	TableApplications: "applications",
}

// SQLiteStore keeps each logical table as rows of (id, position, data) where
// data is the JSON document. Replace-all writes run in one transaction.
type SQLiteStore struct {
	db    *sql.DB
	locks *tableLocks
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialized access; the per-table locks do the ordering.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:    db,
		locks: newTableLocks(),
	}, nil
}

func (s *SQLiteStore) Read(ctx context.Context, table string) ([]json.RawMessage, error) {
	sqlTable, err := sqlTableName(table)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(table)
	lock.Lock()
	defer lock.Unlock()

	return s.readLocked(ctx, sqlTable)
}

func (s *SQLiteStore) Write(ctx context.Context, table string, rows []json.RawMessage) error {
	sqlTable, err := sqlTableName(table)
	if err != nil {
		return err
	}

	lock := s.locks.get(table)
	lock.Lock()
	defer lock.Unlock()

	return s.writeLocked(ctx, sqlTable, rows)
}

func (s *SQLiteStore) Upsert(ctx context.Context, table string, fn func(rows []json.RawMessage) ([]json.RawMessage, error)) ([]json.RawMessage, error) {
	sqlTable, err := sqlTableName(table)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(table)
	lock.Lock()
	defer lock.Unlock()

	rows, err := s.readLocked(ctx, sqlTable)
	if err != nil {
		return nil, err
	}

	next, err := fn(rows)
	if err != nil {
		return nil, err
	}

	if err := s.writeLocked(ctx, sqlTable, next); err != nil {
		return nil, err
	}

	return next, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) readLocked(ctx context.Context, sqlTable string) ([]json.RawMessage, error) {
	query := fmt.Sprintf("SELECT data FROM %s ORDER BY position", sqlTable)

	dbRows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", sqlTable, err)
	}
	defer dbRows.Close()

	rows := []json.RawMessage{}
	for dbRows.Next() {
		var data []byte
		if err := dbRows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rows = append(rows, json.RawMessage(data))
	}

	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", sqlTable, err)
	}

	return rows, nil
}

func (s *SQLiteStore) writeLocked(ctx context.Context, sqlTable string, rows []json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", sqlTable)); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", sqlTable, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (id, position, data) VALUES (?, ?, ?)", sqlTable)
	for i, row := range rows {
		if _, err := tx.ExecContext(ctx, insert, rowID(row), i, []byte(row)); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", sqlTable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit write to %s: %w", sqlTable, err)
	}

	return nil
}

func sqlTableName(table string) (string, error) {
	if err := validTable(table); err != nil {
		return "", err
	}
	return sqlTableNames[table], nil
}

// rowID extracts the document's own id field so rows stay keyed the same way
// as in file mode. Rows without an id still get a stable primary key.
func rowID(row json.RawMessage) string {
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(row, &doc); err == nil && doc.ID != "" {
		return doc.ID
	}
	return uuid.NewString()
}
