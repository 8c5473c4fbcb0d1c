package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Logical table names shared by both backends.
const (
	TableJobs         = "jobs"
	TableSavedJobs    = "savedJobs"
	TableApplications = "applications"
)

// Store persists the job tables behind a uniform read/replace-all interface.
// Implementations serialize Write and Upsert per table: two concurrent
// upserts on the same table never interleave, and writes are totally ordered
// per table. Row order within a table is preserved.
type Store interface {
	// Read returns every row of a table; an absent table reads as empty.
	Read(ctx context.Context, table string) ([]json.RawMessage, error)
	// Write atomically replaces the entire table contents.
	Write(ctx context.Context, table string, rows []json.RawMessage) error
	// Upsert reads a table, applies fn and writes the result back as one
	// serialized read-modify-write step.
	Upsert(ctx context.Context, table string, fn func(rows []json.RawMessage) ([]json.RawMessage, error)) ([]json.RawMessage, error)
	Close() error
}

func validTable(table string) error {
	switch table {
	case TableJobs, TableSavedJobs, TableApplications:
		return nil
	}
	return fmt.Errorf("unknown table: %s", table)
}

// ReadRows reads a table into typed rows.
func ReadRows[T any](ctx context.Context, s Store, table string) ([]T, error) {
	raw, err := s.Read(ctx, table)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](raw)
}

// WriteRows replaces a table with typed rows.
func WriteRows[T any](ctx context.Context, s Store, table string, rows []T) error {
	raw, err := encodeRows(rows)
	if err != nil {
		return err
	}
	return s.Write(ctx, table, raw)
}

// UpsertRows applies a typed read-modify-write transformation to a table and
// returns the rows that were written.
func UpsertRows[T any](ctx context.Context, s Store, table string, fn func(rows []T) ([]T, error)) ([]T, error) {
	raw, err := s.Upsert(ctx, table, func(rawRows []json.RawMessage) ([]json.RawMessage, error) {
		rows, err := decodeRows[T](rawRows)
		if err != nil {
			return nil, err
		}
		next, err := fn(rows)
		if err != nil {
			return nil, err
		}
		return encodeRows(next)
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[T](raw)
}

func decodeRows[T any](raw []json.RawMessage) ([]T, error) {
	rows := make([]T, 0, len(raw))
	for _, r := range raw {
		var row T
		if err := json.Unmarshal(r, &row); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeRows[T any](rows []T) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("failed to encode row: %w", err)
		}
		raw = append(raw, data)
	}
	return raw, nil
}
