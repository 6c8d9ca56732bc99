package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/rpattn/fishql/internal/db"
	"github.com/rpattn/fishql/internal/model"
)

// SQLiteStore keeps entities in a single sqlite file, the way a device
// stores its offline data.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating when needed) the sqlite database at path and
// applies the migrations.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		path = "fishql.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	if err := db.RunMigrations(sqlDB, db.DriverSQLite); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Printf("[STORE] sqlite store opened at %s", path)
	return &SQLiteStore{db: sqlDB, opts: buildOptions(opts)}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, e model.Entity) (model.Object, error) {
	r, err := newRecord(e, s.opts.now())
	if err != nil {
		return nil, err
	}
	if !r.hasID {
		id, err := s.NextLocalID(ctx, r.collection)
		if err != nil {
			return nil, err
		}
		r.assignID(id)
	}
	payload, err := r.payload()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var stored string
	err = tx.QueryRowContext(ctx,
		`SELECT update_date FROM entities WHERE collection = ? AND id = ?`,
		r.collection, r.id,
	).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s %d: %w", r.collection, r.id, err)
	default:
		if err := r.checkVersion(stored); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entities (collection, id, update_date, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET update_date = excluded.update_date, payload = excluded.payload`,
		r.collection, r.id, r.updateDate, string(payload),
	); err != nil {
		return nil, fmt.Errorf("failed to save %s %d: %w", r.collection, r.id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.object, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, collection string, id int) (model.Object, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM entities WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", collection, id, err)
	}
	return decodePayload(collection, id, []byte(payload))
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, collection string) ([]model.Object, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload FROM entities WHERE collection = ? ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var objects []model.Object
	for rows.Next() {
		var (
			id      int
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		obj, err := decodePayload(collection, id, []byte(payload))
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return objects, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, collection string, id int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entities WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, collection, id)
	}
	return nil
}

// NextLocalID implements Store.
func (s *SQLiteStore) NextLocalID(ctx context.Context, collection string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO local_sequences (collection, last_id) VALUES (?, -1)
		ON CONFLICT (collection) DO UPDATE SET last_id = local_sequences.last_id - 1
		RETURNING last_id`,
		collection,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate local id for %s: %w", collection, err)
	}
	return id, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
