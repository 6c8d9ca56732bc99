package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rpattn/fishql/internal/db"
	"github.com/rpattn/fishql/internal/model"
)

// PostgresStore keeps entities in a shared postgres database.
type PostgresStore struct {
	conn *db.Connection
	opts options
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to postgres and applies the migrations.
func OpenPostgres(ctx context.Context, cfg db.Config, opts ...Option) (*PostgresStore, error) {
	conn, err := db.NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.MigratePool(conn.Pool); err != nil {
		conn.Close()
		return nil, err
	}
	return NewPostgresStore(conn, opts...), nil
}

// NewPostgresStore wraps an open connection. The schema must already exist.
func NewPostgresStore(conn *db.Connection, opts ...Option) *PostgresStore {
	return &PostgresStore{conn: conn, opts: buildOptions(opts)}
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, e model.Entity) (model.Object, error) {
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

	err = s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		var stored string
		err := tx.QueryRow(ctx,
			`SELECT update_date FROM entities WHERE collection = $1 AND id = $2 FOR UPDATE`,
			r.collection, r.id,
		).Scan(&stored)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return insertRecord(ctx, tx, r, payload)
		case err != nil:
			return fmt.Errorf("failed to read %s %d: %w", r.collection, r.id, err)
		}
		if err := r.checkVersion(stored); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE entities SET update_date = $3, payload = $4 WHERE collection = $1 AND id = $2`,
			r.collection, r.id, r.updateDate, payload,
		); err != nil {
			return fmt.Errorf("failed to save %s %d: %w", r.collection, r.id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.object, nil
}

// insertRecord writes a row that did not exist when the transaction read it.
// A concurrent insert of the same id is a conflict.
func insertRecord(ctx context.Context, tx pgx.Tx, r record, payload []byte) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO entities (collection, id, update_date, payload) VALUES ($1, $2, $3, $4)`,
		r.collection, r.id, r.updateDate, payload,
	)
	if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s %d inserted concurrently", ErrConflict, r.collection, r.id)
	}
	if err != nil {
		return fmt.Errorf("failed to save %s %d: %w", r.collection, r.id, err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, collection string, id int) (model.Object, error) {
	var payload []byte
	err := s.conn.Pool.QueryRow(ctx,
		`SELECT payload FROM entities WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", collection, id, err)
	}
	return decodePayload(collection, id, payload)
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, collection string) ([]model.Object, error) {
	rows, err := s.conn.Pool.Query(ctx,
		`SELECT id, payload FROM entities WHERE collection = $1 ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var objects []model.Object
	for rows.Next() {
		var (
			id      int
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		obj, err := decodePayload(collection, id, payload)
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
func (s *PostgresStore) Delete(ctx context.Context, collection string, id int) error {
	tag, err := s.conn.Pool.Exec(ctx,
		`DELETE FROM entities WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, collection, id)
	}
	return nil
}

// NextLocalID implements Store.
func (s *PostgresStore) NextLocalID(ctx context.Context, collection string) (int, error) {
	var id int
	err := s.conn.Pool.QueryRow(ctx,
		`INSERT INTO local_sequences (collection, last_id) VALUES ($1, -1)
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
func (s *PostgresStore) Close() error {
	s.conn.Close()
	return nil
}
