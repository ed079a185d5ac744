package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresmejia3/bbtface/internal/similarity"
	"github.com/andresmejia3/bbtface/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Store manages the PostgreSQL pool and pgvector operations.
type Store struct {
	pool *pgxpool.Pool
}

// New ensures the schema exists and opens a connection pool.
// maxConns <= 0 keeps the pgxpool default.
func New(ctx context.Context, connString string, maxConns int) (*Store, error) {
	// The vector type must exist before the pool can register it on connect
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	conn.Close(ctx)

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(min(maxConns, 1<<15))
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// initSchema creates the faces table and vector extension if they don't exist (Auto-Migration).
// The descriptor column is unsized so rows of a foreign dimension can still be stored and reported.
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS faces (
			id BIGSERIAL PRIMARY KEY,
			label TEXT NOT NULL,
			section TEXT NOT NULL DEFAULT '',
			descriptor VECTOR NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS faces_label_idx ON faces (label);
		CREATE INDEX IF NOT EXISTS faces_section_idx ON faces (section);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping runs the connectivity smoke-test and returns the server clock.
func (s *Store) Ping(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := s.pool.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// ListFaces returns stored faces in insertion order. An empty section returns all of them.
func (s *Store) ListFaces(ctx context.Context, section string) ([]types.Face, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, label, section, descriptor
		FROM faces
		WHERE $1 = '' OR section = $1
		ORDER BY id
	`, section)
	if err != nil {
		return nil, fmt.Errorf("query faces: %w", err)
	}
	defer rows.Close()

	var faces []types.Face
	for rows.Next() {
		var f types.Face
		var vec pgvector.Vector
		if err := rows.Scan(&f.ID, &f.Label, &f.Section, &vec); err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		f.Descriptor = vec.Slice()
		faces = append(faces, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}
	return faces, nil
}

// InsertFace stores a single face and returns its ID.
func (s *Store) InsertFace(ctx context.Context, f types.Face) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		"INSERT INTO faces (label, section, descriptor) VALUES ($1, $2, $3) RETURNING id",
		f.Label, f.Section, pgvector.NewVector(f.Descriptor),
	).Scan(&id)
	return id, err
}

// InsertFaces stores a batch of faces in one transaction.
// onInsert, if set, is called after each row (used for progress reporting).
func (s *Store) InsertFaces(ctx context.Context, faces []types.Face, onInsert func()) error {
	if len(faces) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, f := range faces {
		_, err := tx.Exec(ctx,
			"INSERT INTO faces (label, section, descriptor) VALUES ($1, $2, $3)",
			f.Label, f.Section, pgvector.NewVector(f.Descriptor),
		)
		if err != nil {
			return fmt.Errorf("insert face %d (%s): %w", i, f.Label, err)
		}
		if onInsert != nil {
			onInsert()
		}
	}
	return tx.Commit(ctx)
}

// DeleteLabel removes every face stored under label and returns how many went.
func (s *Store) DeleteLabel(ctx context.Context, label string) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM faces WHERE label = $1", label)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// NearestByDistance asks pgvector for the closest faces using the <=> cosine distance operator.
// Only rows of the probe's dimension are considered, since <=> rejects mixed lengths.
func (s *Store) NearestByDistance(ctx context.Context, vec types.Descriptor, limit int) ([]types.FaceMatch, error) {
	if len(vec) == 0 {
		return nil, errors.New("empty descriptor")
	}
	probe := pgvector.NewVector(vec)
	rows, err := s.pool.Query(ctx, `
		SELECT id, label, section, descriptor <=> $1 AS distance
		FROM faces
		WHERE vector_dims(descriptor) = $2
		ORDER BY distance ASC, id ASC
		LIMIT $3
	`, probe, len(vec), limit)
	if err != nil {
		return nil, fmt.Errorf("query nearest faces: %w", err)
	}
	defer rows.Close()

	var matches []types.FaceMatch
	for rows.Next() {
		var m types.FaceMatch
		if err := rows.Scan(&m.ID, &m.Label, &m.Section, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Similarity = similarity.Similarity(m.Distance)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Reset drops the application tables to clear the database state.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS faces CASCADE")
	return err
}
