package store

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/andresmejia3/bbtface/internal/gallery"
	"github.com/andresmejia3/bbtface/internal/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestStore starts a pgvector container and returns a migrated Store.
// It requires Docker to be running.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("faces_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	s, err := New(ctx, connStr, 4)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStoreIntegration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now, err := s.Ping(ctx)
	if err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if now.IsZero() {
		t.Error("Ping returned zero time")
	}

	idA, err := s.InsertFace(ctx, types.Face{Label: "Sheldon", Section: "cast", Descriptor: types.Descriptor{1, 0, 0}})
	if err != nil {
		t.Fatalf("InsertFace failed: %v", err)
	}
	if idA <= 0 {
		t.Errorf("Expected positive ID, got %d", idA)
	}

	batch := []types.Face{
		{Label: "Penny", Section: "guests", Descriptor: types.Descriptor{0, 1, 0}},
		{Label: "Leonard", Section: "cast", Descriptor: types.Descriptor{0.9, 0.1, 0}},
		{Label: "Stray", Section: "cast", Descriptor: types.Descriptor{1, 1}},
	}
	inserted := 0
	if err := s.InsertFaces(ctx, batch, func() { inserted++ }); err != nil {
		t.Fatalf("InsertFaces failed: %v", err)
	}
	if inserted != len(batch) {
		t.Errorf("Expected %d progress callbacks, got %d", len(batch), inserted)
	}

	faces, err := s.ListFaces(ctx, "")
	if err != nil {
		t.Fatalf("ListFaces failed: %v", err)
	}
	if len(faces) != 4 {
		t.Fatalf("Expected 4 faces, got %d", len(faces))
	}
	if faces[0].Label != "Sheldon" || len(faces[0].Descriptor) != 3 {
		t.Errorf("Unexpected first face: %+v", faces[0])
	}

	cast, err := s.ListFaces(ctx, "cast")
	if err != nil {
		t.Fatalf("ListFaces(cast) failed: %v", err)
	}
	if len(cast) != 3 {
		t.Errorf("Expected 3 cast faces, got %d", len(cast))
	}

	// The in-process ranking and pgvector must agree on order and distance
	probe := types.Descriptor{1, 0.05, 0}
	res := gallery.Match(probe, faces, gallery.Options{})
	if len(res.Skipped) != 1 || res.Skipped[0].Label != "Stray" {
		t.Errorf("Expected the 2-d face to be skipped, got %+v", res.Skipped)
	}

	nearest, err := s.NearestByDistance(ctx, probe, 10)
	if err != nil {
		t.Fatalf("NearestByDistance failed: %v", err)
	}
	if len(nearest) != len(res.Matches) {
		t.Fatalf("pgvector returned %d rows, ranking returned %d", len(nearest), len(res.Matches))
	}
	for i := range nearest {
		if nearest[i].ID != res.Matches[i].ID {
			t.Errorf("Row %d: pgvector ID %d, ranking ID %d", i, nearest[i].ID, res.Matches[i].ID)
		}
		if math.Abs(nearest[i].Distance-res.Matches[i].Distance) > 1e-5 {
			t.Errorf("Row %d: pgvector distance %v, ranking distance %v", i, nearest[i].Distance, res.Matches[i].Distance)
		}
	}

	n, err := s.DeleteLabel(ctx, "Stray")
	if err != nil {
		t.Fatalf("DeleteLabel failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 deleted row, got %d", n)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := s.ListFaces(ctx, ""); err == nil {
		t.Error("Expected ListFaces to fail after Reset dropped the table")
	}
}

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}
