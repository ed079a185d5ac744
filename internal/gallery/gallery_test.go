package gallery

import (
	"errors"
	"math"
	"testing"

	"github.com/andresmejia3/bbtface/internal/similarity"
	"github.com/andresmejia3/bbtface/internal/types"
)

func testFaces() []types.Face {
	return []types.Face{
		{ID: 1, Label: "Sheldon", Section: "cast", Descriptor: types.Descriptor{1, 0}},
		{ID: 2, Label: "Leonard", Section: "cast", Descriptor: types.Descriptor{-1, 0}},
		{ID: 3, Label: "Penny", Section: "guests", Descriptor: types.Descriptor{1, 1}},
		{ID: 4, Label: "Raj", Section: "cast", Descriptor: types.Descriptor{0, 0}},
		{ID: 5, Label: "Howard", Section: "cast", Descriptor: types.Descriptor{1, 0, 0}},
	}
}

func TestMatch(t *testing.T) {
	res := Match(types.Descriptor{1, 0}, testFaces(), Options{})

	wantOrder := []string{"Sheldon", "Penny", "Leonard"}
	if len(res.Matches) != len(wantOrder) {
		t.Fatalf("Expected %d matches, got %d", len(wantOrder), len(res.Matches))
	}
	for i, label := range wantOrder {
		if res.Matches[i].Label != label {
			t.Errorf("Match %d = %s, want %s", i, res.Matches[i].Label, label)
		}
	}

	if res.Best == nil || res.Best.ID != 1 {
		t.Errorf("Expected best match ID 1, got %+v", res.Best)
	}
	if math.Abs(res.Best.Similarity-1) > 1e-9 {
		t.Errorf("Expected similarity 1 for identical direction, got %v", res.Best.Similarity)
	}

	if len(res.Skipped) != 2 {
		t.Fatalf("Expected 2 skipped faces, got %d", len(res.Skipped))
	}
	if res.Skipped[0].Label != "Raj" || res.Skipped[1].Label != "Howard" {
		t.Errorf("Unexpected skipped faces: %+v", res.Skipped)
	}
}

func TestMatch_Options(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []int64
	}{
		{"Threshold", Options{Threshold: 0.5}, []int64{1, 3}},
		{"Limit", Options{Limit: 1}, []int64{1}},
		{"Section", Options{Section: "guests"}, []int64{3}},
		{"Threshold excludes everything", Options{Threshold: 1e-12, Section: "guests"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match(types.Descriptor{1, 0}, testFaces(), tt.opts)
			if len(res.Matches) != len(tt.want) {
				t.Fatalf("Expected %d matches, got %+v", len(tt.want), res.Matches)
			}
			for i, id := range tt.want {
				if res.Matches[i].ID != id {
					t.Errorf("Match %d = %d, want %d", i, res.Matches[i].ID, id)
				}
			}
			if len(tt.want) == 0 && res.Best != nil {
				t.Errorf("Expected no best match, got %+v", res.Best)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(types.Descriptor{0.1, 0.2}, 2); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := Validate(types.Descriptor{0, 0}, 2); !errors.Is(err, similarity.ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector, got %v", err)
	}
	if err := Validate(types.Descriptor{1}, 128); !errors.Is(err, similarity.ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
}
