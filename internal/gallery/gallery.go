// Package gallery matches a probe descriptor against stored faces.
package gallery

import (
	"github.com/andresmejia3/bbtface/internal/similarity"
	"github.com/andresmejia3/bbtface/internal/types"
)

// Options controls how a ranking is cut down for the caller.
type Options struct {
	// Threshold keeps only faces with distance strictly below it. Zero disables the filter.
	Threshold float64
	// Limit caps the number of returned matches. Zero means no limit.
	Limit int
	// Section restricts the gallery to one section. Empty means all sections.
	Section string
	// Workers is passed to similarity.RankParallel.
	Workers int
}

// Result is a ranked gallery lookup.
type Result struct {
	Matches []types.FaceMatch   `json:"matches"`
	Skipped []types.SkippedFace `json:"skipped"`
	Best    *types.FaceMatch    `json:"best"`
}

// Match ranks faces against query. Faces that cannot be compared
// (wrong dimension, zero descriptor) are reported in Skipped.
func Match(query types.Descriptor, faces []types.Face, opts Options) Result {
	entries := make([]similarity.Entry[int, float32], 0, len(faces))
	for i, f := range faces {
		if opts.Section != "" && f.Section != opts.Section {
			continue
		}
		entries = append(entries, similarity.Entry[int, float32]{ID: i, Vector: f.Descriptor})
	}

	ranking := similarity.RankParallel([]float32(query), entries, opts.Workers)

	kept := ranking.Matches
	if opts.Threshold > 0 {
		kept = ranking.Within(opts.Threshold)
	}
	if opts.Limit > 0 && len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}

	res := Result{
		Matches: make([]types.FaceMatch, 0, len(kept)),
		Skipped: make([]types.SkippedFace, 0, len(ranking.Skipped)),
	}
	for _, m := range kept {
		f := faces[m.ID]
		res.Matches = append(res.Matches, types.FaceMatch{
			ID:         f.ID,
			Label:      f.Label,
			Section:    f.Section,
			Distance:   m.Distance,
			Similarity: similarity.Similarity(m.Distance),
		})
	}
	for _, s := range ranking.Skipped {
		f := faces[s.ID]
		res.Skipped = append(res.Skipped, types.SkippedFace{ID: f.ID, Label: f.Label, Reason: s.Err.Error()})
	}
	if len(res.Matches) > 0 {
		best := res.Matches[0]
		res.Best = &best
	}
	return res
}

// Validate checks that a probe descriptor can be compared at all.
// dim <= 0 skips the length check.
func Validate(query types.Descriptor, dim int) error {
	return similarity.Check([]float32(query), dim)
}
