package similarity

import (
	"sort"
	"sync"
)

// minChunk is the smallest gallery slice worth handing to its own goroutine.
const minChunk = 256

// Entry is a labeled gallery descriptor. The ID is carried through untouched.
type Entry[K any, T Float] struct {
	ID     K
	Vector []T
}

// Match is a gallery entry that was compared successfully.
type Match[K any] struct {
	ID       K
	Distance float64
}

// Skip records a gallery entry that could not be compared.
type Skip[K any] struct {
	ID  K
	Err error
}

// Ranking is the result of comparing a query against a gallery.
// Matches are ordered by ascending distance; Skipped keeps gallery order.
type Ranking[K any] struct {
	Matches []Match[K]
	Skipped []Skip[K]
}

// Best returns the closest match, if any entry validated.
func (r Ranking[K]) Best() (Match[K], bool) {
	if len(r.Matches) == 0 {
		var zero Match[K]
		return zero, false
	}
	return r.Matches[0], true
}

// Within returns the leading matches whose distance is strictly below threshold.
func (r Ranking[K]) Within(threshold float64) []Match[K] {
	n := sort.Search(len(r.Matches), func(i int) bool {
		return r.Matches[i].Distance >= threshold
	})
	return r.Matches[:n]
}

// Rank compares query against every gallery entry and returns the matches
// sorted by ascending distance. Ties keep their gallery order.
// Entries that fail validation are excluded and reported in Skipped.
func Rank[K any, T Float](query []T, gallery []Entry[K, T]) Ranking[K] {
	r := rankUnsorted(query, gallery)
	sortMatches(r.Matches)
	return r
}

// RankParallel is Rank spread over up to workers goroutines.
// The gallery is cut into contiguous chunks and the partial results are
// joined back in chunk order before the stable sort, so the output is
// identical to Rank.
func RankParallel[K any, T Float](query []T, gallery []Entry[K, T], workers int) Ranking[K] {
	if workers > len(gallery)/minChunk {
		workers = len(gallery) / minChunk
	}
	if workers <= 1 {
		return Rank(query, gallery)
	}

	chunkSize := (len(gallery) + workers - 1) / workers
	parts := make([]Ranking[K], workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, len(gallery))
		if start >= end {
			break
		}
		wg.Add(1)
		go func(slot int, chunk []Entry[K, T]) {
			defer wg.Done()
			parts[slot] = rankUnsorted(query, chunk)
		}(i, gallery[start:end])
	}
	wg.Wait()

	r := Ranking[K]{Matches: make([]Match[K], 0, len(gallery))}
	for _, p := range parts {
		r.Matches = append(r.Matches, p.Matches...)
		r.Skipped = append(r.Skipped, p.Skipped...)
	}
	sortMatches(r.Matches)
	return r
}

func rankUnsorted[K any, T Float](query []T, chunk []Entry[K, T]) Ranking[K] {
	var r Ranking[K]
	r.Matches = make([]Match[K], 0, len(chunk))
	for _, e := range chunk {
		d, err := Distance(query, e.Vector)
		if err != nil {
			r.Skipped = append(r.Skipped, Skip[K]{ID: e.ID, Err: err})
			continue
		}
		r.Matches = append(r.Matches, Match[K]{ID: e.ID, Distance: d})
	}
	return r
}

func sortMatches[K any](m []Match[K]) {
	sort.SliceStable(m, func(i, j int) bool {
		return m[i].Distance < m[j].Distance
	})
}
