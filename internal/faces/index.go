package faces

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors is the M parameter of the known-face graph. Known sets are
// small (a few images per person), so a modest fan-out is enough.
const hnswMaxNeighbors = 16

// HNSW search tuning.
const (
	// hnswEfSearch is the search candidate pool size.
	hnswEfSearch = 100
	// hnswMinCandidates is the fewest graph neighbours re-ranked exactly per query.
	hnswMinCandidates = 32
	// hnswExactScanBelow is the known-set size under which Nearest scans every
	// face instead of walking the graph.
	hnswExactScanBelow = 1024
)

// Index answers nearest-known-face queries.
type Index interface {
	// Rebuild replaces the indexed set.
	Rebuild(known []KnownFace)
	// Add indexes one more known face without touching the others.
	Add(face KnownFace)
	// Nearest returns the closest known face; ok is false when the index is empty.
	Nearest(probe Embedding) (m Match, ok bool)
	Len() int
}

// NewIndex returns the index implementation for kind ("linear" or "hnsw").
func NewIndex(kind string) (Index, error) {
	switch kind {
	case "", "linear":
		return NewLinearIndex(), nil
	case "hnsw":
		return NewHNSWIndex(), nil
	default:
		return nil, fmt.Errorf("unknown index kind %q", kind)
	}
}

// LinearIndex scans every known face. Exact, and fast enough for the
// handful of identities a single camera demo enrolls.
type LinearIndex struct {
	mu    sync.RWMutex
	known []KnownFace
}

func NewLinearIndex() *LinearIndex {
	return &LinearIndex{}
}

func (l *LinearIndex) Rebuild(known []KnownFace) {
	cp := make([]KnownFace, len(known))
	copy(cp, known)

	l.mu.Lock()
	l.known = cp
	l.mu.Unlock()
}

func (l *LinearIndex) Add(face KnownFace) {
	l.mu.Lock()
	l.known = append(l.known, face)
	l.mu.Unlock()
}

func (l *LinearIndex) Nearest(probe Embedding) (Match, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.known) == 0 {
		return Match{}, false
	}

	// First minimum wins on ties, like argmin.
	best := 0
	dists := Distances(l.known, probe)
	for i, d := range dists {
		if d < dists[best] {
			best = i
		}
	}
	return Match{Face: l.known[best], Distance: dists[best]}, true
}

func (l *LinearIndex) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.known)
}

// HNSWIndex wraps an HNSW graph over known-face embeddings.
type HNSWIndex struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[int64]
	byID   map[int64]KnownFace
	nextID int64
	dims   int // the graph rejects vectors of any other length

	// exactBelow is the size under which Nearest scans instead of searching.
	exactBelow int
}

// NewHNSWIndex returns an empty graph index. Nearest answers exactly: small
// sets are scanned, larger ones re-rank a pool of graph candidates.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{byID: make(map[int64]KnownFace), exactBelow: hnswExactScanBelow}
}

func newGraph() *hnsw.Graph[int64] {
	g := hnsw.NewGraph[int64]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance
	g.EfSearch = hnswEfSearch
	return g
}

func (h *HNSWIndex) Rebuild(known []KnownFace) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.graph = newGraph()
	h.byID = make(map[int64]KnownFace, len(known))
	h.nextID = 0
	h.dims = 0
	for _, face := range known {
		h.addLocked(face)
	}
}

func (h *HNSWIndex) Add(face KnownFace) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph == nil {
		h.graph = newGraph()
	}
	h.addLocked(face)
}

func (h *HNSWIndex) addLocked(face KnownFace) {
	if len(face.Embedding) == 0 {
		return
	}
	if h.dims == 0 {
		h.dims = len(face.Embedding)
	} else if len(face.Embedding) != h.dims {
		return
	}
	id := h.nextID
	h.nextID++
	h.graph.Add(hnsw.MakeNode(id, []float32(face.Embedding)))
	h.byID[id] = face
}

func (h *HNSWIndex) Nearest(probe Embedding) (Match, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil || len(h.byID) == 0 {
		return Match{}, false
	}
	// A probe of another length is infinitely far from everything, as in LinearIndex.
	if len(probe) != h.dims || len(h.byID) < h.exactBelow {
		return h.scanLocked(probe), true
	}

	k := min(len(h.byID), max(h.graph.EfSearch, hnswMinCandidates))
	neighbors := h.graph.Search([]float32(probe), k)
	ids := make([]int64, 0, len(neighbors))
	for _, n := range neighbors {
		ids = append(ids, n.Key)
	}
	if m, ok := h.bestLocked(probe, ids); ok {
		return m, true
	}
	return h.scanLocked(probe), true
}

// scanLocked compares probe with every face in insertion order.
func (h *HNSWIndex) scanLocked(probe Embedding) Match {
	ids := make([]int64, 0, len(h.byID))
	for id := int64(0); id < h.nextID; id++ {
		ids = append(ids, id)
	}
	m, _ := h.bestLocked(probe, ids)
	return m
}

// bestLocked returns the exact minimum over ids. Distances are recomputed in
// float64 so thresholds compare the same as the linear index; ties go to the
// face added first.
func (h *HNSWIndex) bestLocked(probe Embedding, ids []int64) (Match, bool) {
	var (
		best   Match
		bestID int64
		found  bool
	)
	for _, id := range ids {
		face, ok := h.byID[id]
		if !ok {
			continue
		}
		d := Distance(face.Embedding, probe)
		if !found || d < best.Distance || (d == best.Distance && id < bestID) {
			best, bestID, found = Match{Face: face, Distance: d}, id, true
		}
	}
	return best, found
}

func (h *HNSWIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byID)
}
