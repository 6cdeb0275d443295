// Package repository defines the longest-drive leaderboard store.
package repository

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/fungoverse/fungo/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: distance DESC, then playerID ASC (deterministic). The BST
// comparator treats "less" as "ranks earlier", so an in-order traversal
// produces the leaderboard from longest drive to shortest.

// distScale controls fixed-point scaling from float64 feet.
// Six decimal places comfortably cover the physics module's precision.
const distScale = 1_000_000

type distFP int64

func toFixedPoint(x float64) distFP {
	if math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return distFP(math.MaxInt64)
	}
	if math.IsInf(x, -1) {
		return distFP(math.MinInt64)
	}
	scaled := x * distScale
	if scaled > float64(math.MaxInt64) {
		return distFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return distFP(math.MinInt64)
	}
	return distFP(math.Round(scaled))
}

func toFloat(x distFP) float64 {
	return float64(x) / distScale
}

// record stores the fixed-point distance plus swing metadata for a player's best.
type record struct {
	dist    distFP
	eventID string
	label   string
}

// treap node
type node struct {
	id    string
	dist  distFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aDist, aID) should appear before (bDist, bID)
// in the leaderboard (longer drives first).
func less(aDist distFP, aID string, bDist distFP, bID string) bool {
	if aDist != bDist {
		return aDist > bDist // longer distance ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// distToPriority converts a distance to a heap priority so longer drives
// sit near the treap root, which keeps TopN walks short.
func distToPriority(dist distFP) uint64 {
	const offset = uint64(1) << 63 // shift negatives into uint64 range
	return uint64(dist) + offset
}

func insert(n *node, id string, dist distFP) *node {
	if n == nil {
		return &node{id: id, dist: dist, prio: distToPriority(dist), size: 1}
	}
	if less(dist, id, n.dist, n.id) {
		n.left = insert(n.left, id, dist)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, dist)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, dist distFP) *node {
	if n == nil {
		return nil
	}
	if dist == n.dist && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, dist)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, dist)
		}
	} else if less(dist, id, n.dist, n.id) {
		n.left = deleteNode(n.left, id, dist)
	} else {
		n.right = deleteNode(n.right, id, dist)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order (longest first).
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	collectTopN(n.left, limit, records, out)

	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, Entry{PlayerID: n.id, DistanceFt: toFloat(rec.dist), EventID: rec.eventID, Label: rec.label})
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// TreapStore keeps each player's best distance, ordered for rank queries.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
}

// NewTreapStore constructs an empty treap store.
func NewTreapStore(_ context.Context) *TreapStore {
	return &TreapStore{
		byID: make(map[string]record),
	}
}

// UpdateBest implements Store.UpdateBest with O(log n) expected time.
func (s *TreapStore) UpdateBest(ctx context.Context, playerID string, distanceFt float64, eventID, label string) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	nd := toFixedPoint(distanceFt)

	s.mu.Lock()
	if old, ok := s.byID[playerID]; ok {
		if nd <= old.dist { // not an improvement
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, playerID, old.dist)
	}
	s.byID[playerID] = record{dist: nd, eventID: eventID, label: label}
	s.root = insert(s.root, playerID, nd)
	total := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRepositoryRecordsTotal(total)
	return true, nil
}

// Rank returns the current rank and best distance for a player.
// Rank is dense: players tied on distance share a rank, and the next
// distinct distance takes the following rank.
func (s *TreapStore) Rank(ctx context.Context, playerID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	// Count distinct distances strictly longer than this player's best.
	longer := make(map[distFP]struct{})
	for _, other := range s.byID {
		if other.dist > rec.dist {
			longer[other.dist] = struct{}{}
		}
	}

	return Entry{
		Rank:       len(longer) + 1,
		PlayerID:   playerID,
		DistanceFt: toFloat(rec.dist),
		EventID:    rec.eventID,
		Label:      rec.label,
	}, nil
}

// TopN returns the top N entries ordered by distance desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)

	assignDenseRanks(out)
	return out, nil
}

// Count returns the total number of players.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// assignDenseRanks assigns ranks over entries already sorted by distance
// desc: equal distances share a rank, the next distinct distance gets the
// next consecutive rank.
func assignDenseRanks(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].DistanceFt != entries[i-1].DistanceFt {
			rank++
		}
		entries[i].Rank = rank
	}
}
