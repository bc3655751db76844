package leaderboard

import (
	"math/rand"
	"sync/atomic"
)

const (
	maxLevel         = 32
	levelProbability = 0.25
)

// rankEntry is one scored row in the ranking skip list.
type rankEntry struct {
	ID    string
	Score int64
}

type skipNode struct {
	entry rankEntry
	next  []*skipNode
	span  []int
}

// ranking is a skip list keyed by (score desc, id asc), augmented with
// span counts for O(log n) rank queries. Same structure a sorted-set
// leaderboard needs: insert-or-update by key, then ask "what rank is
// X" or "who's in positions [a,b]" without a full scan. nodes maps id
// to its current node so lookups by id alone (contains/remove/Rank)
// don't have to guess a node's score to find it in score order.
type ranking struct {
	head   *skipNode
	level  int32
	length int32
	rng    *rand.Rand
	nodes  map[string]*skipNode
}

func newRanking() *ranking {
	head := &skipNode{
		next: make([]*skipNode, maxLevel),
		span: make([]int, maxLevel),
	}
	return &ranking{head: head, level: 1, rng: rand.New(rand.NewSource(1)), nodes: make(map[string]*skipNode)}
}

func (r *ranking) randomLevel() int {
	level := 1
	for level < maxLevel && r.rng.Float64() < levelProbability {
		level++
	}
	return level
}

// before reports whether e sorts strictly ahead of (score, id) in the
// list's (score desc, id asc) order.
func before(e rankEntry, score int64, id string) bool {
	return e.Score > score || (e.Score == score && e.ID < id)
}

// beforeOrEqual additionally admits an exact (score, id) match.
func beforeOrEqual(e rankEntry, score int64, id string) bool {
	return e.Score > score || (e.Score == score && e.ID <= id)
}

// Upsert inserts id at score, or repositions it if already present.
// Higher score ranks first; ties break by id ascending so rank order
// is deterministic regardless of insertion history.
func (r *ranking) Upsert(id string, score int64) {
	if r.contains(id) {
		r.remove(id)
	}

	update := make([]*skipNode, maxLevel)
	rank := make([]int, maxLevel)

	x := r.head
	for i := int(r.level) - 1; i >= 0; i-- {
		if i == int(r.level)-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}
		for x.next[i] != nil && before(x.next[i].entry, score, id) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}

	newLevel := r.randomLevel()
	currentLevel := int(r.level)
	if newLevel > currentLevel {
		for i := currentLevel; i < newLevel; i++ {
			rank[i] = 0
			update[i] = r.head
			update[i].span[i] = int(r.length)
		}
		atomic.StoreInt32(&r.level, int32(newLevel))
	}

	node := &skipNode{
		entry: rankEntry{ID: id, Score: score},
		next:  make([]*skipNode, newLevel),
		span:  make([]int, newLevel),
	}
	for i := 0; i < newLevel; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node
		node.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = (rank[0] - rank[i]) + 1
	}
	for i := newLevel; i < int(r.level); i++ {
		update[i].span[i]++
	}
	atomic.AddInt32(&r.length, 1)
	r.nodes[id] = node
}

func (r *ranking) contains(id string) bool {
	_, ok := r.nodes[id]
	return ok
}

func (r *ranking) remove(id string) bool {
	node, ok := r.nodes[id]
	if !ok {
		return false
	}
	score := node.entry.Score

	update := make([]*skipNode, maxLevel)
	x := r.head
	for i := int(r.level) - 1; i >= 0; i-- {
		for x.next[i] != nil && before(x.next[i].entry, score, id) {
			x = x.next[i]
		}
		update[i] = x
	}
	x = x.next[0]
	if x == nil || x.entry.ID != id {
		return false
	}
	for i := 0; i < int(r.level); i++ {
		if update[i].next[i] == x {
			update[i].span[i] += x.span[i] - 1
			update[i].next[i] = x.next[i]
		} else {
			update[i].span[i]--
		}
	}
	for r.level > 1 && r.head.next[r.level-1] == nil {
		atomic.AddInt32(&r.level, -1)
	}
	atomic.AddInt32(&r.length, -1)
	delete(r.nodes, id)
	return true
}

// Rank returns id's 1-indexed rank, or 0 if it isn't present.
func (r *ranking) Rank(id string) int {
	node, ok := r.nodes[id]
	if !ok {
		return 0
	}
	score := node.entry.Score

	rank := 0
	x := r.head
	for i := int(r.level) - 1; i >= 0; i-- {
		for x.next[i] != nil && beforeOrEqual(x.next[i].entry, score, id) {
			rank += x.span[i]
			x = x.next[i]
			if x.entry.ID == id {
				return rank
			}
		}
	}
	return 0
}

// Range returns entries with rank in [start, end] (1-indexed, inclusive).
func (r *ranking) Range(start, end int) []rankEntry {
	if start <= 0 {
		start = 1
	}
	if end > int(r.length) {
		end = int(r.length)
	}
	if start > end {
		return nil
	}

	result := make([]rankEntry, 0, end-start+1)
	traversed := 0
	x := r.head
	for i := int(r.level) - 1; i >= 0; i-- {
		for x.next[i] != nil && traversed+x.span[i] < start {
			traversed += x.span[i]
			x = x.next[i]
		}
	}
	x = x.next[0]
	for x != nil && traversed < end {
		traversed++
		if traversed >= start {
			result = append(result, x.entry)
		}
		x = x.next[0]
	}
	return result
}

// Len returns the number of entries.
func (r *ranking) Len() int { return int(atomic.LoadInt32(&r.length)) }
