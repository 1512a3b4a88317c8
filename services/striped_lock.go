package services

import (
	"hash/fnv"
	"slices"
	"sync"
)

const lockStripes = 256

// stripedLock serializes the writers of one message without holding a
// mutex per message: ids hashing to the same stripe share a mutex.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func stripe(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % lockStripes)
}

func (l *stripedLock) lock(id string) func() {
	mu := &l.stripes[stripe(id)]
	mu.Lock()
	return mu.Unlock
}

// lockAll takes the stripes of ids in ascending order, so two callers
// locking overlapping sets cannot deadlock.
func (l *stripedLock) lockAll(ids []string) func() {
	idx := make([]int, 0, len(ids))
	for _, id := range ids {
		idx = append(idx, stripe(id))
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)
	for _, i := range idx {
		l.stripes[i].Lock()
	}
	return func() {
		for _, i := range slices.Backward(idx) {
			l.stripes[i].Unlock()
		}
	}
}
