package socp

import (
	"slices"

	"golang.org/x/exp/rand"
	"gopkg.in/dnaeon/go-priorityqueue.v1"
)

// Partition decomposes remaining rows into second-order block sizes
// drawn uniformly from [1, maxBlock]; whatever is left once the budget
// drops to maxBlock or below becomes the final block. remaining
// strictly decreases every iteration, so the loop terminates. A zero
// budget yields no blocks.
func Partition(rnd *rand.Rand, remaining, maxBlock int) []int {
	var blocks []int
	for remaining > maxBlock {
		size := rnd.Intn(maxBlock) + 1
		blocks = append(blocks, size)
		remaining -= size
	}
	if remaining > 0 {
		blocks = append(blocks, remaining)
	}
	return blocks
}

// BuildCone allocates the derived zero and linear rows and partitions
// the remaining budget into second-order blocks.
func BuildCone(rnd *rand.Rand, p Params) *Cone {
	return &Cone{
		Zero:   p.ZeroRows,
		Linear: p.LinearRows,
		SOC:    Partition(rnd, p.Remaining(), p.MaxBlock),
	}
}

// Coalesce merges the two smallest blocks until every block reaches
// minSize or a single block remains. The row total is conserved and no
// zero-size block can appear; merged sizes come back in ascending
// order and may exceed the bound the blocks were originally drawn
// under.
func Coalesce(blocks []int, minSize int) []int {
	if minSize <= 1 || len(blocks) < 2 {
		return slices.Clone(blocks)
	}

	pq := priorityqueue.New[int, float64](priorityqueue.MinHeap)
	for i, q := range blocks {
		pq.Put(i, float64(q))
	}

	next := len(blocks)
	for pq.Len() > 1 {
		smallest := pq.Get()
		if smallest.Priority >= float64(minSize) {
			pq.Put(smallest.Value, smallest.Priority)
			break
		}
		second := pq.Get()
		pq.Put(next, smallest.Priority+second.Priority)
		next++
	}

	merged := make([]int, 0, pq.Len())
	for pq.Len() > 0 {
		merged = append(merged, int(pq.Get().Priority))
	}
	return merged
}
