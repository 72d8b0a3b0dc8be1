package engine

// disposeWindow is the fixed sliding-window width W from spec §4.4.3.
const disposeWindow = 64

// farFutureEntry is one min-heap entry for a rule whose expiry lies
// beyond the current sliding window.
type farFutureEntry struct {
	expiryOrdpos int64
	ruleRef      int32
}

// disposeHeap is a min-heap of farFutureEntry ordered by expiryOrdpos,
// used for disposals the W=64 sliding window cannot yet reach (spec
// §4.4.3).
type disposeHeap []farFutureEntry

func (h disposeHeap) Len() int            { return len(h) }
func (h disposeHeap) Less(i, j int) bool  { return h[i].expiryOrdpos < h[j].expiryOrdpos }
func (h disposeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *disposeHeap) Push(x interface{}) { *h = append(*h, x.(farFutureEntry)) }
func (h *disposeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
