package arena

import "fmt"

// noFree marks a slot that is occupied (not on the free list).
const noFree = -1

// Table is a generic POD arena: add/remove/get by stable int32 index,
// reusing freed slots before growing (spec §4.2).
type Table[T any] struct {
	records  []T
	freeNext []int32 // freeNext[i] is the next free slot after i, or noFree if i is live
	freeHead int32   // head of the free list, or -1 if empty
	live     int
}

// NewTable returns an empty table. capacity pre-sizes the backing slices;
// pass 0 for no preallocation.
func NewTable[T any](capacity int) *Table[T] {
	return &Table[T]{
		records:  make([]T, 0, capacity),
		freeNext: make([]int32, 0, capacity),
		freeHead: -1,
	}
}

// Add reuses a freed slot if one exists, else appends, and returns the
// stable index of the new record.
func (t *Table[T]) Add(record T) int32 {
	if t.freeHead != -1 {
		idx := t.freeHead
		t.freeHead = t.freeNext[idx]
		t.records[idx] = record
		t.freeNext[idx] = noFree
		t.live++
		return idx
	}
	idx := int32(len(t.records))
	t.records = append(t.records, record)
	t.freeNext = append(t.freeNext, noFree)
	t.live++
	return idx
}

// Remove pushes index onto the free-list head. The slot's record is
// zeroed so a stale read of the backing record after free is visibly
// wrong rather than silently stale; Get itself rejects freed indices.
func (t *Table[T]) Remove(index int32) error {
	if err := t.checkLive(index); err != nil {
		return err
	}
	var zero T
	t.records[index] = zero
	t.freeNext[index] = t.freeHead
	t.freeHead = index
	t.live--
	return nil
}

// Get returns a pointer to the record at index for in-place mutation.
// Returns an error if index is out of range or on the free list.
func (t *Table[T]) Get(index int32) (*T, error) {
	if err := t.checkLive(index); err != nil {
		return nil, err
	}
	return &t.records[index], nil
}

// Len returns the number of live records.
func (t *Table[T]) Len() int {
	return t.live
}

// Clear empties the table: every arena table's used size is zero after
// this call (spec §4.7 invariant).
func (t *Table[T]) Clear() {
	t.records = t.records[:0]
	t.freeNext = t.freeNext[:0]
	t.freeHead = -1
	t.live = 0
}

func (t *Table[T]) checkLive(index int32) error {
	if index < 0 || int(index) >= len(t.records) {
		return fmt.Errorf("arena: index %d out of range [0,%d)", index, len(t.records))
	}
	if t.freeNext[index] != noFree {
		return fmt.Errorf("arena: index %d is on the free list (use-after-free)", index)
	}
	return nil
}

// IsLive reports whether index currently holds a live record, without
// returning an error; used by debug-mode double-free/use-after-free
// assertions in callers that want to check before acting.
func (t *Table[T]) IsLive(index int32) bool {
	if index < 0 || int(index) >= len(t.records) {
		return false
	}
	return t.freeNext[index] == noFree
}
