package trigindex

import (
	"fmt"

	"github.com/lexpattern/engine/internal/arena"
	"github.com/lexpattern/engine/internal/ir"
)

// numBuckets is the fixed two-level hash width (spec §4.1: "event id
// mod 16 selects one of 16 buckets").
const numBuckets = 16

// seedBlockSize is the initial bucket capacity before geometric growth.
const seedBlockSize = 1024

// TriggerRef is a stable reference to one entry in the index, returned
// by Add and consumed by Remove. It is the pool slot, not a bucket
// position (bucket positions move on swap-remove; pool slots do not).
type TriggerRef int32

// entry is the pool-resident record: the payload plus a reverse link
// back to its current bucket position, so Remove can fix up the
// element swapped into its place.
type entry[T any] struct {
	value    T
	bucket   uint8
	position int32
}

// bucket holds the two parallel arrays described in spec §4.1: a
// densely packed event-id array for the hot scan loop, and a parallel
// ref array into the shared pool.
type bucket struct {
	eventIDs []uint32
	refs     []int32
}

// Index is the event-trigger index: given an event id, return every
// trigger waiting on it in one pass (spec §4.1).
type Index[T any] struct {
	buckets [numBuckets]bucket
	pool    *arena.Table[entry[T]]
}

// New returns an empty index.
func New[T any]() *Index[T] {
	idx := &Index[T]{pool: arena.NewTable[entry[T]](seedBlockSize)}
	for i := range idx.buckets {
		idx.buckets[i] = bucket{
			eventIDs: make([]uint32, 0, seedBlockSize),
			refs:     make([]int32, 0, seedBlockSize),
		}
	}
	return idx
}

func bucketOf(id ir.EventID) uint8 {
	return uint8(uint32(id) % numBuckets)
}

// Add registers trigger as waiting on eventID and returns a stable ref
// for later Remove.
func (idx *Index[T]) Add(eventID ir.EventID, trigger T) TriggerRef {
	b := bucketOf(eventID)
	pos := int32(len(idx.buckets[b].eventIDs))
	ref := idx.pool.Add(entry[T]{value: trigger, bucket: b, position: pos})

	idx.buckets[b].eventIDs = append(idx.buckets[b].eventIDs, uint32(eventID))
	idx.buckets[b].refs = append(idx.buckets[b].refs, int32(ref))
	return TriggerRef(ref)
}

// Remove deletes the trigger identified by ref in O(1): swap its bucket
// slot with the bucket's tail slot and fix up the reverse link of
// whichever entry was swapped into ref's old position.
func (idx *Index[T]) Remove(ref TriggerRef) error {
	e, err := idx.pool.Get(int32(ref))
	if err != nil {
		return fmt.Errorf("trigindex: remove %d: %w", ref, err)
	}
	b := &idx.buckets[e.bucket]
	pos := e.position
	last := int32(len(b.eventIDs)) - 1

	if pos != last {
		b.eventIDs[pos] = b.eventIDs[last]
		b.refs[pos] = b.refs[last]
		movedRef := b.refs[pos]
		moved, err := idx.pool.Get(movedRef)
		if err != nil {
			return fmt.Errorf("trigindex: remove %d: fixing up swapped neighbour: %w", ref, err)
		}
		moved.position = pos
	}
	b.eventIDs = b.eventIDs[:last]
	b.refs = b.refs[:last]

	return idx.pool.Remove(int32(ref))
}

// Scan selects the bucket for eventID and yields every trigger whose
// stored event id matches, in bucket order. The equality scan is the
// hot loop the layout is chosen for (spec §4.1 performance contract);
// this is the scalar reference form the layout leaves room to vectorise.
func (idx *Index[T]) Scan(eventID ir.EventID) ([]T, error) {
	b := &idx.buckets[bucketOf(eventID)]
	want := uint32(eventID)
	var out []T
	for i, id := range b.eventIDs {
		if id != want {
			continue
		}
		e, err := idx.pool.Get(b.refs[i])
		if err != nil {
			return nil, fmt.Errorf("trigindex: scan %v: %w", eventID, err)
		}
		out = append(out, e.value)
	}
	return out, nil
}

// Len returns the total number of live triggers across all buckets.
func (idx *Index[T]) Len() int {
	return idx.pool.Len()
}
