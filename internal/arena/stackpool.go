package arena

import "fmt"

// node is one element of a stack-pool singly-linked list: a value plus
// the arena index of the next node, or -1 if it is the list tail.
type node[T any] struct {
	value T
	next  int32
}

// StackPool is the arena-indexed singly-linked-list primitive used for
// every per-record chain in the core (spec §4.2): event-trigger lists
// per rule, event-item lists per event-data ref, program-trigger lists
// per event, dispose-rule lists, and program trigger-def lists. A list
// is identified entirely by its head index; pushing returns the new
// head, popping walks one node back to the pool's free list.
type StackPool[T any] struct {
	nodes Table[node[T]]
}

// NewStackPool returns an empty stack pool.
func NewStackPool[T any](capacity int) *StackPool[T] {
	return &StackPool[T]{nodes: *NewTable[node[T]](capacity)}
}

// Push prepends value to the list whose current head is head (-1 for an
// empty list) and returns the new head.
func (p *StackPool[T]) Push(head int32, value T) int32 {
	return p.nodes.Add(node[T]{value: value, next: head})
}

// Pop removes the head node of the list, returning its value and the
// new head (-1 if the list is now empty). Returns an error if head is
// not a live node.
func (p *StackPool[T]) Pop(head int32) (T, int32, error) {
	var zero T
	if head == -1 {
		return zero, -1, fmt.Errorf("arena: pop on empty list")
	}
	n, err := p.nodes.Get(head)
	if err != nil {
		return zero, -1, err
	}
	value, next := n.value, n.next
	if err := p.nodes.Remove(head); err != nil {
		return zero, -1, err
	}
	return value, next, nil
}

// Walk calls fn for every value in the list starting at head, in
// head-to-tail order, stopping early if fn returns false.
func (p *StackPool[T]) Walk(head int32, fn func(T) bool) error {
	cur := head
	for cur != -1 {
		n, err := p.nodes.Get(cur)
		if err != nil {
			return err
		}
		if !fn(n.value) {
			return nil
		}
		cur = n.next
	}
	return nil
}

// Dispose walks the entire list starting at head, returning every node
// to the pool's free list (spec §4.2 "disposal walks the chain
// returning nodes to the free list").
func (p *StackPool[T]) Dispose(head int32) error {
	cur := head
	for cur != -1 {
		n, err := p.nodes.Get(cur)
		if err != nil {
			return err
		}
		next := n.next
		if err := p.nodes.Remove(cur); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// Values collects a list into a plain slice, head to tail. Intended for
// tests and debug tooling, not hot paths.
func (p *StackPool[T]) Values(head int32) ([]T, error) {
	var out []T
	err := p.Walk(head, func(v T) bool {
		out = append(out, v)
		return true
	})
	return out, err
}

// Len returns the number of live nodes across all lists in the pool.
func (p *StackPool[T]) Len() int {
	return p.nodes.Len()
}

// Clear empties the pool.
func (p *StackPool[T]) Clear() {
	p.nodes.Clear()
}
