package engine

import (
	"fmt"

	"github.com/lexpattern/engine/internal/arena"
	"github.com/lexpattern/engine/internal/ir"
)

// dataStore owns the two arena tables spec §3 calls "event-data
// reference" and "event item": a reference-counted handle to a
// singly-linked chain of variable bindings. It implements the variable
// binding and sub-ref splicing behaviour of spec §4.4.4.
type dataStore struct {
	refs  *arena.Table[ir.EventDataRef]
	items *arena.StackPool[ir.EventItem]
}

func newDataStore() *dataStore {
	return &dataStore{
		refs:  arena.NewTable[ir.EventDataRef](256),
		items: arena.NewStackPool[ir.EventItem](1024),
	}
}

// ensure allocates a ref with refcount 1 if *ref is absent (-1),
// allocating one on first use as spec §4.4.4 requires.
func (d *dataStore) ensure(ref *int32) {
	if *ref != -1 {
		return
	}
	*ref = d.refs.Add(ir.EventDataRef{ItemListHead: -1, RefCount: 1})
}

// bindVariable appends {variable_id, data} to the list identified by
// *ref, allocating the ref on first use.
func (d *dataStore) bindVariable(ref *int32, variableID uint32, eventID ir.EventID, data ir.EventData) error {
	d.ensure(ref)
	r, err := d.refs.Get(*ref)
	if err != nil {
		return fmt.Errorf("engine: bind_variable: %w", err)
	}
	r.ItemListHead = d.items.Push(r.ItemListHead, ir.EventItem{VariableID: variableID, EventID: eventID, Data: data, Next: -1})
	return nil
}

// spliceSub copies every item from subRef's list onto *ref's list (spec
// §4.4.4: "the sub-ref's items are spliced into the rule's list, with
// refcount adjustments"), then releases the machine's hold on subRef.
func (d *dataStore) spliceSub(ref *int32, subRef int32) error {
	sub, err := d.refs.Get(subRef)
	if err != nil {
		return fmt.Errorf("engine: splice_sub: %w", err)
	}
	items, err := d.items.Values(sub.ItemListHead)
	if err != nil {
		return fmt.Errorf("engine: splice_sub: %w", err)
	}
	if len(items) > 0 {
		d.ensure(ref)
		r, err := d.refs.Get(*ref)
		if err != nil {
			return fmt.Errorf("engine: splice_sub: %w", err)
		}
		// items.Values walks head-to-tail; pushing in reverse keeps the
		// spliced order the same as the source list.
		for i := len(items) - 1; i >= 0; i-- {
			r.ItemListHead = d.items.Push(r.ItemListHead, items[i])
		}
	}
	return d.release(subRef)
}

// retain increments ref's refcount (a new holder: an active rule, a
// pending follow event, or a result entry).
func (d *dataStore) retain(ref int32) error {
	if ref == -1 {
		return nil
	}
	r, err := d.refs.Get(ref)
	if err != nil {
		return fmt.Errorf("engine: retain: %w", err)
	}
	r.RefCount++
	return nil
}

// release decrements ref's refcount; at zero, every item in its list is
// returned to the free list (recursing into nested subdatarefs) and the
// ref record itself is freed.
func (d *dataStore) release(ref int32) error {
	if ref == -1 {
		return nil
	}
	r, err := d.refs.Get(ref)
	if err != nil {
		return fmt.Errorf("engine: release: %w", err)
	}
	r.RefCount--
	if r.RefCount > 0 {
		return nil
	}
	items, err := d.items.Values(r.ItemListHead)
	if err != nil {
		return fmt.Errorf("engine: release: %w", err)
	}
	for _, item := range items {
		if item.Data.SubdataRef != -1 {
			if err := d.release(item.Data.SubdataRef); err != nil {
				return err
			}
		}
	}
	if err := d.items.Dispose(r.ItemListHead); err != nil {
		return fmt.Errorf("engine: release: %w", err)
	}
	return d.refs.Remove(ref)
}

// values returns ref's item list, head to tail, for result gathering
// (spec §4.4.6). Returns nil for an absent ref.
func (d *dataStore) values(ref int32) ([]ir.EventItem, error) {
	if ref == -1 {
		return nil, nil
	}
	r, err := d.refs.Get(ref)
	if err != nil {
		return nil, fmt.Errorf("engine: values: %w", err)
	}
	return d.items.Values(r.ItemListHead)
}
