package compiler

// NameTable assigns dense ids to names, in order of first use. Two
// independent instances are wired per compile: one for variable names,
// one for pattern/result names (spec §6 "Symbol tables"). Both are
// consumed by the core only through the opaque get_or_create/name_of
// contract; the core never inspects a NameTable's internals.
type NameTable struct {
	ids   map[string]uint32
	names []string
}

// NewNameTable returns an empty table.
func NewNameTable() *NameTable {
	return &NameTable{ids: make(map[string]uint32)}
}

// GetOrCreate returns name's id, assigning the next dense id on first use.
func (t *NameTable) GetOrCreate(name string) uint32 {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := uint32(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	return id
}

// NameOf returns the name registered under id, or "" if id was never assigned.
func (t *NameTable) NameOf(id uint32) string {
	if int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len returns the number of distinct names registered.
func (t *NameTable) Len() int {
	return len(t.names)
}
