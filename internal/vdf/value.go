package vdf

// Kind distinguishes the two shapes a Value can take.
type Kind int

const (
	KindLeaf Kind = iota
	KindNode
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindNode:
		return "node"
	default:
		return "unknown"
	}
}

// Entry is one key/value pair of a node. Keys are not unique within a node.
type Entry struct {
	Key   string
	Value *Value
}

// Value is either a leaf string or a node holding an ordered multi-map of
// entries. Duplicate keys are kept in the order they were read.
type Value struct {
	kind    Kind
	leaf    string
	entries []Entry
}

// NewLeaf returns a leaf holding s.
func NewLeaf(s string) *Value {
	return &Value{kind: KindLeaf, leaf: s}
}

// NewNode returns a node holding entries in the given order.
func NewNode(entries ...Entry) *Value {
	v := &Value{kind: KindNode}
	if len(entries) > 0 {
		v.entries = append(make([]Entry, 0, len(entries)), entries...)
	}
	return v
}

// Pair builds an Entry; it keeps fixture trees in tests readable.
func Pair(key string, value *Value) Entry {
	return Entry{Key: key, Value: value}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNode
	}
	return v.kind
}

func (v *Value) IsLeaf() bool { return v != nil && v.kind == KindLeaf }

func (v *Value) IsNode() bool { return v != nil && v.kind == KindNode }

// String returns the leaf text, or "" for nodes.
func (v *Value) String() string {
	if v == nil || v.kind != KindLeaf {
		return ""
	}
	return v.leaf
}

// Len returns the number of entries of a node (0 for leaves).
func (v *Value) Len() int {
	if !v.IsNode() {
		return 0
	}
	return len(v.entries)
}

// Entries returns the node's entries in file order. The slice must not be
// modified by callers.
func (v *Value) Entries() []Entry {
	if !v.IsNode() {
		return nil
	}
	return v.entries
}

// Keys returns every key in order, duplicates included.
func (v *Value) Keys() []string {
	if !v.IsNode() {
		return nil
	}
	keys := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Add appends an entry to a node. Existing entries with the same key are kept.
func (v *Value) Add(key string, value *Value) {
	if !v.IsNode() {
		return
	}
	v.entries = append(v.entries, Entry{Key: key, Value: value})
}

// Get returns the first entry stored under key, or nil.
func (v *Value) Get(key string) *Value {
	for _, e := range v.Entries() {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// GetAll returns every entry stored under key in file order.
func (v *Value) GetAll(key string) []*Value {
	var out []*Value
	for _, e := range v.Entries() {
		if e.Key == key {
			out = append(out, e.Value)
		}
	}
	return out
}

// Lookup walks nested nodes by exact key, taking the first match at each
// level. It returns nil when any step is missing.
func (v *Value) Lookup(path ...string) *Value {
	cur := v
	for _, key := range path {
		if !cur.IsNode() {
			return nil
		}
		cur = cur.Get(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// LeafAt is Lookup restricted to leaves.
func (v *Value) LeafAt(path ...string) (string, bool) {
	found := v.Lookup(path...)
	if !found.IsLeaf() {
		return "", false
	}
	return found.leaf, true
}
