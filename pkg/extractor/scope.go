package extractor

// ScopeID indexes a frame in a ScopeTable. The root (file) scope is 0.
type ScopeID = int

// ScopeTable is an arena of lexical scope frames linked to their parents
// by index. Frames are pushed as the tree walk enters function-like or
// block-like nodes and referenced by the bindings and references recorded
// inside them; lookups walk parent links from innermost to outermost.
type ScopeTable struct {
	parents []int
}

// NewScopeTable returns a table containing only the root scope.
func NewScopeTable() ScopeTable {
	return ScopeTable{parents: []int{-1}}
}

// Push appends a new frame under parent and returns its id.
func (st *ScopeTable) Push(parent ScopeID) ScopeID {
	st.parents = append(st.parents, parent)
	return len(st.parents) - 1
}

// Parent returns the parent frame id, or -1 for the root.
func (st *ScopeTable) Parent(id ScopeID) ScopeID {
	return st.parents[id]
}

// Len returns the number of frames.
func (st *ScopeTable) Len() int {
	return len(st.parents)
}

// Encloses reports whether outer is id itself or one of its ancestors.
func (st *ScopeTable) Encloses(outer, id ScopeID) bool {
	for s := id; s != -1; s = st.parents[s] {
		if s == outer {
			return true
		}
	}
	return false
}
