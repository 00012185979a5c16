package extractor

// Key is a resolved, namespace-qualified translation key.
//
// FullKey is the namespace path segments and the leaf key joined with ".".
// Line/Column are 1-based and point at the call site of the first
// occurrence; duplicates within a file collapse to the first one.
type Key struct {
	FullKey string
	File    string
	Line    uint32
	Column  uint32
}

// BindingDecl records a local name bound to a namespace path, e.g.
// `const t = useTranslations("Checkout.Summary")` binds "t" to
// ["Checkout", "Summary"] within the scope the declaration appears in.
type BindingDecl struct {
	LocalName string
	Namespace []string
	Scope     ScopeID
	Line      uint32
	Column    uint32
}

// RawRef is a key-use call site before namespace resolution: a call on a
// local name (`t("hello")`, `t.rich("hello")`) with a string-literal key.
type RawRef struct {
	LocalName string
	LeafKey   string
	Scope     ScopeID
	Line      uint32
	Column    uint32
}

// Diagnostic is a non-fatal extraction warning (non-literal key argument,
// binding used outside its scope). Diagnostics never abort a file.
type Diagnostic struct {
	File    string
	Line    uint32
	Column  uint32
	Message string
}

// FileExtraction holds everything extracted from one source file: the
// namespace binding declarations, the raw key references, the scope table
// both are expressed against, and any diagnostics from the walk.
//
// A FileExtraction is file-scoped and never shared across files.
type FileExtraction struct {
	File        string
	Scopes      ScopeTable
	Bindings    []BindingDecl
	Refs        []RawRef
	Diagnostics []Diagnostic
}
