package extractor

import "strings"

// Resolve turns a file's raw key references into fully-qualified keys by
// looking each reference's local name up in the innermost enclosing
// scope's binding table (lexical shadowing: innermost wins).
//
// References whose local name has no binding in any enclosing scope are
// dropped with an "unresolved translation call" diagnostic. Duplicate
// fully-qualified keys collapse to the first occurrence.
//
// The result is deterministic for a fixed source text: it depends only on
// the recorded walk order, never on map iteration or goroutine scheduling.
func Resolve(fe *FileExtraction) ([]Key, []Diagnostic) {
	// scope -> local name -> namespace path. Within one scope a later
	// rebinding of the same name wins, matching source order.
	bindings := make(map[ScopeID]map[string][]string)
	for _, b := range fe.Bindings {
		table, ok := bindings[b.Scope]
		if !ok {
			table = make(map[string][]string)
			bindings[b.Scope] = table
		}
		table[b.LocalName] = b.Namespace
	}

	var keys []Key
	var diags []Diagnostic
	seen := make(map[string]struct{})

	for _, ref := range fe.Refs {
		namespace, ok := lookup(fe, bindings, ref.Scope, ref.LocalName)
		if !ok {
			diags = append(diags, Diagnostic{
				File:    fe.File,
				Line:    ref.Line,
				Column:  ref.Column,
				Message: "unresolved translation call: " + ref.LocalName,
			})
			continue
		}

		full := joinKey(namespace, ref.LeafKey)
		if _, dup := seen[full]; dup {
			continue
		}
		seen[full] = struct{}{}
		keys = append(keys, Key{
			FullKey: full,
			File:    fe.File,
			Line:    ref.Line,
			Column:  ref.Column,
		})
	}

	return keys, diags
}

// lookup walks the scope chain from innermost to outermost.
func lookup(fe *FileExtraction, bindings map[ScopeID]map[string][]string, scope ScopeID, name string) ([]string, bool) {
	for s := scope; s != -1; s = fe.Scopes.Parent(s) {
		if table, ok := bindings[s]; ok {
			if ns, ok := table[name]; ok {
				return ns, true
			}
		}
	}
	return nil, false
}

// splitNamespace splits a dotted namespace literal into path segments.
// An empty literal yields an empty path (keys end up unprefixed).
func splitNamespace(literal string) []string {
	if literal == "" {
		return nil
	}
	return strings.Split(literal, ".")
}

// joinKey builds the fully-qualified key: namespace segments and the leaf
// joined with ".".
func joinKey(namespace []string, leaf string) string {
	if len(namespace) == 0 {
		return leaf
	}
	return strings.Join(namespace, ".") + "." + leaf
}
