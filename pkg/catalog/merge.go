package catalog

import (
	"intlscan/pkg/extractor"
)

// Mode selects merge semantics.
type Mode int

const (
	// Incremental preserves every existing catalog entry; absence from
	// the extraction never orphans a key. Used when only a subset of
	// files was scanned (watch mode).
	Incremental Mode = iota

	// Reconcile treats the extraction as exhaustive: existing keys not
	// extracted are reported as orphaned and excluded from the output.
	// Used for full one-shot scans.
	Reconcile
)

// Conflict records a fully-qualified key extracted from more than one
// file, or whose path collides with an existing entry of a different
// shape. Conflicts are reported, never fatal.
type Conflict struct {
	Key   string
	Files []string
}

// MergeResult is the diff produced by a merge.
type MergeResult struct {
	// Added keys were absent from the existing catalog and seeded with
	// the key itself as a placeholder value.
	Added []string

	// Retained keys were present; their existing values were preserved
	// verbatim regardless of extraction.
	Retained []string

	// Orphaned keys were present but unreferenced by the (exhaustive)
	// extraction. Only populated in Reconcile mode; orphans are excluded
	// from the output, never silently deleted in incremental merges.
	Orphaned []string

	Conflicts []Conflict
}

// Changed reports whether the merge produced a catalog different from
// the existing one.
func (r *MergeResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Orphaned) > 0
}

// Merge reconciles extracted keys against an existing catalog.
//
// Policy, which holds exactly:
//   - an extracted key present in existing keeps its existing value
//     unchanged (translator edits are authoritative);
//   - an extracted key absent from existing is inserted with the key
//     itself as placeholder;
//   - merging the same extraction twice against its own output yields no
//     further changes (idempotence);
//   - the same key extracted from two files contributes one entry; the
//     first extraction wins for placeholder purposes and a Conflict is
//     recorded when the files differ.
//
// The existing catalog is never mutated.
func Merge(existing *Catalog, keys []extractor.Key, mode Mode) (*Catalog, *MergeResult) {
	res := &MergeResult{}
	origins := make(map[string]string, len(keys)) // fullKey -> first contributing file
	conflictIdx := make(map[string]int)

	var out *Catalog
	if mode == Incremental {
		out = existing.Clone()
	} else {
		out = New()
	}

	for _, k := range keys {
		if first, dup := origins[k.FullKey]; dup {
			if first != k.File {
				addConflict(res, conflictIdx, k.FullKey, first, k.File)
			}
			continue
		}
		origins[k.FullKey] = k.File

		if mode == Incremental {
			if _, ok := out.Lookup(k.FullKey); ok {
				res.Retained = append(res.Retained, k.FullKey)
				continue
			}
			if err := out.Set(k.FullKey, String(k.FullKey)); err != nil {
				addConflict(res, conflictIdx, k.FullKey, k.File)
				continue
			}
			res.Added = append(res.Added, k.FullKey)
			continue
		}

		// Reconcile: rebuild in extraction order, copying existing values.
		if v, ok := existing.Lookup(k.FullKey); ok {
			if err := out.Set(k.FullKey, v.Clone()); err != nil {
				addConflict(res, conflictIdx, k.FullKey, k.File)
				continue
			}
			res.Retained = append(res.Retained, k.FullKey)
			continue
		}
		if err := out.Set(k.FullKey, String(k.FullKey)); err != nil {
			addConflict(res, conflictIdx, k.FullKey, k.File)
			continue
		}
		res.Added = append(res.Added, k.FullKey)
	}

	if mode == Reconcile {
		// Invalid entries are preserved verbatim even when unreferenced:
		// they are fatal for that entry only, and dropping them would
		// destroy data. Everything else unreferenced is orphaned.
		existing.Walk(func(fullKey string, v *Value) {
			if _, ok := origins[fullKey]; ok {
				return
			}
			if v.IsInvalid() {
				_ = out.Set(fullKey, v.Clone())
				return
			}
			res.Orphaned = append(res.Orphaned, fullKey)
		})
	}

	return out, res
}

func addConflict(res *MergeResult, idx map[string]int, key string, files ...string) {
	if i, ok := idx[key]; ok {
		for _, f := range files {
			if !containsString(res.Conflicts[i].Files, f) {
				res.Conflicts[i].Files = append(res.Conflicts[i].Files, f)
			}
		}
		return
	}
	idx[key] = len(res.Conflicts)
	res.Conflicts = append(res.Conflicts, Conflict{Key: key, Files: files})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
