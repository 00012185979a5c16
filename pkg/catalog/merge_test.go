package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intlscan/pkg/extractor"
)

func keysFrom(file string, fullKeys ...string) []extractor.Key {
	out := make([]extractor.Key, len(fullKeys))
	for i, k := range fullKeys {
		out[i] = extractor.Key{FullKey: k, File: file}
	}
	return out
}

func TestMerge_NewKeysSeededWithPlaceholder(t *testing.T) {
	out, res := Merge(New(), keysFrom("a.tsx", "Home.title", "Home.subtitle"), Reconcile)

	assert.Equal(t, []string{"Home.title", "Home.subtitle"}, res.Added)
	assert.Empty(t, res.Retained)
	assert.Empty(t, res.Orphaned)

	v, ok := out.Lookup("Home.title")
	require.True(t, ok)
	assert.Equal(t, "Home.title", v.Text())
}

func TestMerge_ExistingValuesNeverOverwritten(t *testing.T) {
	existing := New()
	require.NoError(t, existing.Set("Home.title", String("Willkommen")))

	out, res := Merge(existing, keysFrom("a.tsx", "Home.title"), Reconcile)

	assert.Equal(t, []string{"Home.title"}, res.Retained)
	assert.Empty(t, res.Added)

	v, _ := out.Lookup("Home.title")
	assert.Equal(t, "Willkommen", v.Text())
}

func TestMerge_Idempotent(t *testing.T) {
	keys := keysFrom("a.tsx", "Nav.home", "Nav.about", "Footer.legal")

	first, res1 := Merge(New(), keys, Reconcile)
	assert.True(t, res1.Changed())

	second, res2 := Merge(first, keys, Reconcile)
	assert.False(t, res2.Changed())
	assert.True(t, first.Equal(second))
}

func TestMerge_ReconcileOrphansUnreferencedKeys(t *testing.T) {
	existing := New()
	require.NoError(t, existing.Set("Keep.me", String("kept")))
	require.NoError(t, existing.Set("Drop.me", String("dropped")))

	out, res := Merge(existing, keysFrom("a.tsx", "Keep.me"), Reconcile)

	assert.Equal(t, []string{"Drop.me"}, res.Orphaned)
	_, ok := out.Lookup("Drop.me")
	assert.False(t, ok)
	v, _ := out.Lookup("Keep.me")
	assert.Equal(t, "kept", v.Text())
}

func TestMerge_IncrementalNeverOrphans(t *testing.T) {
	existing := New()
	require.NoError(t, existing.Set("Old.key", String("old")))

	out, res := Merge(existing, keysFrom("b.tsx", "New.key"), Incremental)

	assert.Empty(t, res.Orphaned)
	assert.Equal(t, []string{"New.key"}, res.Added)

	_, ok := out.Lookup("Old.key")
	assert.True(t, ok)
	_, ok = out.Lookup("New.key")
	assert.True(t, ok)
}

func TestMerge_ExistingCatalogNotMutated(t *testing.T) {
	existing := New()
	require.NoError(t, existing.Set("A.a", String("a")))
	snapshot := existing.Clone()

	_, _ = Merge(existing, keysFrom("a.tsx", "A.a", "B.b"), Reconcile)
	_, _ = Merge(existing, keysFrom("a.tsx", "C.c"), Incremental)

	assert.True(t, existing.Equal(snapshot))
}

func TestMerge_CrossFileDuplicateReportsConflict(t *testing.T) {
	keys := []extractor.Key{
		{FullKey: "Shared.label", File: "a.tsx"},
		{FullKey: "Shared.label", File: "b.tsx"},
	}

	out, res := Merge(New(), keys, Reconcile)

	assert.Equal(t, []string{"Shared.label"}, res.Added)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "Shared.label", res.Conflicts[0].Key)
	assert.ElementsMatch(t, []string{"a.tsx", "b.tsx"}, res.Conflicts[0].Files)
	assert.Equal(t, 1, out.Len())
}

func TestMerge_SameFileDuplicateIsNotConflict(t *testing.T) {
	keys := []extractor.Key{
		{FullKey: "Dup.key", File: "a.tsx"},
		{FullKey: "Dup.key", File: "a.tsx"},
	}

	_, res := Merge(New(), keys, Reconcile)

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, []string{"Dup.key"}, res.Added)
}

func TestMerge_PathConflictRecordedNotFatal(t *testing.T) {
	keys := []extractor.Key{
		{FullKey: "Nav.home", File: "a.tsx"},
		{FullKey: "Nav.home.deep", File: "b.tsx"},
	}

	out, res := Merge(New(), keys, Reconcile)

	assert.Equal(t, []string{"Nav.home"}, res.Added)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "Nav.home.deep", res.Conflicts[0].Key)
	assert.Equal(t, 1, out.Len())
}

func TestMerge_ReconcilePreservesInvalidEntries(t *testing.T) {
	existing := New()
	require.NoError(t, json.Unmarshal([]byte(`{"Legacy":{"count":42},"Live":{"key":"v"}}`), existing))

	out, res := Merge(existing, keysFrom("a.tsx", "Live.key"), Reconcile)

	assert.Empty(t, res.Orphaned)

	v, ok := out.Lookup("Legacy.count")
	require.True(t, ok)
	assert.True(t, v.IsInvalid())
	assert.JSONEq(t, `42`, string(v.Raw()))
}

func TestMerge_InvalidEntryNeverMergedOver(t *testing.T) {
	existing := New()
	require.NoError(t, json.Unmarshal([]byte(`{"Bad":{"entry":true}}`), existing))

	out, res := Merge(existing, keysFrom("a.tsx", "Bad.entry"), Reconcile)

	assert.Equal(t, []string{"Bad.entry"}, res.Retained)
	v, _ := out.Lookup("Bad.entry")
	assert.True(t, v.IsInvalid())
}

func TestMerge_OutputFollowsExtractionOrder(t *testing.T) {
	existing := New()
	require.NoError(t, existing.Set("Z.z", String("zz")))
	require.NoError(t, existing.Set("A.a", String("aa")))

	out, _ := Merge(existing, keysFrom("a.tsx", "A.a", "Z.z"), Reconcile)

	assert.Equal(t, []string{"A.a", "Z.z"}, out.Keys())
}
