package scanner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intlscan/pkg/catalog"
)

func setupWatcher(t *testing.T, root string) (*Watcher, Config) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Root = root
	cfg.OutputPath = filepath.Join(root, "messages.json")

	s := NewScanner(nil)
	t.Cleanup(s.Close)

	w, err := NewWatcher(cfg, s.Extractor(), nil)
	require.NoError(t, err)
	t.Cleanup(w.close)

	return w, cfg
}

func TestWatcher_ProcessFileAddsNewKeys(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "page.tsx", `
const t = useTranslations('Home');
export default () => <p>{t('title')}</p>;
`)
	w, cfg := setupWatcher(t, root)

	cat := catalog.New()
	require.NoError(t, w.processFile(cat, path))

	v, ok := cat.Lookup("Home.title")
	require.True(t, ok)
	assert.Equal(t, "Home.title", v.Text())

	// Persisted too.
	saved := loadCatalog(t, cfg.OutputPath)
	assert.Equal(t, []string{"Home.title"}, saved.Keys())
}

func TestWatcher_ProcessFileNeverOrphans(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "page.tsx", `
const t = useTranslations('Home');
export default () => <p>{t('title')}</p>;
`)
	w, _ := setupWatcher(t, root)

	cat := catalog.New()
	require.NoError(t, cat.Set("Removed.key", catalog.String("still here")))
	require.NoError(t, w.processFile(cat, path))

	_, ok := cat.Lookup("Removed.key")
	assert.True(t, ok)
	_, ok = cat.Lookup("Home.title")
	assert.True(t, ok)
}

func TestWatcher_ProcessFileSkipsUnchangedContent(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "page.tsx", `
const t = useTranslations('A');
export default () => <p>{t('one')}</p>;
`)
	w, cfg := setupWatcher(t, root)

	cat := catalog.New()
	require.NoError(t, w.processFile(cat, path))
	require.NoError(t, w.processFile(cat, path))

	assert.Equal(t, 1, cat.Len())
	assert.Equal(t, []string{"A.one"}, loadCatalog(t, cfg.OutputPath).Keys())
}

func TestWatcher_ProcessFileRereadsChangedContent(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "page.tsx", `
const t = useTranslations('A');
export default () => <p>{t('one')}</p>;
`)
	w, _ := setupWatcher(t, root)

	cat := catalog.New()
	require.NoError(t, w.processFile(cat, path))

	writeFile(t, root, "page.tsx", `
const t = useTranslations('A');
export default () => <p>{t('one')}{t('two')}</p>;
`)
	require.NoError(t, w.processFile(cat, path))

	assert.ElementsMatch(t, []string{"A.one", "A.two"}, cat.Keys())
}

func TestWatcher_ProcessFileToleratesSyntaxErrors(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "broken.ts", "function {{{ nope")
	w, _ := setupWatcher(t, root)

	cat := catalog.New()
	require.NoError(t, w.processFile(cat, path))
	assert.Equal(t, 0, cat.Len())
}

func TestWatcher_ProcessFileToleratesMissingFile(t *testing.T) {
	root := t.TempDir()
	w, _ := setupWatcher(t, root)

	cat := catalog.New()
	require.NoError(t, w.processFile(cat, filepath.Join(root, "gone.ts")))
	assert.Equal(t, 0, cat.Len())
}
