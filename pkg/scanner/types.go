package scanner

import "intlscan/pkg/extractor"

// Config controls a scan.
type Config struct {
	// Root is the directory the include/exclude globs are relative to.
	Root string

	// Include globs select source files (doublestar syntax). Empty means
	// every supported source file under Root.
	Include []string

	// Exclude globs remove files and whole directories from the scan.
	Exclude []string

	// OutputPath is the catalog JSON file.
	OutputPath string

	// Workers overrides the extraction worker count when > 0.
	Workers int

	// DebounceMs is the watch-mode per-file debounce window.
	DebounceMs int
}

// DefaultInclude matches the source extensions the extractor understands.
var DefaultInclude = []string{"**/*.{ts,tsx,js,jsx,mts,cts,mjs,cjs}"}

// DefaultExclude skips dependency and build output directories.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
	"**/.next/**",
}

// DefaultConfig returns a config scanning the current directory into
// messages.json.
func DefaultConfig() Config {
	return Config{
		Root:       ".",
		Include:    DefaultInclude,
		Exclude:    DefaultExclude,
		OutputPath: "messages.json",
		DebounceMs: 200,
	}
}

// FileKeys is one file's resolved extraction.
type FileKeys struct {
	File string
	Keys []extractor.Key
}

// Stats summarizes a scan for logging and tests.
type Stats struct {
	FilesDiscovered  int
	FilesExtracted   int
	FilesFailed      int
	KeysExtracted    int
	KeysAdded        int
	KeysRetained     int
	KeysOrphaned     int
	Conflicts        int
	DiscoveryTimeMs  int64
	ExtractionTimeMs int64
	MergeTimeMs      int64
	TotalTimeMs      int64
}
