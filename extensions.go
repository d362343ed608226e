package main

import (
	"path/filepath"
	"strings"
)

// defaultExtensions is the stock set of source and text suffixes considered
// during directory traversal when --extensions is not given.
var defaultExtensions = []string{
	".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".cpp", ".c",
	".h", ".hpp", ".cs", ".rb", ".php", ".go", ".rs", ".swift",
	".kt", ".kts", ".scala", ".sql", ".html", ".css", ".scss",
	".sass", ".less", ".md", ".txt", ".json", ".yaml", ".yml",
}

// ExtensionSet selects which discovered files are eligible for tokenization.
// Matching is a case-sensitive comparison against the path's extension.
type ExtensionSet map[string]struct{}

// defaultExtensionSet builds the set used when no --extensions override is given.
func defaultExtensionSet() ExtensionSet {
	set := make(ExtensionSet, len(defaultExtensions))
	for _, ext := range defaultExtensions {
		set[ext] = struct{}{}
	}
	return set
}

// parseExtensions normalizes a comma-separated extension list. Entries
// without a leading dot get one prepended; surrounding whitespace is
// trimmed; empty entries are dropped.
func parseExtensions(list string) ExtensionSet {
	set := make(ExtensionSet)
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.HasPrefix(entry, ".") {
			entry = "." + entry
		}
		set[entry] = struct{}{}
	}
	return set
}

// match reports whether the path's extension is in the set.
func (s ExtensionSet) match(path string) bool {
	_, ok := s[filepath.Ext(path)]
	return ok
}
