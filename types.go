package main

// FileRecord holds the outcome for a single enumerated file.
type FileRecord struct {
	Path    string
	Size    int64
	Tokens  int  // zero when the read or tokenize failed
	Skipped bool // true when the size filter rejected the file
}

// RunTotals accumulates the counters for one run. The aggregator owns it
// exclusively; counters only grow and are read once for the summary.
type RunTotals struct {
	Tokens    int64
	Processed int
	Skipped   int
}

// options is the effective configuration for a run, resolved from flags,
// environment variables, and the optional config file.
type options struct {
	extensions       ExtensionSet
	maxFileSize      int64
	verbose          bool
	respectGitignore bool
	skipHidden       bool
	maxDepth         int
	gitTracked       bool
	encoding         string
	tokenizerFile    string
	htmlToMarkdown   bool
	outputFile       string
	clipboard        bool
	reportPath       string
	pdfPath          string
	interactive      bool
}
