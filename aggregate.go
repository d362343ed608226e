package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// aggregator drives enumeration, applies the size filter, invokes the
// tokenizer, and owns the run totals. out carries the contracted output
// (per-file lines, skip notices, summary); errOut carries diagnostics.
type aggregator struct {
	opts    options
	tok     Tokenizer
	out     io.Writer
	errOut  io.Writer
	totals  RunTotals
	records []FileRecord
}

func newAggregator(opts options, tok Tokenizer, out, errOut io.Writer) *aggregator {
	return &aggregator{opts: opts, tok: tok, out: out, errOut: errOut}
}

// scanPath routes one root argument. A root that is itself a file bypasses
// the extension filter; a directory is enumerated with it.
func (a *aggregator) scanPath(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		a.scanFile(root, info.Size(), true)
		return nil
	}
	if a.opts.gitTracked {
		return walkGitTree(root, a.opts, a.scanCandidate)
	}

	// WalkDir lstats its root and will not descend through a symlinked one,
	// so traversal runs on the resolved path while results keep the
	// caller's spelling.
	scanRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}
	if scanRoot == root {
		return walkTree(root, a.opts, a.scanCandidate)
	}
	return walkTree(scanRoot, a.opts, func(path string, size int64) {
		if rel, relErr := filepath.Rel(scanRoot, path); relErr == nil {
			path = filepath.Join(root, rel)
		}
		a.scanFile(path, size, false)
	})
}

// scanCandidate receives files discovered by traversal.
func (a *aggregator) scanCandidate(path string, size int64) {
	a.scanFile(path, size, false)
}

// scanFile classifies one candidate against the size threshold and counts
// its tokens. explicit marks a file named directly on the command line,
// whose skip notice is printed even without --verbose.
func (a *aggregator) scanFile(path string, size int64, explicit bool) {
	if size > a.opts.maxFileSize {
		a.totals.Skipped++
		a.records = append(a.records, FileRecord{Path: path, Size: size, Skipped: true})
		if explicit || a.opts.verbose {
			fmt.Fprintf(a.out, "Skipped %s: File too large\n", path)
		}
		return
	}

	tokens := a.countFileTokens(path)
	a.totals.Processed++
	a.totals.Tokens += int64(tokens)
	a.records = append(a.records, FileRecord{Path: path, Size: size, Tokens: tokens})
	if a.opts.verbose {
		fmt.Fprintf(a.out, "%s: %s\n", path, formatTokenCount(int64(tokens)))
	}
}

// countFileTokens reads and tokenizes one file. Failures here are the
// per-file tier: diagnose, report zero tokens, keep going.
func (a *aggregator) countFileTokens(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		a.diagnose(path, err)
		return 0
	}
	if !utf8.Valid(data) {
		a.diagnose(path, errInvalidUTF8)
		return 0
	}

	text := string(data)
	if a.opts.htmlToMarkdown && isHTMLPath(path) {
		converted, err := htmlToMarkdown(text)
		if err != nil {
			a.diagnose(path, err)
			return 0
		}
		text = converted
	}
	return a.tok.CountTokens(text)
}

func (a *aggregator) diagnose(path string, err error) {
	fmt.Fprintf(a.errOut, "Error processing %s: %v\n", path, err)
}

// printSummary emits the final block once all roots are done.
func (a *aggregator) printSummary() {
	fmt.Fprintf(a.out, "\nSummary:\n")
	fmt.Fprintf(a.out, "Total files processed: %s\n", humanizeCount(a.totals.Processed))
	fmt.Fprintf(a.out, "Files skipped (too large): %s\n", humanizeCount(a.totals.Skipped))
	fmt.Fprintf(a.out, "Total: %s\n", formatTokenCount(a.totals.Tokens))
}
