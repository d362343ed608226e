package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokenizer counts whitespace-separated words, which keeps expected
// counts obvious in fixtures.
type stubTokenizer struct{}

func (stubTokenizer) CountTokens(text string) int { return len(strings.Fields(text)) }
func (stubTokenizer) Name() string                { return "stub" }
func (stubTokenizer) Close()                      {}

func newTestAggregator(opts options) (*aggregator, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return newAggregator(opts, stubTokenizer{}, out, errOut), out, errOut
}

func TestScanPathDirectory(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.go", "one two three")
	writeTestFile(t, root, "b.py", "four five")
	writeTestFile(t, root, "big.go", strings.Repeat("x", 100))

	opts := defaultTestOptions()
	opts.maxFileSize = 50
	agg, out, errOut := newTestAggregator(opts)

	require.NoError(t, agg.scanPath(root))

	assert.Equal(t, 2, agg.totals.Processed)
	assert.Equal(t, 1, agg.totals.Skipped)
	assert.Equal(t, int64(5), agg.totals.Tokens)
	assert.Len(t, agg.records, agg.totals.Processed+agg.totals.Skipped)

	// Without --verbose there are no per-file lines and no skip notices for
	// files found by traversal.
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())

	agg.printSummary()
	expected := "\nSummary:\n" +
		"Total files processed: 2\n" +
		"Files skipped (too large): 1\n" +
		"Total: 5 tokens (≈$0.00 at $3/1M tokens)\n"
	assert.Equal(t, expected, out.String())
}

func TestScanPathSingleFileBypassesExtensionFilter(t *testing.T) {
	root := t.TempDir()
	path := writeTestFile(t, root, "payload.bin", "alpha beta")

	agg, _, errOut := newTestAggregator(defaultTestOptions())
	require.NoError(t, agg.scanPath(path))

	assert.Equal(t, 1, agg.totals.Processed)
	assert.Equal(t, int64(2), agg.totals.Tokens)
	assert.Empty(t, errOut.String())
}

func TestScanPathExplicitOversizedFileNotice(t *testing.T) {
	root := t.TempDir()
	path := writeTestFile(t, root, "big.bin", strings.Repeat("x", 100))

	opts := defaultTestOptions()
	opts.maxFileSize = 50
	agg, out, _ := newTestAggregator(opts)

	require.NoError(t, agg.scanPath(path))

	// A file named directly gets its skip notice even without --verbose.
	assert.Equal(t, fmt.Sprintf("Skipped %s: File too large\n", path), out.String())
	assert.Equal(t, 1, agg.totals.Skipped)
	assert.Equal(t, 0, agg.totals.Processed)
}

func TestScanPathVerboseOutput(t *testing.T) {
	root := t.TempDir()
	aPath := writeTestFile(t, root, "a.go", "one two three")
	bigPath := writeTestFile(t, root, "big.go", strings.Repeat("x", 100))

	opts := defaultTestOptions()
	opts.maxFileSize = 50
	opts.verbose = true
	agg, out, _ := newTestAggregator(opts)

	require.NoError(t, agg.scanPath(root))
	agg.printSummary()

	expected := fmt.Sprintf("%s: 3 tokens (≈$0.00 at $3/1M tokens)\n", aPath) +
		fmt.Sprintf("Skipped %s: File too large\n", bigPath) +
		"\nSummary:\n" +
		"Total files processed: 1\n" +
		"Files skipped (too large): 1\n" +
		"Total: 3 tokens (≈$0.00 at $3/1M tokens)\n"
	assert.Equal(t, expected, out.String())
}

func TestScanFileReadFailureCountsZero(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.go")

	agg, _, errOut := newTestAggregator(defaultTestOptions())
	agg.scanFile(missing, 10, false)

	// Per-file failures are diagnosed and counted as processed with zero
	// tokens; they never abort the run.
	assert.Contains(t, errOut.String(), "Error processing "+missing)
	assert.Equal(t, 1, agg.totals.Processed)
	assert.Equal(t, int64(0), agg.totals.Tokens)
	require.Len(t, agg.records, 1)
	assert.Equal(t, 0, agg.records[0].Tokens)
	assert.False(t, agg.records[0].Skipped)
}

func TestScanFileInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "junk.go")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x41}, 0644))

	agg, _, errOut := newTestAggregator(defaultTestOptions())
	agg.scanFile(path, 3, false)

	assert.Contains(t, errOut.String(), "not valid UTF-8")
	assert.Equal(t, 1, agg.totals.Processed)
	assert.Equal(t, int64(0), agg.totals.Tokens)
}

func TestScanFileHTMLConversion(t *testing.T) {
	root := t.TempDir()
	content := `<html><head><script>var secret = 1;</script></head><body><p>hello world</p></body></html>`
	path := writeTestFile(t, root, "page.html", content)

	opts := defaultTestOptions()
	opts.htmlToMarkdown = true
	agg, _, errOut := newTestAggregator(opts)
	require.NoError(t, agg.scanPath(path))

	// Only the rendered text survives conversion; script bodies do not.
	assert.Equal(t, int64(2), agg.totals.Tokens)
	assert.Empty(t, errOut.String())

	raw, _, _ := newTestAggregator(defaultTestOptions())
	require.NoError(t, raw.scanPath(path))
	assert.Greater(t, raw.totals.Tokens, int64(2))
}

func TestScanPathMissingRoot(t *testing.T) {
	agg, _, _ := newTestAggregator(defaultTestOptions())
	err := agg.scanPath(filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
}

func TestScanPathIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.go", "one two three")
	writeTestFile(t, root, "sub/b.py", "four five")

	first, _, _ := newTestAggregator(defaultTestOptions())
	require.NoError(t, first.scanPath(root))

	second, _, _ := newTestAggregator(defaultTestOptions())
	require.NoError(t, second.scanPath(root))

	assert.Equal(t, first.totals, second.totals)
	assert.Equal(t, first.records, second.records)
}

func TestScanPathSymlinkedDirectoryRoot(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "target")
	require.NoError(t, os.Mkdir(target, 0755))
	writeTestFile(t, target, "app.py", "one two")
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(target, link))

	agg, _, errOut := newTestAggregator(defaultTestOptions())
	require.NoError(t, agg.scanPath(link))

	assert.Equal(t, 1, agg.totals.Processed)
	assert.Equal(t, int64(2), agg.totals.Tokens)
	require.Len(t, agg.records, 1)
	// Results keep the spelling the caller used, not the resolved path.
	assert.Equal(t, filepath.Join(link, "app.py"), agg.records[0].Path)
	assert.Empty(t, errOut.String())
}

func TestScanPathSymlinkedFileHonorsSizeFilter(t *testing.T) {
	root := t.TempDir()
	target := writeTestFile(t, root, "big.py", strings.Repeat("x", 100))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "alias.py")))

	opts := defaultTestOptions()
	opts.maxFileSize = 50
	agg, _, _ := newTestAggregator(opts)
	require.NoError(t, agg.scanPath(root))

	// The alias reads the same 100 bytes as the file it points at, so the
	// size filter catches both.
	assert.Equal(t, 0, agg.totals.Processed)
	assert.Equal(t, 2, agg.totals.Skipped)
}

func TestScanPathBrokenSymlinkIsPerFileFailure(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.py"), filepath.Join(root, "broken.py")))

	agg, _, errOut := newTestAggregator(defaultTestOptions())
	require.NoError(t, agg.scanPath(root))

	assert.Equal(t, 1, agg.totals.Processed)
	assert.Equal(t, 0, agg.totals.Skipped)
	assert.Equal(t, int64(0), agg.totals.Tokens)
	require.Len(t, agg.records, 1)
	assert.Contains(t, errOut.String(), "Error processing")
}

func TestScanPathUnreadableSubdirectoryAbortsWithoutSummary(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root := t.TempDir()
	writeTestFile(t, root, "a.go", "one")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0755))
	writeTestFile(t, root, "locked/inner.go", "two")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	opts := defaultTestOptions()
	opts.verbose = true
	agg, out, _ := newTestAggregator(opts)
	err := agg.scanPath(root)
	require.Error(t, err)

	// Files seen before the failure were already reported, but the run
	// aborts before any summary.
	assert.Contains(t, out.String(), "a.go: 1 tokens")
	assert.NotContains(t, out.String(), "Summary:")
}
