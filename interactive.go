package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// runInteractiveFinder walks the working directory and lets the user pick
// the scan roots with a multi-select fuzzy finder. A nil slice with a nil
// error means the selection was aborted.
func runInteractiveFinder(opts options) ([]string, error) {
	var candidates []string
	root := "."

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Candidate discovery is best-effort; unreadable corners just
			// don't show up in the picker.
			return nil
		}
		if path == root {
			return nil
		}
		if opts.skipHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan working directory: %w", err)
	}
	if len(candidates) == 0 {
		return nil, errors.New("no files or directories found to select from")
	}

	idx, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string { return candidates[i] },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select files or directories to scan. Tab multi-selects, Enter confirms."
			}
			info, statErr := os.Stat(candidates[i])
			if statErr != nil {
				return fmt.Sprintf("Path: %s\nError getting info: %v", candidates[i], statErr)
			}
			kind := "File"
			if info.IsDir() {
				kind = "Directory"
			}
			return fmt.Sprintf("Path: %s\nType: %s\nSize: %d bytes", candidates[i], kind, info.Size())
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder: %w", err)
	}

	selected := make([]string, len(idx))
	for i, n := range idx {
		selected[i] = candidates[n]
	}
	return selected, nil
}
