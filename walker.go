package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
)

// walkTree enumerates the files under root whose extension is in the set,
// calling fn once per candidate with its path and byte size. Enumeration is
// lazy and follows filepath.WalkDir's lexical order. An error reading any
// directory aborts the walk and fails the run.
func walkTree(root string, opts options, fn func(path string, size int64)) error {
	var ignorer gitignore.IgnoreMatcher
	if opts.respectGitignore {
		// Only the root-level .gitignore is consulted; go-gitignore matches
		// one file at a time. TODO: layer nested .gitignore files the way
		// git itself does.
		ignorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(ignorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(ignorePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not parse %s: %v\n", ignorePath, err)
			} else {
				ignorer = matcher
			}
		}
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are a structural failure, not a
			// per-file one.
			return err
		}
		if path == root {
			return nil
		}

		isDir := d.IsDir()

		if opts.skipHidden && isHidden(d.Name()) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}

		// Match wants the path in the same form WalkDir produced it; the
		// matcher relativizes against the .gitignore directory itself.
		if ignorer != nil && ignorer.Match(path, isDir) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}

		if isDir {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if opts.maxDepth > 0 && pathDepth(rel) >= opts.maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if !opts.extensions.match(d.Name()) {
			return nil
		}

		var info fs.FileInfo
		var infoErr error
		if d.Type()&fs.ModeSymlink != 0 {
			// The read goes through the link, so the size filter must too.
			info, infoErr = os.Stat(path)
			if infoErr == nil && info.IsDir() {
				// A link resolving to a directory is not a file candidate.
				return nil
			}
		} else {
			info, infoErr = d.Info()
		}
		if infoErr != nil {
			// Vanished entry or broken link: hand it on with a zero size so
			// the read attempt diagnoses it and it lands in the processed
			// bucket like any other per-file failure.
			fn(path, 0)
			return nil
		}

		fn(path, info.Size())
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking directory %s: %w", root, err)
	}
	return nil
}

// isHidden reports whether the base name is dot-prefixed. "." and ".." are
// not considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	base := filepath.Base(name)
	return len(base) > 0 && base[0] == '.'
}

// pathDepth counts the separators in a slash-normalized relative path, which
// is the directory depth below the walk root.
func pathDepth(rel string) int {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(strings.Trim(rel, "/"), "/")
}
