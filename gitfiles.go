package main

import (
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// walkGitTree enumerates the files recorded in the HEAD commit of the
// repository at root, applying the same extension filter as walkTree. Only
// the local object database is read; no remotes are contacted. Sizes come
// from the working tree, since that is what gets read and tokenized.
func walkGitTree(root string, opts options, fn func(path string, size int64)) error {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return fmt.Errorf("open git repository %s: %w", root, err)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD of %s: %w", root, err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("load HEAD commit of %s: %w", root, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("load HEAD tree of %s: %w", root, err)
	}

	return tree.Files().ForEach(func(f *object.File) error {
		if !opts.extensions.match(f.Name) {
			return nil
		}
		path := filepath.Join(root, filepath.FromSlash(f.Name))
		info, statErr := os.Stat(path)
		if statErr != nil {
			// Tracked but absent from the working tree (deleted, not yet
			// checked out). Nothing to read, so it lands in neither bucket.
			fmt.Fprintf(os.Stderr, "Warning: tracked file missing from working tree: %s\n", path)
			return nil
		}
		fn(path, info.Size())
		return nil
	})
}
