package batch

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/wippyai/abcdump/errors"
)

// Discover walks root and returns the slash-separated relative paths of
// files matching any include pattern and no exclude pattern, sorted.
// An exclude pattern matching a directory prunes the whole subtree.
func Discover(root string, include, exclude []string) ([]string, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.InvalidInput(errors.PhaseLoad, "invalid glob pattern "+p)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			Logger().Warn("walk error", zap.String("path", path), zap.Error(err))
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if matchAny(exclude, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchAny(include, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Load("walk "+root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether rel is selected by the include and exclude
// patterns.
func Matches(rel string, include, exclude []string) bool {
	return matchAny(include, rel) && !matchAny(exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
