package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/backmassage/silk2mp3/internal/naming"
)

// Discover walks root and returns every regular file (or symlink to one)
// carrying the .silk extension, sorted lexicographically. Any walk error is
// returned; a batch over a partially unreadable tree is not started.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !naming.IsSource(path) {
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
				files = append(files, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
