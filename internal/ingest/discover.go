package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taxsahaj/taxsahaj/constants"
)

// Discover walks root recursively and returns the ingestible files in a
// stable, sorted order. Hidden files and directories are skipped.
func Discover(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(name))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
