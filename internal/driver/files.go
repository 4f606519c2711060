package driver

import (
	"io/fs"
	"path/filepath"
	"sort"

	"deprecheck/internal/config"
)

// ListFiles walks dir and returns the files cfg includes, sorted.
func ListFiles(dir string, cfg *config.Config) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && cfg.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && cfg.Includes(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}
