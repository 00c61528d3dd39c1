package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Discover returns every YAML file under the given paths. Missing paths are
// skipped and a path naming a file is returned as is.
func Discover(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		found, err := discoverInPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to discover catalog files in %s: %w", path, err)
		}

		files = append(files, found...)
	}

	return files, nil
}

func discoverInPath(basePath string) ([]string, error) {
	var files []string

	err := filepath.Walk(basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil // Skip if directory doesn't exist
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}
