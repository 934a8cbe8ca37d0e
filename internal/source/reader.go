// Package source reads file contents for content/naming validators:
// reading one already-resolved path's bytes as UTF-8, and discovers the
// file set a run is applied to.
package source

import (
	"os"
	"path/filepath"
	"strings"
)

// skipDirs are never descended into, regardless of validator filePattern.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
}

// DiscoverFiles walks rootDir and returns every regular file path
// found, skipping version-control and dependency-vendor directories
// and any other hidden (dot-prefixed) directory. Validators narrow
// this set further with their own filePattern.
func DiscoverFiles(rootDir string) ([]string, error) {
	var files []string

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != rootDir && (skipDirs[info.Name()] || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadFile returns the UTF-8 content of path. The caller (the content
// validator executor) is responsible for turning an error into a
// per-file failure rather than aborting the run.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// BaseName returns the file name component used as the naming
// validator's payload.
func BaseName(path string) string {
	return filepath.Base(path)
}
