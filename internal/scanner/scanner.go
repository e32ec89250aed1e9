// Package scanner discovers acceptance-test Markdown files under a
// test directory.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temoc-project/temoc/internal/domain"
)

// Scanner discovers test files in a directory tree.
type Scanner interface {
	Scan(rootDir string, extension string, recursive bool) ([]string, error)
}

// FileScanner implements Scanner using filepath.WalkDir.
type FileScanner struct{}

// NewScanner creates a new FileScanner.
func NewScanner() *FileScanner {
	return &FileScanner{}
}

// Scan walks rootDir and returns sorted file paths whose extension
// matches extension (case-insensitive, with or without a leading
// dot). When recursive is false only rootDir itself is scanned, not
// its subdirectories.
func (s *FileScanner) Scan(rootDir string, extension string, recursive bool) ([]string, error) {
	want := strings.ToLower(strings.TrimPrefix(extension, "."))
	var files []string

	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if !recursive && path != rootDir {
				return filepath.SkipDir
			}
			return nil
		}

		got := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if got == want {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, domain.NewError(domain.KindScan, "scan", rootDir, 0, "failed to scan directory", err)
	}

	sort.Strings(files)
	return files, nil
}
