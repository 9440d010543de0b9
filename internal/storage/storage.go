package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrSameFile is returned by Save when the output would replace the input.
var ErrSameFile = errors.New("output path is the input file")

// outputPerm is the mode of written images.
const outputPerm = 0o644

// Storage writes scaled images under a base output directory.
type Storage struct {
	BaseDir string
}

// New creates a new Storage instance with the provided base directory.
func New(baseDir string) *Storage {
	return &Storage{BaseDir: baseDir}
}

// PathFor returns where the scaled version of input is stored.
func (s *Storage) PathFor(input string) string {
	return OutputPath(s.BaseDir, input)
}

// Save writes data to path, creating parent directories.
func (s *Storage) Save(path string, data []byte) error {
	return WriteFile(path, data, outputPerm)
}

// CheckDistinct returns ErrSameFile when output names the same file as
// input. A missing output is always distinct.
func CheckDistinct(input, output string) error {
	in, err := os.Stat(input)
	if err != nil {
		return nil
	}
	out, err := os.Stat(output)
	if err != nil {
		return nil
	}
	if os.SameFile(in, out) {
		return fmt.Errorf("%w: %s", ErrSameFile, filepath.Clean(output))
	}
	return nil
}
