package storage

import (
	"path/filepath"
	"strings"
)

// OutputPath returns {dir}/{input basename without extension}.jpg.
func OutputPath(dir, input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".jpg")
}
