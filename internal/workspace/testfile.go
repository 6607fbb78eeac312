package workspace

import (
	"path/filepath"
	"strings"
)

var testDirNames = map[string]bool{
	"tests":       true,
	"test":        true,
	"__tests__":   true,
}

func isTestFile(path string) bool {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, marker := range []string{".test.", ".spec.", "_test."} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if testDirNames[strings.ToLower(part)] {
			return true
		}
	}
	return false
}
