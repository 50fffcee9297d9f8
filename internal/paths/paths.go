// Package paths resolves the addin's companion resources directory. The
// convention is pure filesystem layout: companion libraries live one
// directory level above the loaded module, findable by name.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// CompanionDir walks one directory level up from the loaded module's
// location and returns the resulting directory. The error wraps
// os.ErrNotExist when the directory is missing.
func CompanionDir(moduleLocation string) (string, error) {
	if moduleLocation == "" {
		return "", fmt.Errorf("empty module location")
	}
	dir := filepath.Dir(filepath.Dir(filepath.Clean(moduleLocation)))
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("companion directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("companion path %s is not a directory", dir)
	}
	return dir, nil
}

// SearchPaths builds the ordered search path list for the resolver: the
// companion directory first, then each named companion library found inside
// it. Names that do not resolve are returned in missing.
func SearchPaths(dir string, names ...string) (search []string, missing []string) {
	search = []string{dir}
	for _, name := range names {
		p := filepath.Join(dir, name)
		if pathExists(p) {
			search = append(search, p)
			continue
		}
		missing = append(missing, name)
	}
	return search, missing
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
