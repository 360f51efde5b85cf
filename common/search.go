package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrResourceNotFound is returned when no search root contains the requested resource.
var ErrResourceNotFound = errors.New("resource not found")

// maxParentHops bounds how far up the directory tree the search climbs from each root.
const maxParentHops = 4

// SearchRoots returns the directories probed for runtime resources, in priority order:
// the working directory, its shaders/ and assets/ subdirectories, the executable directory,
// and then each of those roots' ancestors.
func SearchRoots() []string {
	var bases []string
	if wd, err := os.Getwd(); err == nil {
		bases = append(bases, wd)
	}
	if exe, err := os.Executable(); err == nil {
		bases = append(bases, filepath.Dir(exe))
	}

	seen := make(map[string]bool)
	var roots []string
	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}
		seen[dir] = true
		roots = append(roots, dir)
	}
	for _, base := range bases {
		dir := base
		for hop := 0; hop <= maxParentHops; hop++ {
			add(dir)
			add(filepath.Join(dir, "shaders"))
			add(filepath.Join(dir, "assets"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return roots
}

// ResolvePath finds name under the first search root that contains it. Absolute paths are
// checked as-is.
//
// Parameters:
//   - name: a relative path such as "shaders/blit.wgsl" or "blit.wgsl"
//   - roots: directories to probe (typically SearchRoots())
//
// Returns:
//   - string: the resolved path
//   - error: ErrResourceNotFound wrapped with the name when nothing matches
func ResolvePath(name string, roots []string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
		return "", fmt.Errorf("%s: %w", name, ErrResourceNotFound)
	}
	for _, root := range roots {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrResourceNotFound)
}

// ReadResource resolves name and reads the whole file.
func ReadResource(name string, roots []string) ([]byte, string, error) {
	path, err := ResolvePath(name, roots)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, path, nil
}
