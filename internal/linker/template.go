package linker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template insertion markers. The page template must contain exactly one
// of each.
const (
	AuthorsMarker = "$AUTHORS_GO_HERE$"
	ItemsMarker   = "$ITEMS_GO_HERE$"
)

// Assemble splices the author listing and the decorated items into the
// page template.
func Assemble(tmpl, authorListing string, items []string) (string, error) {
	for _, marker := range []string{AuthorsMarker, ItemsMarker} {
		if n := strings.Count(tmpl, marker); n != 1 {
			return "", fmt.Errorf("template has %d instances of %s, want exactly 1", n, marker)
		}
	}
	out := strings.Replace(tmpl, AuthorsMarker, authorListing, 1)
	out = strings.Replace(out, ItemsMarker, strings.Join(items, ""), 1)
	return out, nil
}

// LoadTemplate reads the page template file.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}

// WriteOutput writes the assembled document atomically: a half-written
// page must never be left looking complete.
func WriteOutput(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snolabib-*")
	if err != nil {
		return fmt.Errorf("writing output %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
