// Package render turns the unified bibliography into per-entry HTML
// fragments by driving an external citeproc-java tool and rewriting its
// output into a flat list of <li> items.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
)

// DefaultExecutable is where the citeproc-java tool lives when unpacked
// next to the working directory.
const DefaultExecutable = "citeproc-java-tool-2.0.0/bin/citeproc-java"

// Style and format passed to citeproc-java. The whole pipeline relies on
// ieee-with-url emitting every entry's link in a predictable
// "[Online]. Available: <url>" clause.
const (
	citeprocStyle  = "ieee-with-url"
	citeprocFormat = "html"
)

// ErrToolNotFound indicates the citeproc-java executable is missing.
var ErrToolNotFound = errors.New("citeproc-java executable not found")

// Tool invokes citeproc-java.
type Tool struct {
	Executable string
}

// NewTool returns a Tool, falling back to the default executable path.
func NewTool(executable string) Tool {
	if executable == "" {
		executable = DefaultExecutable
	}
	return Tool{Executable: executable}
}

// Run formats the given bibliography file as HTML into htmlFile.
func (t Tool) Run(ctx context.Context, bibFile, htmlFile string) error {
	cmd := exec.CommandContext(ctx, t.Executable,
		"-o", htmlFile,
		"bibliography",
		"-i", bibFile,
		"-s", citeprocStyle,
		"-f", citeprocFormat,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w at %s", ErrToolNotFound, t.Executable)
	}
	if err != nil {
		return fmt.Errorf("citeproc-java failed on %s: %w", bibFile, err)
	}
	return nil
}

// Generate runs the tool and rewrites its output file into per-entry
// <li> fragments.
func (t Tool) Generate(ctx context.Context, bibFile, htmlFile string) error {
	if err := t.Run(ctx, bibFile, htmlFile); err != nil {
		return err
	}

	html, err := os.ReadFile(htmlFile)
	if err != nil {
		return fmt.Errorf("reading rendered html %s: %w", htmlFile, err)
	}
	return os.WriteFile(htmlFile, []byte(PostProcess(string(html))), 0644)
}

var (
	// "[Online]. Available: https://doi.org/10.x/y" becomes a DOI link.
	doiClauseRe = regexp.MustCompile(` \[Online.*doi\.org/([^<]*)`)
	// Remaining plain "Available: <url>" clauses get hyperlinked.
	availableRe = regexp.MustCompile(` Available: (http[^ \n]*)`)
	// citeproc wraps everything in divs; the page template brings its own
	// structure.
	divTagRe = regexp.MustCompile(`</?div[^>]*>`)
	// "[12]" citation markers open list items.
	markerRe = regexp.MustCompile(`\[[0-9]+\]`)
	// citeproc emits one entry per line; close each item at line end.
	lineEndRe = regexp.MustCompile(`(?m)>$`)
)

// PostProcess rewrites citeproc-java's ieee-with-url HTML into one <li>
// fragment per bibliography entry: DOIs and URLs hyperlinked, wrapper
// divs removed, numeric markers turned into list items.
func PostProcess(html string) string {
	html = doiClauseRe.ReplaceAllString(html, `. DOI: <a href="https://doi.org/$1">$1</a>`)
	html = availableRe.ReplaceAllString(html, ` Available: <a href="$1">$1</a>`)
	html = divTagRe.ReplaceAllString(html, "")
	html = markerRe.ReplaceAllString(html, "<li>")
	html = lineEndRe.ReplaceAllString(html, "></li>\n")
	return html
}
