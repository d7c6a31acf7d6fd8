// Package roster loads the authors file that drives a bibliography run.
//
// The file is a single JSON object keyed by username. Each author carries
// a DBLP person ID and a display name. Usernames double as the base names
// of the per-author .bib files written by the download step.
package roster

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Author is one entry in the authors file.
type Author struct {
	ID   string `json:"id"`   // DBLP person ID, e.g. "66/4120" or "f/ManuelFreire"
	Name string `json:"name"` // display name for the author listing
}

// Roster is the set of authors for a run, with deterministic iteration.
type Roster struct {
	authors   map[string]Author
	usernames []string // sorted
}

// numericIDRe matches the all-numeric form of a DBLP person ID. IDs of
// this form are fetched as bare .bib; letter-keyed IDs need the
// ?view=bibtex HTML export instead.
var numericIDRe = regexp.MustCompile(`^[0-9]+/[0-9]+$`)

// Load reads and validates an authors file.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading authors file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses authors-file content.
func Parse(data []byte) (*Roster, error) {
	var authors map[string]Author
	if err := json.Unmarshal(data, &authors); err != nil {
		return nil, fmt.Errorf("parsing authors file: %w", err)
	}
	if len(authors) == 0 {
		return nil, fmt.Errorf("authors file lists no authors")
	}
	for username, a := range authors {
		if strings.ContainsAny(username, " \t/") {
			return nil, fmt.Errorf("invalid username %q: must not contain spaces or slashes", username)
		}
		if a.ID == "" {
			return nil, fmt.Errorf("author %q: missing required field 'id'", username)
		}
		if strings.Count(a.ID, "/") != 1 {
			return nil, fmt.Errorf("author %q: DBLP id %q must have exactly one slash", username, a.ID)
		}
	}

	usernames := make([]string, 0, len(authors))
	for u := range authors {
		usernames = append(usernames, u)
	}
	// Deduplication downstream is first-occurrence-wins, so traversal
	// order must be fixed, not map order.
	sort.Strings(usernames)

	return &Roster{authors: authors, usernames: usernames}, nil
}

// Usernames returns all usernames in sorted order.
func (r *Roster) Usernames() []string {
	out := make([]string, len(r.usernames))
	copy(out, r.usernames)
	return out
}

// Get returns the author for a username.
func (r *Roster) Get(username string) (Author, bool) {
	a, ok := r.authors[username]
	return a, ok
}

// Len returns the number of authors.
func (r *Roster) Len() int {
	return len(r.usernames)
}

// HasNumericID reports whether the author's DBLP ID is the all-numeric
// x/y form.
func (a Author) HasNumericID() bool {
	return numericIDRe.MatchString(a.ID)
}

// ListingHTML renders the author listing block spliced into the page
// template: one span per author, in sorted username order, tagged with
// the DBLP ID so page scripts can filter by contributor.
func (r *Roster) ListingHTML() string {
	var b strings.Builder
	for _, u := range r.usernames {
		a := r.authors[u]
		name := a.Name
		if name == "" {
			name = u
		}
		fmt.Fprintf(&b, "<span class=\"bibauthor\" data-dblpid=\"%s\">%s</span>\n",
			html.EscapeString(a.ID), html.EscapeString(name))
	}
	return b.String()
}
