// Package reconcile merges per-author bibliographies into one
// deduplicated, contributor-annotated record set.
//
// Records are keyed by their DBLP identity. The first occurrence of an
// identity wins and keeps its block; later occurrences only add their
// origin to the record's contributor list. Records with neither a url
// nor a doi get a synthetic url so that every record can be joined to
// rendered output later; the synthetic form is recognizable and gets
// stripped before anything reaches a final page.
package reconcile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manuel-freire/snolabib/internal/bibtex"
)

const (
	// KeyScheme prefixes every citation key in a DBLP export.
	KeyScheme = "DBLP:"

	// SyntheticMarker is the reserved locator prefix injected for records
	// without a real url or doi. Anything carrying it must be stripped
	// before final output.
	SyntheticMarker = "https://localhost/"

	// ContributorsField is the non-standard field injected into each
	// unified record, carrying the comma-separated DBLP IDs of the
	// roster authors that contributed it.
	ContributorsField = "dblpid"
)

// SyntheticLink returns the reserved placeholder locator for an identity.
func SyntheticLink(identity string) string {
	return SyntheticMarker + identity
}

// IsSyntheticLink reports whether a locator is of the reserved
// placeholder form.
func IsSyntheticLink(link string) bool {
	return strings.HasPrefix(link, SyntheticMarker)
}

// Record is one reconciled bibliography entry.
type Record struct {
	Identity     string // citation key minus the DBLP: scheme
	Year         int
	Contributors []string // origin DBLP IDs, in order of accumulation
	Entry        *bibtex.Entry
}

// Link returns the record's url field, real or synthetic. Records
// carrying only a doi have none; the renderer links those itself.
func (r *Record) Link() string {
	link, _ := r.Entry.Get("url")
	return link
}

// OriginStats counts what happened to one origin's blocks. Total here
// counts well-formed blocks only; the aggregate Report.Total counts
// every non-empty block, malformed included.
type OriginStats struct {
	Origin     string `json:"origin"` // origin DBLP ID
	Total      int    `json:"total"`  // well-formed blocks seen
	Malformed  int    `json:"malformed"`
	Selected   int    `json:"selected"`   // in the year window, before dedup
	Retained   int    `json:"retained"`   // stored under this origin's pass
	Duplicates int    `json:"duplicates"` // already stored by an earlier pass
}

// Report aggregates counters for a reconciliation run.
type Report struct {
	Origins    []OriginStats `json:"origins"`
	Total      int           `json:"total"` // all non-empty blocks, malformed included
	Malformed  int           `json:"malformed"`
	Selected   int           `json:"selected"`   // in-window before dedup
	Retained   int           `json:"retained"`   // stored after dedup
	Duplicates int           `json:"duplicates"` // suppressed
	Errors     []string      `json:"errors,omitempty"`
}

// Reconciler accumulates origins into a unified record set. Origins must
// be added in the caller's chosen deterministic order; that order decides
// which copy of a duplicated identity wins.
type Reconciler struct {
	firstYear int
	lastYear  int

	byIdentity map[string]*Record
	order      []string // identities, first-seen order
	report     Report
}

// New creates a Reconciler retaining records with
// firstYear <= year <= lastYear. An inverted window selects nothing.
func New(firstYear, lastYear int) *Reconciler {
	return &Reconciler{
		firstYear:  firstYear,
		lastYear:   lastYear,
		byIdentity: make(map[string]*Record),
	}
}

// AddOrigin processes one origin's raw bibliography text. Malformed
// blocks are counted and reported, never fatal.
func (rc *Reconciler) AddOrigin(originID, text string) {
	stats := OriginStats{Origin: originID}
	for i, block := range bibtex.SplitBlocks(text) {
		rc.report.Total++
		rec, err := parseBlock(block)
		if err != nil {
			stats.Malformed++
			rc.report.Malformed++
			rc.report.Errors = append(rc.report.Errors,
				fmt.Sprintf("origin %s, block %d: %v", originID, i+1, err))
			continue
		}
		stats.Total++

		if rec.Year < rc.firstYear || rec.Year > rc.lastYear {
			continue
		}
		stats.Selected++
		rc.report.Selected++

		if existing, ok := rc.byIdentity[rec.Identity]; ok {
			stats.Duplicates++
			rc.report.Duplicates++
			existing.addContributor(originID)
			continue
		}
		rec.Contributors = []string{originID}
		rc.byIdentity[rec.Identity] = rec
		rc.order = append(rc.order, rec.Identity)
		stats.Retained++
		rc.report.Retained++
	}
	rc.report.Origins = append(rc.report.Origins, stats)
}

// parseBlock extracts identity and year and guarantees a url field,
// injecting the synthetic form when the block has neither url nor doi
// and repairing escape artifacts when it has a real url.
func parseBlock(block string) (*Record, error) {
	entry, err := bibtex.Parse(block)
	if err != nil {
		return nil, err
	}
	identity, ok := strings.CutPrefix(entry.Key, KeyScheme)
	if !ok || identity == "" {
		return nil, fmt.Errorf("citation key %q lacks %s identity", entry.Key, KeyScheme)
	}

	yearStr, ok := entry.Get("year")
	if !ok {
		return nil, fmt.Errorf("record %s: no year field", identity)
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil {
		return nil, fmt.Errorf("record %s: year %q is not a number", identity, yearStr)
	}

	url, hasURL := entry.Get("url")
	switch {
	case hasURL:
		if fixed := RepairURL(url); fixed != url {
			entry.Set("url", fixed)
		}
	case entry.Has("doi"):
		// The renderer derives a link from the doi; nothing to inject.
	default:
		entry.InsertBefore("year", "url", SyntheticLink(identity))
	}

	return &Record{Identity: identity, Year: year, Entry: entry}, nil
}

func (r *Record) addContributor(originID string) {
	for _, c := range r.Contributors {
		if c == originID {
			return
		}
	}
	r.Contributors = append(r.Contributors, originID)
}

// Records returns the unified records in first-seen order.
func (rc *Reconciler) Records() []*Record {
	out := make([]*Record, len(rc.order))
	for i, id := range rc.order {
		out[i] = rc.byIdentity[id]
	}
	return out
}

// Report returns the counters accumulated so far.
func (rc *Reconciler) Report() Report {
	return rc.report
}

// WriteTo serializes the unified collection in first-seen order, each
// record carrying its contributor list in the injected dblpid field,
// records separated by a blank line.
func (rc *Reconciler) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, id := range rc.order {
		rec := rc.byIdentity[id]
		rec.Entry.Set(ContributorsField, strings.Join(rec.Contributors, ","))
		n, err := io.WriteString(w, rec.Entry.String()+"\n")
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
