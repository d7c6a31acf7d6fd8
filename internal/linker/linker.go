// Package linker joins rendered bibliography fragments back to their
// unified records, decorates them with structured attributes, and
// assembles the final page.
//
// The join key is each fragment's first embedded link matched against
// each record's url field, or against the doi.org form of its doi when
// it has no url. Both sides are normalized first (whitespace
// trimmed, scheme and host case-folded) so cosmetic differences
// introduced by the renderer do not break the join. Path and query case
// is significant in URLs and is left alone.
package linker

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/manuel-freire/snolabib/internal/bibtex"
	"github.com/manuel-freire/snolabib/internal/dblp"
	"github.com/manuel-freire/snolabib/internal/reconcile"
)

// ItemClass is the style class stamped on every decorated fragment.
const ItemClass = "bibitem"

// Report counts both sides of the join.
type Report struct {
	Records              int      `json:"records"`
	RecordsWithoutLink   int      `json:"records_without_link"` // records with neither url nor doi, nothing to join on
	Fragments            int      `json:"fragments"`
	FragmentsWithoutLink int      `json:"fragments_without_link"`
	Matched              int      `json:"matched"`
	UnmatchedFragments   []string `json:"unmatched_fragments,omitempty"` // links with no record
	UnmatchedRecords     []string `json:"unmatched_records,omitempty"`   // identities with no fragment
	SyntheticStripped    int      `json:"synthetic_stripped"`
}

// Result is the outcome of a link run: decorated fragment HTML, sorted
// by year descending, plus the join report.
type Result struct {
	Items  []string
	Report Report
}

// trailing "[Online]. Available ..." clause of an item whose only link
// is synthetic; removed wholesale, item re-closed.
var onlineTailRe = regexp.MustCompile(` \[Online\].*`)

// Link joins fragments parsed from rendered HTML to the given unified
// records and returns the decorated items. Unmatched fragments and
// records are reported, never fatal; a record that matched but violates
// the reconciler's guarantees surfaces as an error from the caller's
// earlier ReadUnified.
func Link(records []*reconcile.Record, rendered string) (*Result, error) {
	byLink := make(map[string]*reconcile.Record)
	report := Report{Records: len(records)}
	for _, rec := range records {
		key := joinKey(rec)
		if key == "" {
			report.RecordsWithoutLink++
			continue
		}
		byLink[key] = rec
	}

	fragments, skipped, err := ParseFragments(rendered)
	if err != nil {
		return nil, err
	}
	report.Fragments = len(fragments) + skipped
	report.FragmentsWithoutLink = skipped

	type item struct {
		year int
		text string
	}
	var items []item
	matchedIdentities := make(map[string]bool)

	for _, frag := range fragments {
		key := normalizeURL(frag.Link)
		rec, ok := byLink[key]
		if !ok {
			report.UnmatchedFragments = append(report.UnmatchedFragments, frag.Link)
			continue
		}
		if matchedIdentities[rec.Identity] {
			// Two fragments resolved to the same record; the join is
			// 1:1, keep the first.
			report.UnmatchedFragments = append(report.UnmatchedFragments, frag.Link)
			continue
		}
		matchedIdentities[rec.Identity] = true

		decorate(frag, rec)
		text, err := frag.Render()
		if err != nil {
			return nil, err
		}
		if strings.Contains(text, reconcile.SyntheticMarker) {
			// The placeholder leaked into the rendered clause; cut the
			// whole availability tail off.
			text = onlineTailRe.ReplaceAllString(text, "</li>")
			report.SyntheticStripped++
		}
		items = append(items, item{year: rec.Year, text: text + "\n"})
		report.Matched++
	}

	for _, rec := range records {
		if joinKey(rec) != "" && !matchedIdentities[rec.Identity] {
			report.UnmatchedRecords = append(report.UnmatchedRecords, rec.Identity)
		}
	}

	// Most recent first; insertion order breaks ties.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].year > items[j].year
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.text
	}
	return &Result{Items: out, Report: report}, nil
}

// decorate writes the structured attributes onto a matched fragment.
func decorate(frag *Fragment, rec *reconcile.Record) {
	setAttr(frag.Node, "data-dblpid", rec.Identity)
	setAttr(frag.Node, "data-authors", strings.Join(rec.Contributors, ","))
	setAttr(frag.Node, "data-year", strconv.Itoa(rec.Year))
	setAttr(frag.Node, "data-venue", Venue(rec.Identity))
	setAttr(frag.Node, "class", ItemClass)
	if title := peopleTitle(rec.Entry); title != "" {
		setAttr(frag.Node, "title", title)
	}
}

// joinKey returns the normalized locator a record will appear under in
// rendered output. Records without a url are rendered through their doi,
// which the renderer hyperlinks as https://doi.org/<doi>; records with
// neither have no key and cannot join.
func joinKey(rec *reconcile.Record) string {
	if link := rec.Link(); link != "" {
		return normalizeURL(link)
	}
	if doi, ok := rec.Entry.Get("doi"); ok && strings.TrimSpace(doi) != "" {
		return normalizeURL("https://doi.org/" + strings.TrimSpace(doi))
	}
	return ""
}

var venueTailRe = regexp.MustCompile(`/[^/]+$`)

// Venue derives the publication context from an identity by dropping its
// final segment: "conf/its/MartinezSMLA00" becomes "conf/its".
func Venue(identity string) string {
	return venueTailRe.ReplaceAllString(identity, "")
}

// peopleTitle builds the hover text for a fragment from the record's
// author and editor fields.
func peopleTitle(e *bibtex.Entry) string {
	var parts []string
	if authors, ok := e.Get("author"); ok {
		parts = append(parts, "Authors: "+nameList(authors))
	}
	if editors, ok := e.Get("editor"); ok {
		parts = append(parts, "Eds: "+nameList(editors))
	}
	return strings.Join(parts, "\n")
}

var spaceRunRe = regexp.MustCompile(`\s+`)

// nameList turns a bibtex name field ("A and B and C", possibly spanning
// lines) into a comma-separated list with separator artifacts repaired.
func nameList(field string) string {
	field = spaceRunRe.ReplaceAllString(field, " ")
	names := strings.Split(field, " and ")
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
	}
	return dblp.FixAuthorNames(strings.Join(names, ", "))
}

// normalizeURL canonicalizes a join key: trims whitespace and lowercases
// the scheme and host. Unparseable links fall back to the trimmed string.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}
