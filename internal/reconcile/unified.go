package reconcile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manuel-freire/snolabib/internal/bibtex"
)

// ErrIntegrity marks a unified collection that violates the guarantees
// the reconciler established when writing it. Unlike malformed origin
// input, this is not noise to skip: something upstream is broken.
var ErrIntegrity = errors.New("unified collection integrity violation")

// ReadUnified re-parses a serialized unified collection through the
// generic record reader. The collection is this pipeline's ground truth:
// a record that parses but is missing a guaranteed field (identity, year,
// contributors) is an integrity error, not input noise. A url is not
// guaranteed here: doi-only records rely on the renderer to derive one.
func ReadUnified(text string) ([]*Record, error) {
	var records []*Record
	for i, block := range bibtex.SplitBlocks(text) {
		entry, err := bibtex.Parse(block)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrIntegrity, i+1, err)
		}
		identity, ok := strings.CutPrefix(entry.Key, KeyScheme)
		if !ok || identity == "" {
			return nil, fmt.Errorf("%w: record %d: key %q lacks %s identity", ErrIntegrity, i+1, entry.Key, KeyScheme)
		}

		yearStr, ok := entry.Get("year")
		if !ok {
			return nil, fmt.Errorf("%w: record %s has no year field", ErrIntegrity, identity)
		}
		year, err := strconv.Atoi(strings.TrimSpace(yearStr))
		if err != nil {
			return nil, fmt.Errorf("%w: record %s year %q is not a number", ErrIntegrity, identity, yearStr)
		}

		contribs, ok := entry.Get(ContributorsField)
		if !ok || contribs == "" {
			return nil, fmt.Errorf("%w: record %s has no %s field", ErrIntegrity, identity, ContributorsField)
		}

		records = append(records, &Record{
			Identity:     identity,
			Year:         year,
			Contributors: strings.Split(contribs, ","),
			Entry:        entry,
		})
	}
	return records, nil
}

// LoadUnified reads a unified collection file.
func LoadUnified(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unified bibliography %s: %w", path, err)
	}
	return ReadUnified(string(data))
}
