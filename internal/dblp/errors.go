package dblp

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates DBLP has no bibliography for the given person ID.
var ErrNotFound = errors.New("author not found on DBLP")

// FetchError describes a failed author download.
type FetchError struct {
	AuthorID   string
	URL        string
	StatusCode int   // 0 when the request never completed
	Err        error // transport error, if any
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s (%s): %v", e.AuthorID, e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s (%s): HTTP %d", e.AuthorID, e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return e.Err
}

// IsNotFound returns true if the error indicates a missing author.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
