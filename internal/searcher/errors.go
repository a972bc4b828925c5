package searcher

import "errors"

var (
	// ErrInvalidURL is returned before any fetch when the URL scheme is
	// not http or https.
	ErrInvalidURL = errors.New("url must start with http:// or https://")

	// ErrNoContent is returned when extraction, chunking and dedup leave
	// nothing to index.
	ErrNoContent = errors.New("no content extracted")
)
