package tags

import "errors"

var (
	// ErrInvalidQuery is returned by Suggest when the normalized query is out of bounds
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTagNotFound is returned for slug and id lookups with no row
	ErrTagNotFound = errors.New("tag not found")
	// ErrDuplicateSlug is returned by Create when the slug is already taken
	ErrDuplicateSlug = errors.New("tag slug already exists")
)
