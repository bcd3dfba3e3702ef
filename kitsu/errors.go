package kitsu

import "errors"

var (
	// ErrNotFound is returned when Kitsu has no entry for the requested id,
	// slug or user. It also matches httpx.ErrNotFound responses.
	ErrNotFound = errors.New("kitsu: not found")
	// ErrInvalidArgument reports a bad media type, id or query.
	ErrInvalidArgument = errors.New("kitsu: invalid argument")
)
