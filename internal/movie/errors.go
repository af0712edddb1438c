package movie

import "errors"

var (
	// ErrInvalidCriteria means the lookup carried no usable identifying
	// information. Caller bug; not retried.
	ErrInvalidCriteria = errors.New("no criteria specified for movie lookup")

	// ErrNotFoundInCache is returned by cached-only lookups with no cached
	// match.
	ErrNotFoundInCache = errors.New("movie not found in cache")

	// ErrNoRemoteMatch means the provider round-trip completed (or could not
	// complete) and produced nothing usable.
	ErrNoRemoteMatch = errors.New("no match from metadata provider")

	// ErrAssetUnavailable marks poster materialization failures. Never fatal
	// to a metadata lookup.
	ErrAssetUnavailable = errors.New("poster asset unavailable")
)
