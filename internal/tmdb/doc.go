// Package tmdb implements the remote metadata provider client for The Movie
// Database.
//
// The client returns generic payloads with pointer-typed scalars so callers
// can tell "value absent" apart from "zero value". Transient transport and
// server failures are tagged with ErrUnavailable; a clean miss is a nil
// payload with a nil error.
package tmdb
