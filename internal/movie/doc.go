// Package movie implements the cached movie metadata model: the SQLite-backed
// store, the recency-scaled staleness policy, the payload merge engine, and
// the lookup resolver that ties them to the remote provider.
package movie
