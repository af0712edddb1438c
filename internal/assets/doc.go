// Package assets materializes poster images on local disk, downloading them
// lazily and recording the resulting paths in the movie store.
package assets
