// Package titles parses loosely formatted movie titles and years out of
// free text queries and file names.
package titles
