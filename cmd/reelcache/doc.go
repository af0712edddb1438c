// Command reelcache is the CLI for the movie metadata cache: lookups, poster
// downloads, cache maintenance, and configuration helpers.
package main
