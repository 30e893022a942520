// Package export writes trajectory series out of the store: CSV tables,
// canonical logs, SVG renderings and an on-disk archive of runs.
package export
