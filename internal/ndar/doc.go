// Package ndar reads NDAR flat-file exports.
//
// An export folder carries two tab-separated files: ndar_aggregate.txt with one
// row per subject and image03.txt with one row per image. Each file starts with
// a header row naming its columns; every following row is returned as a Row
// keyed by those names so callers can keep the full record as opaque metadata.
package ndar
