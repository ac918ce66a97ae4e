// Package main hosts the ndarimport CLI entrypoint and command graph.
//
// The root command takes a service URL, an acting user, and an NDAR export
// folder, uploads the export, and prints the new project id on stdout. Logs go
// to stderr so the id can be captured by scripts. Subcommands cover a dry-run
// plan, the local upload journal, and configuration scaffolding.
//
// Keep this package lean: behavior belongs in the internal packages and is
// only surfaced here.
package main
