// Package config loads, normalizes, and validates ndarimport configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The remote URL and user normally arrive as
// command-line arguments, so they are merged with ApplyRemote and checked with
// ValidateRemote after loading.
package config
