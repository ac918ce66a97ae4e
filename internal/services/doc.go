// Package services defines shared utilities consumed by the import pipeline and
// its remote integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and subject keys
//     for logging.
//   - Structured error markers plus the Wrap helper so parse, file, upload, and
//     configuration failures stay distinguishable up to the CLI exit code.
//
// Use these helpers when wiring new pipeline steps so failures and log lines
// keep the same shape across the tool.
package services
