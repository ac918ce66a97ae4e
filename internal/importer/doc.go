// Package importer drives one NDAR import end to end.
//
// Run builds the upload tree from an export folder, ensures the target group
// exists, creates the project, and then creates each session followed by its
// acquisitions, threading the identifiers the service assigns into the child
// payloads. Requests are strictly sequential. The first failure aborts the
// run; entities created before it stay on the service.
//
// Subjects without acquisitions never get a session on the service. That
// matches the behaviour existing imports rely on.
package importer
