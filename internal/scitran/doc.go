// Package scitran is a thin client for the scitran data-management API.
//
// It covers the create-only subset the importer needs: ensuring a group exists
// and creating projects, sessions, and acquisitions. Every request carries the
// fixed root and user query parameters the service authorizes on. Requests are
// issued one at a time and any non-200 response becomes an *UploadError holding
// the server's reason phrase; nothing is retried.
package scitran
