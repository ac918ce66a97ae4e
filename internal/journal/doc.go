// Package journal keeps a local SQLite record of what each import created.
//
// The service offers no rollback, so an aborted import leaves a partial
// project behind. The journal lists every project, session, and acquisition
// identifier in creation order so operators can find and clean up that state.
// It is a report only: imports never read it back to skip or resume work.
//
// A writer holds an advisory lock beside the database file so two imports
// cannot interleave their records.
package journal
