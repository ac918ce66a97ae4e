package tree

import (
	"path/filepath"

	"ndarimport/internal/scitran"
)

// Sessions maps subject keys to sessions, remembering the order keys were first seen.
type Sessions struct {
	keys  []string
	byKey map[string]scitran.Session
}

// NewSessions returns an empty Sessions map.
func NewSessions() *Sessions {
	return &Sessions{byKey: make(map[string]scitran.Session)}
}

// Put stores session under key. A repeated key replaces the earlier value
// but keeps its original position.
func (s *Sessions) Put(key string, session scitran.Session) {
	if _, ok := s.byKey[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.byKey[key] = session
}

// Get returns the session stored under key.
func (s *Sessions) Get(key string) (scitran.Session, bool) {
	session, ok := s.byKey[key]
	return session, ok
}

// Keys returns subject keys in first-seen order.
func (s *Sessions) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len reports the number of distinct subject keys.
func (s *Sessions) Len() int {
	return len(s.keys)
}

// Acquisitions maps subject keys to acquisitions in file order.
type Acquisitions struct {
	keys  []string
	byKey map[string][]scitran.Acquisition
}

// NewAcquisitions returns an empty Acquisitions map.
func NewAcquisitions() *Acquisitions {
	return &Acquisitions{byKey: make(map[string][]scitran.Acquisition)}
}

// Append adds acq to the end of key's list.
func (a *Acquisitions) Append(key string, acq scitran.Acquisition) {
	if _, ok := a.byKey[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.byKey[key] = append(a.byKey[key], acq)
}

// Get returns the acquisitions recorded for key.
func (a *Acquisitions) Get(key string) []scitran.Acquisition {
	return a.byKey[key]
}

// Keys returns subject keys in first-seen order.
func (a *Acquisitions) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Total returns the number of acquisitions across all keys.
func (a *Acquisitions) Total() int {
	total := 0
	for _, list := range a.byKey {
		total += len(list)
	}
	return total
}

// Tree is everything one import uploads.
type Tree struct {
	Project      scitran.Project
	Sessions     *Sessions
	Acquisitions *Acquisitions
}

// PlannedSession is a session that will be uploaded with its acquisitions.
type PlannedSession struct {
	SubjectKey   string
	Session      scitran.Session
	Acquisitions []scitran.Acquisition
}

// Plan describes what an upload of the tree creates.
type Plan struct {
	Project scitran.Project
	Uploads []PlannedSession
	// Skipped lists subjects with no acquisitions; their sessions are not created.
	Skipped []string
	// Orphaned lists image subject keys absent from the subjects file.
	Orphaned []string
}

// Plan walks sessions in order and keeps those with at least one acquisition.
func (t *Tree) Plan() Plan {
	plan := Plan{Project: t.Project}
	for _, key := range t.Sessions.Keys() {
		acqs := t.Acquisitions.Get(key)
		if len(acqs) == 0 {
			plan.Skipped = append(plan.Skipped, key)
			continue
		}
		session, _ := t.Sessions.Get(key)
		plan.Uploads = append(plan.Uploads, PlannedSession{
			SubjectKey:   key,
			Session:      session,
			Acquisitions: acqs,
		})
	}
	for _, key := range t.Acquisitions.Keys() {
		if _, ok := t.Sessions.Get(key); !ok {
			plan.Orphaned = append(plan.Orphaned, key)
		}
	}
	return plan
}

// AcquisitionCount returns the number of acquisitions the plan uploads.
func (p Plan) AcquisitionCount() int {
	total := 0
	for _, upload := range p.Uploads {
		total += len(upload.Acquisitions)
	}
	return total
}

// ProjectLabel derives the project label from the export folder path.
func ProjectLabel(folder string) string {
	return filepath.Base(filepath.Clean(folder))
}
