package scitran

// Collection names as they appear in API paths.
const (
	CollectionGroups       = "groups"
	CollectionProjects     = "projects"
	CollectionSessions     = "sessions"
	CollectionAcquisitions = "acquisitions"
)

// Group is the namespace projects live under.
type Group struct {
	ID string `json:"_id"`
}

// Project is the container for one import run.
type Project struct {
	Label string `json:"label"`
	Group string `json:"group"`
}

// Subject carries the demographic fields embedded in a session.
type Subject struct {
	Sex      string            `json:"sex"`
	Age      int64             `json:"age"`
	Code     string            `json:"code"`
	Metadata map[string]string `json:"metadata"`
}

// Session groups the acquisitions of a single subject. Project is assigned
// once the parent project has been created.
type Session struct {
	Label   string  `json:"label"`
	Subject Subject `json:"subject"`
	Project string  `json:"project,omitempty"`
}

// Acquisition is a single imaging record. Session is assigned once the parent
// session has been created.
type Acquisition struct {
	Label    string            `json:"label"`
	Metadata map[string]string `json:"metadata"`
	Session  string            `json:"session,omitempty"`
}
