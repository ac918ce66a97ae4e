package tree

import (
	"path/filepath"

	"ndarimport/internal/ndar"
	"ndarimport/internal/scitran"
)

// Options controls where export files are found and how they are parsed.
type Options struct {
	SubjectsFile string
	ImagesFile   string
	SkipRows     int
}

func (o Options) withDefaults() Options {
	if o.SubjectsFile == "" {
		o.SubjectsFile = ndar.SubjectsFile
	}
	if o.ImagesFile == "" {
		o.ImagesFile = ndar.ImagesFile
	}
	return o
}

// Build reads the export in folder and assembles the upload tree for group.
// Subjects are read before images so a bad subjects file fails first.
func Build(folder, group string, opts Options) (*Tree, error) {
	opts = opts.withDefaults()
	project := BuildProject(ProjectLabel(folder), group)

	sessions, err := BuildSessions(filepath.Join(folder, opts.SubjectsFile), opts)
	if err != nil {
		return nil, err
	}
	acquisitions, err := BuildAcquisitions(filepath.Join(folder, opts.ImagesFile), sessions, opts)
	if err != nil {
		return nil, err
	}
	return &Tree{
		Project:      project,
		Sessions:     sessions,
		Acquisitions: acquisitions,
	}, nil
}

// BuildProject returns the project payload for an import.
func BuildProject(label, group string) scitran.Project {
	return scitran.Project{Label: label, Group: group}
}

// BuildSessions reads the subjects file into sessions keyed by subject key.
// When a key repeats, the last row wins.
func BuildSessions(path string, opts Options) (*Sessions, error) {
	table, err := ndar.ReadFile(path, ndar.ReadOptions{SkipRows: opts.SkipRows, Required: ndar.SubjectColumns})
	if err != nil {
		return nil, err
	}
	sessions := NewSessions()
	for _, row := range table.Rows {
		session, err := ToSession(row)
		if err != nil {
			return nil, err
		}
		sessions.Put(row.Get(ndar.ColumnSubjectKey), session)
	}
	return sessions, nil
}

// BuildAcquisitions reads the images file into per-subject acquisition lists.
// Rows are kept even when their subject has no session; the uploader decides
// what to send.
func BuildAcquisitions(path string, _ *Sessions, opts Options) (*Acquisitions, error) {
	table, err := ndar.ReadFile(path, ndar.ReadOptions{SkipRows: opts.SkipRows, Required: ndar.ImageColumns})
	if err != nil {
		return nil, err
	}
	acquisitions := NewAcquisitions()
	for _, row := range table.Rows {
		acquisitions.Append(row.Get(ndar.ColumnSubjectKey), ToAcquisition(row))
	}
	return acquisitions, nil
}
