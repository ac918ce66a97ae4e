package importer

import (
	"context"
	"fmt"
	"log/slog"

	"ndarimport/internal/logging"
	"ndarimport/internal/scitran"
	"ndarimport/internal/services"
	"ndarimport/internal/tree"
)

// Uploader is the subset of the scitran client the importer drives.
type Uploader interface {
	EnsureGroup(ctx context.Context, group string) error
	CreateProject(ctx context.Context, project scitran.Project) (string, error)
	CreateSession(ctx context.Context, session scitran.Session) (string, error)
	CreateAcquisition(ctx context.Context, acquisition scitran.Acquisition) (string, error)
}

var _ Uploader = (*scitran.Client)(nil)

// DefaultGroup is the group NDAR projects are filed under.
const DefaultGroup = "ndar"

// Entity kinds reported to a Recorder.
const (
	KindProject     = "project"
	KindSession     = "session"
	KindAcquisition = "acquisition"
)

// Event describes an entity the service just created.
type Event struct {
	Kind       string
	Label      string
	ID         string
	ParentID   string
	SubjectKey string
}

// Recorder is told about every created entity, in creation order.
type Recorder interface {
	Created(ctx context.Context, event Event) error
}

// Options identifies the export to import.
type Options struct {
	Folder string
	Group  string
	Tree   tree.Options
}

// Result summarizes a completed import.
type Result struct {
	ProjectID    string
	ProjectLabel string
	Sessions     int
	Acquisitions int
	Skipped      []string
	Orphaned     []string
}

// Importer uploads export trees through an Uploader.
type Importer struct {
	uploader Uploader
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithRecorder registers a Recorder for created entities.
func WithRecorder(recorder Recorder) Option {
	return func(i *Importer) {
		i.recorder = recorder
	}
}

// WithLogger sets the importer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New constructs an Importer around uploader.
func New(uploader Uploader, opts ...Option) *Importer {
	imp := &Importer{uploader: uploader, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(imp)
	}
	imp.logger = logging.NewComponentLogger(imp.logger, "importer")
	return imp
}

// Run builds the tree for opts.Folder and uploads it. Input errors surface
// before any request is sent.
func (i *Importer) Run(ctx context.Context, opts Options) (Result, error) {
	group := opts.Group
	if group == "" {
		group = DefaultGroup
	}
	built, err := tree.Build(opts.Folder, group, opts.Tree)
	if err != nil {
		return Result{}, err
	}
	return i.Upload(ctx, built)
}

// Upload sends t to the service.
func (i *Importer) Upload(ctx context.Context, t *tree.Tree) (Result, error) {
	plan := t.Plan()
	result := Result{
		ProjectLabel: plan.Project.Label,
		Skipped:      plan.Skipped,
		Orphaned:     plan.Orphaned,
	}
	logger := logging.WithContext(ctx, i.logger)
	logger.Info("import started",
		logging.String("project", plan.Project.Label),
		logging.String("group", plan.Project.Group),
		logging.Int("sessions", len(plan.Uploads)),
		logging.Int("acquisitions", plan.AcquisitionCount()),
	)
	if len(plan.Skipped) > 0 {
		logger.Debug("subjects without acquisitions skipped", logging.Int("count", len(plan.Skipped)))
	}
	if len(plan.Orphaned) > 0 {
		logger.Warn("image rows reference unknown subjects", logging.Int("count", len(plan.Orphaned)))
	}

	groupCtx := services.WithStage(ctx, "group")
	if err := i.uploader.EnsureGroup(groupCtx, plan.Project.Group); err != nil {
		return result, fmt.Errorf("ensure group %q: %w", plan.Project.Group, err)
	}

	projectCtx := services.WithStage(ctx, "project")
	projectID, err := i.uploader.CreateProject(projectCtx, plan.Project)
	if err != nil {
		return result, fmt.Errorf("create project %q: %w", plan.Project.Label, err)
	}
	result.ProjectID = projectID
	if err := i.record(projectCtx, Event{Kind: KindProject, Label: plan.Project.Label, ID: projectID}); err != nil {
		return result, err
	}

	for _, upload := range plan.Uploads {
		subjectCtx := services.WithSubjectKey(services.WithStage(ctx, "session"), upload.SubjectKey)

		session := upload.Session
		session.Project = projectID
		sessionID, err := i.uploader.CreateSession(subjectCtx, session)
		if err != nil {
			return result, fmt.Errorf("create session %q: %w", upload.SubjectKey, err)
		}
		result.Sessions++
		if err := i.record(subjectCtx, Event{Kind: KindSession, Label: session.Label, ID: sessionID, ParentID: projectID, SubjectKey: upload.SubjectKey}); err != nil {
			return result, err
		}

		acqCtx := services.WithStage(subjectCtx, "acquisition")
		for _, acq := range upload.Acquisitions {
			acq.Session = sessionID
			acqID, err := i.uploader.CreateAcquisition(acqCtx, acq)
			if err != nil {
				return result, fmt.Errorf("create acquisition %q for %q: %w", acq.Label, upload.SubjectKey, err)
			}
			result.Acquisitions++
			if err := i.record(acqCtx, Event{Kind: KindAcquisition, Label: acq.Label, ID: acqID, ParentID: sessionID, SubjectKey: upload.SubjectKey}); err != nil {
				return result, err
			}
		}
		logging.WithContext(subjectCtx, i.logger).Debug("session uploaded",
			logging.String("session_id", sessionID),
			logging.Int("acquisitions", len(upload.Acquisitions)),
		)
	}

	logger.Info("import complete",
		logging.String("project_id", projectID),
		logging.Int("sessions", result.Sessions),
		logging.Int("acquisitions", result.Acquisitions),
	)
	return result, nil
}

func (i *Importer) record(ctx context.Context, event Event) error {
	if i.recorder == nil {
		return nil
	}
	if err := i.recorder.Created(ctx, event); err != nil {
		return fmt.Errorf("record %s %q: %w", event.Kind, event.ID, err)
	}
	return nil
}
