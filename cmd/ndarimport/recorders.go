package main

import (
	"context"

	"ndarimport/internal/importer"
	"ndarimport/internal/journal"
	"ndarimport/internal/metrics"
)

type journalRecorder struct {
	journal *journal.Journal
	runID   string
}

func (r journalRecorder) Created(ctx context.Context, event importer.Event) error {
	return r.journal.Record(ctx, journal.Entity{
		RunID:      r.runID,
		Kind:       event.Kind,
		Label:      event.Label,
		RemoteID:   event.ID,
		ParentID:   event.ParentID,
		SubjectKey: event.SubjectKey,
	})
}

type metricsRecorder struct {
	metrics *metrics.Recorder
}

func (r metricsRecorder) Created(_ context.Context, event importer.Event) error {
	r.metrics.EntityCreated(event.Kind)
	return nil
}

// recorders fans an event out in order and stops at the first failure.
type recorders []importer.Recorder

func (rs recorders) Created(ctx context.Context, event importer.Event) error {
	for _, r := range rs {
		if err := r.Created(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
