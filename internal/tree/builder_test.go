package tree_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ndarimport/internal/services"
	"ndarimport/internal/testsupport"
	"ndarimport/internal/tree"
)

func TestBuildAssemblesTree(t *testing.T) {
	folder := testsupport.WriteExport(t, "study_2024", testsupport.Export{
		Subjects: [][]string{
			{"S2", "F", "30"},
			{"S1", "M", "24"},
			{"S3", "F", ""},
		},
		Images: [][]string{
			{"S1", "/data/S1/scan_01.nii"},
			{"S2", "/data/S2/scan_01.nii"},
			{"S1", "/data/S1/scan_02.nii.gz"},
			{"S9", "/data/S9/orphan.nii"},
		},
	})

	built, err := tree.Build(folder, "ndar", tree.Options{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if built.Project.Label != "study_2024" || built.Project.Group != "ndar" {
		t.Fatalf("unexpected project: %+v", built.Project)
	}
	if got := built.Sessions.Keys(); !reflect.DeepEqual(got, []string{"S2", "S1", "S3"}) {
		t.Fatalf("expected file order of sessions, got %v", got)
	}
	acqs := built.Acquisitions.Get("S1")
	if len(acqs) != 2 || acqs[0].Label != "scan_01" || acqs[1].Label != "scan_02.nii" {
		t.Fatalf("unexpected S1 acquisitions: %+v", acqs)
	}
	if len(built.Acquisitions.Get("S9")) != 1 {
		t.Fatal("expected acquisitions kept for subject without session")
	}
	if built.Acquisitions.Total() != 4 {
		t.Fatalf("unexpected acquisition total: %d", built.Acquisitions.Total())
	}

	plan := built.Plan()
	if len(plan.Uploads) != 2 || plan.Uploads[0].SubjectKey != "S2" || plan.Uploads[1].SubjectKey != "S1" {
		t.Fatalf("unexpected planned uploads: %+v", plan.Uploads)
	}
	if !reflect.DeepEqual(plan.Skipped, []string{"S3"}) {
		t.Fatalf("expected S3 skipped, got %v", plan.Skipped)
	}
	if !reflect.DeepEqual(plan.Orphaned, []string{"S9"}) {
		t.Fatalf("expected S9 orphaned, got %v", plan.Orphaned)
	}
	if plan.AcquisitionCount() != 3 {
		t.Fatalf("unexpected planned acquisition count: %d", plan.AcquisitionCount())
	}
}

func TestBuildSessionsLastRowWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndar_aggregate.txt")
	testsupport.WriteTSV(t, path, []string{"subjectkey", "gender", "interview_age", "visit"},
		[]string{"S1", "M", "24", "baseline"},
		[]string{"S2", "F", "10", "baseline"},
		[]string{"S1", "F", "36", "followup"},
	)

	sessions, err := tree.BuildSessions(path, tree.Options{})
	if err != nil {
		t.Fatalf("BuildSessions returned error: %v", err)
	}
	if sessions.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", sessions.Len())
	}
	if got := sessions.Keys(); !reflect.DeepEqual(got, []string{"S1", "S2"}) {
		t.Fatalf("expected first-seen order kept, got %v", got)
	}
	s1, ok := sessions.Get("S1")
	if !ok {
		t.Fatal("expected S1 session")
	}
	if s1.Subject.Sex != "f" || s1.Subject.Age != 36*tree.SecondsPerMonth || s1.Subject.Metadata["visit"] != "followup" {
		t.Fatalf("expected last row fields, got %+v", s1.Subject)
	}
}

func TestBuildSkipsDescriptionRow(t *testing.T) {
	folder := testsupport.WriteExport(t, "raw", testsupport.Export{
		Subjects: [][]string{
			{"The NDAR Global Unique Identifier", "Sex of the subject", "Age in months"},
			{"S1", "M", "24"},
		},
		Images: [][]string{
			{"The NDAR Global Unique Identifier", "Image file"},
			{"S1", "/data/S1/scan_01.nii"},
		},
	})

	if _, err := tree.Build(folder, "ndar", tree.Options{}); !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected description row to fail age parsing without skip, got %v", err)
	}

	built, err := tree.Build(folder, "ndar", tree.Options{SkipRows: 1})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if built.Sessions.Len() != 1 || built.Acquisitions.Total() != 1 {
		t.Fatalf("unexpected tree sizes: %d sessions, %d acquisitions", built.Sessions.Len(), built.Acquisitions.Total())
	}
}

func TestBuildMissingImagesFile(t *testing.T) {
	folder := testsupport.WriteExport(t, "partial", testsupport.Export{Subjects: [][]string{{"S1", "M", "1"}}})
	if err := os.Remove(filepath.Join(folder, "image03.txt")); err != nil {
		t.Fatalf("remove images file: %v", err)
	}
	if _, err := tree.Build(folder, "ndar", tree.Options{}); !errors.Is(err, services.ErrFileRead) {
		t.Fatalf("expected file read error, got %v", err)
	}
}

func TestBuildEmptySubjectsFile(t *testing.T) {
	folder := testsupport.WriteExport(t, "empty", testsupport.Export{})
	if err := os.WriteFile(filepath.Join(folder, "ndar_aggregate.txt"), nil, 0o644); err != nil {
		t.Fatalf("truncate subjects file: %v", err)
	}
	if _, err := tree.Build(folder, "ndar", tree.Options{}); !errors.Is(err, services.ErrFileRead) {
		t.Fatalf("expected file read error for missing header, got %v", err)
	}
}

func TestProjectLabelUsesBaseName(t *testing.T) {
	cases := map[string]string{
		"/exports/study_2024":  "study_2024",
		"/exports/study_2024/": "study_2024",
		"study":                "study",
	}
	for in, want := range cases {
		if got := tree.ProjectLabel(in); got != want {
			t.Fatalf("ProjectLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
