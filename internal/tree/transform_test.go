package tree_test

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"ndarimport/internal/ndar"
	"ndarimport/internal/services"
	"ndarimport/internal/tree"
)

func TestAgeInSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"  ", 0},
		{"0", 0},
		{"1", 2629800},
		{"24", 24 * 2629800},
		{"216", 216 * 2629800},
		{" 12 ", 12 * 2629800},
	}
	for _, tc := range cases {
		got, err := tree.AgeInSeconds(tc.in)
		if err != nil {
			t.Fatalf("AgeInSeconds(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("AgeInSeconds(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAgeInSecondsRejectsNonInteger(t *testing.T) {
	for _, in := range []string{"24.5", "two", "12m"} {
		if _, err := tree.AgeInSeconds(in); !errors.Is(err, services.ErrParse) {
			t.Fatalf("AgeInSeconds(%q): expected parse error, got %v", in, err)
		}
	}
}

func TestAgeInSecondsRejectsOverflow(t *testing.T) {
	for _, in := range []string{"9999999999999", "-9999999999999", "9223372036854775807"} {
		got, err := tree.AgeInSeconds(in)
		if !errors.Is(err, services.ErrParse) {
			t.Fatalf("AgeInSeconds(%q) = %d, %v; expected parse error", in, got, err)
		}
		if !strings.Contains(err.Error(), in) {
			t.Fatalf("error should name the value %q: %v", in, err)
		}
	}
	limit := math.MaxInt64 / tree.SecondsPerMonth
	got, err := tree.AgeInSeconds(strconv.FormatInt(limit, 10))
	if err != nil || got != limit*tree.SecondsPerMonth {
		t.Fatalf("AgeInSeconds(max months) = %d, %v", got, err)
	}
}

func TestToSessionMapsSubject(t *testing.T) {
	row := ndar.Row{"subjectkey": "S1", "gender": "M", "interview_age": "24", "site": "UCLA"}
	session, err := tree.ToSession(row)
	if err != nil {
		t.Fatalf("ToSession returned error: %v", err)
	}
	if session.Label != "S1" || session.Subject.Code != "S1" {
		t.Fatalf("unexpected label/code: %+v", session)
	}
	if session.Subject.Sex != "m" {
		t.Fatalf("expected lowercased sex, got %q", session.Subject.Sex)
	}
	if session.Subject.Age != 63115200 {
		t.Fatalf("unexpected age: %d", session.Subject.Age)
	}
	if session.Subject.Metadata["site"] != "UCLA" || len(session.Subject.Metadata) != 4 {
		t.Fatalf("expected full row as metadata, got %#v", session.Subject.Metadata)
	}
	if session.Project != "" {
		t.Fatalf("expected project unset before upload, got %q", session.Project)
	}
}

func TestToSessionEmptyGenderAndAge(t *testing.T) {
	session, err := tree.ToSession(ndar.Row{"subjectkey": "S1", "gender": "", "interview_age": ""})
	if err != nil {
		t.Fatalf("ToSession returned error: %v", err)
	}
	if session.Subject.Sex != "" || session.Subject.Age != 0 {
		t.Fatalf("expected empty sex and zero age, got %+v", session.Subject)
	}
}

func TestToSessionKeepsUnvalidatedGender(t *testing.T) {
	session, err := tree.ToSession(ndar.Row{"subjectkey": "S1", "gender": "Other", "interview_age": "1"})
	if err != nil {
		t.Fatalf("ToSession returned error: %v", err)
	}
	if session.Subject.Sex != "other" {
		t.Fatalf("unexpected sex: %q", session.Subject.Sex)
	}
}

func TestToSessionBadAgeNamesSubject(t *testing.T) {
	_, err := tree.ToSession(ndar.Row{"subjectkey": "S9", "gender": "F", "interview_age": "abc"})
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "S9") || !strings.Contains(got, "abc") {
		t.Fatalf("expected subject and value in error, got %q", got)
	}
}

func TestAcquisitionLabel(t *testing.T) {
	cases := map[string]string{
		"/data/S1/scan_01.nii":    "scan_01",
		"/data/S1/scan_01.nii.gz": "scan_01.nii",
		"scan_02.dcm":             "scan_02",
		"/data/S1/README":         "README",
		"s3://bucket/S1/t1w.zip":  "t1w",
		"":                        "",
		"/data/S1/":               "",
	}
	for in, want := range cases {
		if got := tree.AcquisitionLabel(in); got != want {
			t.Fatalf("AcquisitionLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToAcquisitionKeepsRow(t *testing.T) {
	row := ndar.Row{"subjectkey": "S1", "image_file": "/data/S1/scan_01.nii", "scan_type": "MR structural (T1)"}
	acq := tree.ToAcquisition(row)
	if acq.Label != "scan_01" {
		t.Fatalf("unexpected label: %q", acq.Label)
	}
	if acq.Metadata["scan_type"] != "MR structural (T1)" {
		t.Fatalf("expected metadata preserved, got %#v", acq.Metadata)
	}
	if acq.Session != "" {
		t.Fatalf("expected session unset, got %q", acq.Session)
	}
}
