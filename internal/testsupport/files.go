package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTSV writes a tab-separated file with header as its first line.
func WriteTSV(t testing.TB, path string, header []string, rows ...[]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Export describes the two files of an NDAR export folder.
type Export struct {
	SubjectHeader []string
	Subjects      [][]string
	ImageHeader   []string
	Images        [][]string
}

// DefaultSubjectHeader is the minimal subjects file header.
var DefaultSubjectHeader = []string{"subjectkey", "gender", "interview_age"}

// DefaultImageHeader is the minimal images file header.
var DefaultImageHeader = []string{"subjectkey", "image_file"}

// WriteExport creates folder name under a temp directory holding
// ndar_aggregate.txt and image03.txt and returns the folder path.
func WriteExport(t testing.TB, name string, export Export) string {
	t.Helper()

	folder := filepath.Join(t.TempDir(), name)
	subjectHeader := export.SubjectHeader
	if len(subjectHeader) == 0 {
		subjectHeader = DefaultSubjectHeader
	}
	imageHeader := export.ImageHeader
	if len(imageHeader) == 0 {
		imageHeader = DefaultImageHeader
	}
	WriteTSV(t, filepath.Join(folder, "ndar_aggregate.txt"), subjectHeader, export.Subjects...)
	WriteTSV(t, filepath.Join(folder, "image03.txt"), imageHeader, export.Images...)
	return folder
}
