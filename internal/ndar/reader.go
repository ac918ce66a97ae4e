package ndar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ndarimport/internal/services"
)

const (
	// SubjectsFile holds one row per subject.
	SubjectsFile = "ndar_aggregate.txt"
	// ImagesFile holds one row per image, referencing subjects by key.
	ImagesFile = "image03.txt"

	ColumnSubjectKey   = "subjectkey"
	ColumnGender       = "gender"
	ColumnInterviewAge = "interview_age"
	ColumnImageFile    = "image_file"

	extraColumnPrefix = "_extra_"
	utf8BOM           = "\ufeff"
)

// SubjectColumns lists the columns a subjects file must carry.
var SubjectColumns = []string{ColumnSubjectKey, ColumnGender, ColumnInterviewAge}

// ImageColumns lists the columns an images file must carry.
var ImageColumns = []string{ColumnSubjectKey, ColumnImageFile}

// Row maps header names to the cell values of one data row.
type Row map[string]string

// Get returns the value stored under column, or "" when absent.
func (r Row) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}

// Table is a parsed tab-separated file.
type Table struct {
	Path   string
	Header []string
	Rows   []Row
}

// ReadOptions tunes how a file is parsed.
type ReadOptions struct {
	// SkipRows drops this many data rows directly after the header. NDAR
	// downloads carry a human-readable description row in that position.
	SkipRows int
	// Required lists columns that must appear in the header.
	Required []string
}

// ReadFile loads and parses the tab-separated file at path.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFileRead, "ndar", "open", path, err)
	}
	defer file.Close()

	table, err := Read(file, opts)
	if err != nil {
		if errors.Is(err, services.ErrParse) || errors.Is(err, services.ErrFileRead) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, services.Wrap(services.ErrFileRead, "ndar", "read", path, err)
	}
	table.Path = path
	return table, nil
}

// Read parses tab-separated content from r.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, services.Wrap(services.ErrFileRead, "ndar", "read header", "missing header row", nil)
		}
		return nil, services.Wrap(services.ErrFileRead, "ndar", "read header", "", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if err := RequireColumns(header, opts.Required...); err != nil {
		return nil, err
	}

	table := &Table{Header: header}
	skip := opts.SkipRows
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrParse, "ndar", "read row", "", err)
		}
		if skip > 0 {
			skip--
			continue
		}
		table.Rows = append(table.Rows, toRow(header, record))
	}
	return table, nil
}

// RequireColumns reports the first required column missing from header.
func RequireColumns(header []string, required ...string) error {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrParse, "ndar", "header", "missing column(s) "+strings.Join(missing, ", "), nil)
	}
	return nil
}

func toRow(header, record []string) Row {
	row := make(Row, len(header))
	for i, name := range header {
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	for i := len(header); i < len(record); i++ {
		row[extraColumnPrefix+strconv.Itoa(i-len(header)+1)] = record[i]
	}
	return row
}
