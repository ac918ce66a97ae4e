package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ndarimport/internal/ndar"
	"ndarimport/internal/scitran"
	"ndarimport/internal/services"
)

// SecondsPerMonth is the length of an average month: 24*3600*365.25/12.
const SecondsPerMonth int64 = 2629800

// AgeInSeconds converts an NDAR interview age in months to seconds. An empty
// value yields 0.
func AgeInSeconds(ageInMonths string) (int64, error) {
	value := strings.TrimSpace(ageInMonths)
	if value == "" {
		return 0, nil
	}
	months, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrParse, "tree", ndar.ColumnInterviewAge, fmt.Sprintf("invalid age %q", ageInMonths), err)
	}
	if months > math.MaxInt64/SecondsPerMonth || months < math.MinInt64/SecondsPerMonth {
		return 0, services.Wrap(services.ErrParse, "tree", ndar.ColumnInterviewAge, fmt.Sprintf("age %q out of range", ageInMonths), nil)
	}
	return months * SecondsPerMonth, nil
}

// ToSession maps a subject row to a session carrying the subject's
// demographics and the full row as metadata.
func ToSession(row ndar.Row) (scitran.Session, error) {
	key := row.Get(ndar.ColumnSubjectKey)
	age, err := AgeInSeconds(row.Get(ndar.ColumnInterviewAge))
	if err != nil {
		return scitran.Session{}, fmt.Errorf("subject %q: %w", key, err)
	}
	return scitran.Session{
		Label: key,
		Subject: scitran.Subject{
			Sex:      cases.Lower(language.Und).String(row.Get(ndar.ColumnGender)),
			Age:      age,
			Code:     key,
			Metadata: map[string]string(row),
		},
	}, nil
}

// ToAcquisition maps an image row to an acquisition labelled after the image
// file name.
func ToAcquisition(row ndar.Row) scitran.Acquisition {
	return scitran.Acquisition{
		Label:    AcquisitionLabel(row.Get(ndar.ColumnImageFile)),
		Metadata: map[string]string(row),
	}
}

// AcquisitionLabel returns the last path segment of imageFile with a single
// trailing extension removed, so "scan.nii.gz" becomes "scan.nii".
func AcquisitionLabel(imageFile string) string {
	name := imageFile
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}
