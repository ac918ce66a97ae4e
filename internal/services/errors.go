package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse         = errors.New("parse error")
	ErrFileRead      = errors.New("file read error")
	ErrUpload        = errors.New("upload error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrUpload
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a run error to the process exit status. Input and configuration
// problems exit with 2 so wrappers can tell them apart from remote failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrParse), errors.Is(err, ErrFileRead):
		return 2
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "import failure"
	}
	return strings.Join(parts, ": ")
}
