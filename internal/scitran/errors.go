package scitran

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ndarimport/internal/services"
)

// UploadError reports a non-success response from the service.
type UploadError struct {
	Method     string
	Path       string
	StatusCode int
	Reason     string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s %s returned %d %s", e.Method, e.Path, e.StatusCode, e.Reason)
}

// Unwrap lets errors.Is match services.ErrUpload.
func (e *UploadError) Unwrap() error {
	return services.ErrUpload
}

func newUploadError(resp *http.Response) *UploadError {
	uerr := &UploadError{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
	}
	if req := resp.Request; req != nil {
		uerr.Method = req.Method
		if req.URL != nil {
			uerr.Path = req.URL.Path
		}
	}
	return uerr
}

// reasonPhrase returns the text following the status code on the status line,
// falling back to the canonical text when the server sent none.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
