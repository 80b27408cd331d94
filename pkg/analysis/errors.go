package analysis

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatus matches every *StatusError via errors.Is.
var ErrUnexpectedStatus = errors.New("analysis: unexpected status")

// Generic failure messages shown to the user. Error bodies from the backend
// are never parsed, so one message per operation is all the detail there is.
const (
	msgUpload    = "upload failed"
	msgNormalize = "normalization failed"
	msgKPIs      = "failed to fetch KPIs"
	msgCharts    = "failed to fetch chart data"
	msgData      = "failed to fetch normalized data"
	msgReport    = "failed to generate report"
	msgHealth    = "health check failed"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	message    string
}

func newStatusError(op string, code int, message string) *StatusError {
	return &StatusError{Op: op, StatusCode: code, message: message}
}

func (e *StatusError) Error() string {
	return e.message
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Detail includes the status code, for logs only.
func (e *StatusError) Detail() string {
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}
