// FILE: internal/dto/dashboard_dto.go
package dto

import "time"

// UploadRequest describes the spreadsheet part of a POST /upload form.
type UploadRequest struct {
	Filename string `form:"file" validate:"required,spreadsheet"`
	Size     int64  `form:"file" validate:"gt=0"`
}

type ReportRequest struct {
	Topic string `form:"topic" json:"topic" validate:"required"`
}

type ResourceStatusResponse struct {
	State     string     `json:"state"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type StateResponse struct {
	SessionID  string                            `json:"session_id"`
	Generation uint64                            `json:"generation"`
	Resources  map[string]ResourceStatusResponse `json:"resources"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}
