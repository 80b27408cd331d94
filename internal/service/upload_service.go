// FILE: internal/service/upload_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"finance-dashboard/internal/dto"
	"finance-dashboard/internal/pkg/logger"
	"finance-dashboard/internal/pkg/serverutils"
	"finance-dashboard/internal/store"
	"finance-dashboard/pkg/analysis"
)

var ErrFileTooLarge = errors.New("file exceeds the upload limit")

type IUploadService interface {
	// UploadAndNormalize sends the spreadsheet to the backend, asks it to
	// normalize the data and, only when both succeed, installs the new session
	// handle in the visitor's store.
	UploadAndNormalize(ctx context.Context, st *store.Store, req dto.UploadRequest, file io.Reader) (string, error)
}

type uploadService struct {
	backend  analysis.Backend
	maxBytes int64
	logger   logger.ILogger
}

func NewUploadService(backend analysis.Backend, maxBytes int64, log logger.ILogger) IUploadService {
	return &uploadService{
		backend:  backend,
		maxBytes: maxBytes,
		logger:   log,
	}
}

func (s *uploadService) UploadAndNormalize(ctx context.Context, st *store.Store, req dto.UploadRequest, file io.Reader) (string, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return "", err
	}
	if s.maxBytes > 0 && req.Size > s.maxBytes {
		return "", fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, s.maxBytes)
	}

	result, err := s.backend.Upload(ctx, req.Filename, file)
	if err != nil {
		s.logger.Warn("UPLOAD", "Upload rejected", map[string]interface{}{
			"filename": req.Filename,
			"error":    err.Error(),
		})
		return "", err
	}

	if err := s.backend.Normalize(ctx, result.SessionID); err != nil {
		s.logger.Warn("UPLOAD", "Normalization failed", map[string]interface{}{
			"session_id": result.SessionID,
			"error":      err.Error(),
		})
		return "", err
	}

	st.SetSessionHandle(result.SessionID)
	s.logger.Info("UPLOAD", "Spreadsheet analysed", map[string]interface{}{
		"filename":   req.Filename,
		"session_id": result.SessionID,
		"size":       req.Size,
	})
	return result.SessionID, nil
}
