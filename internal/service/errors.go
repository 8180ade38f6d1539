package service

import (
	"context"
	"errors"

	"go-tearfilm-inspector/internal/analyzer"
	apperrors "go-tearfilm-inspector/internal/errors"
	"go-tearfilm-inspector/internal/repository"
	"go-tearfilm-inspector/internal/storage"
	"go-tearfilm-inspector/internal/strategy"
	"go-tearfilm-inspector/pkg/models"
)

// mapAnalysisError converts analyzer failures to AppErrors
func mapAnalysisError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, analyzer.ErrInvalidImage):
		return apperrors.NewProcessingError("image cannot be analysed", err)
	case errors.Is(err, analyzer.ErrEmptyRegion):
		return apperrors.NewEmptyRegionError("region of interest is empty after exclusion", err)
	case errors.Is(err, analyzer.ErrUnsupportedStrategy):
		return apperrors.NewValidationError("unsupported strategy", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("analysis timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("analysis cancelled", err)
	default:
		return apperrors.NewInternalError("analysis failed", err)
	}
}

// mapFetchError converts repository and storage failures to AppErrors
func mapFetchError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrInvalidImageURL),
		errors.Is(err, repository.ErrBlobStorageDisabled),
		errors.Is(err, storage.ErrForeignAccount):
		return apperrors.NewValidationError("image URL cannot be fetched", err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewTooLargeError("image exceeds size limit", err)
	case errors.Is(err, storage.ErrUnexpectedContentType), errors.Is(err, storage.ErrDecode):
		return apperrors.NewProcessingError("resource is not a readable image", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

// Suggestion returns the closest preset name for an unknown preset error
func Suggestion(err error) string {
	var unknown *strategy.UnknownPresetError
	if errors.As(err, &unknown) {
		return unknown.Suggestion
	}
	return ""
}

// ErrorResponse renders err the way handlers report it
func ErrorResponse(err error) models.ErrorResponse {
	resp := models.ErrorResponse{Error: "internal", Message: "internal server error"}
	if appErr, ok := apperrors.As(err); ok {
		resp.Error = string(appErr.Type)
		resp.Message = appErr.Message
		resp.Details = appErr.Details
		if appErr.Cause != nil && resp.Details == "" {
			resp.Details = appErr.Cause.Error()
		}
	}
	resp.Suggestion = Suggestion(err)
	return resp
}

func errorResponse(err error) *models.ErrorResponse {
	resp := ErrorResponse(err)
	return &resp
}
