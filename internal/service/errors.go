package service

import (
	"errors"

	"rumorplaza/internal/models"
	"rumorplaza/internal/repository"
)

// mapStoreError converts a store error into the AppError the HTTP layer reports.
func mapStoreError(err error, postID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError("Post", postID)
	case errors.Is(err, repository.ErrPasswordMismatch):
		return models.NewForbiddenError("Password does not match")
	case errors.Is(err, repository.ErrInvalidPost):
		return &models.AppError{Code: models.CodeValidation, Message: "Invalid post", Err: err}
	default:
		return models.NewInternalError(err)
	}
}
