package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-path/internal/progress"
	"github.com/jonathan/career-path/internal/types"
	"github.com/jonathan/career-path/internal/validation"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		typesErr     *types.ValidationError
		validErr     *validation.Error
		validatorErr validator.ValidationErrors
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &typesErr), errors.As(err, &validErr), errors.As(err, &validatorErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, progress.ErrRoadmapNotFound), errors.Is(err, progress.ErrSkillNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with the status HTTPStatus maps it to.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}
