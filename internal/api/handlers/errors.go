package handlers

import (
	"errors"

	"github.com/RMahshie/scopebench/internal/processing"
	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

// parseID validates a path identifier
func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, huma.Error400BadRequest("Invalid "+what+" ID", err)
	}
	return id, nil
}

// serviceError maps service sentinels onto HTTP errors
func serviceError(err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return huma.Error404NotFound(notFound, err)
	case errors.Is(err, models.ErrNoSuchChannel),
		errors.Is(err, scope.ErrInvalidConfig),
		errors.Is(err, processing.ErrUnknownPreset):
		return huma.Error400BadRequest(err.Error(), err)
	case errors.Is(err, processing.ErrIndexOutOfRange),
		errors.Is(err, scope.ErrInsufficientData):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	default:
		return huma.Error500InternalServerError("Internal error", err)
	}
}

// optionalDomain parses a query domain; empty means unset
func optionalDomain(raw string) (*scope.Domain, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := scope.ParseDomain(raw)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid domain", err)
	}
	return &d, nil
}
