package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tallieo/bookkeeper/internal/domain"
)

// NotFoundError reports that a collaborator lookup came back empty: the
// entity does not exist or belongs to another workspace. The API layer maps
// it to a 404 with the message as-is.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s is not found", e.Entity, e.ID)
}

// Unwrap lets errors.Is(err, domain.ErrNotFound) keep working on wrapped
// lookups.
func (e *NotFoundError) Unwrap() error {
	return domain.ErrNotFound
}

func notFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
