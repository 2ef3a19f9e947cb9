package store

import (
	"context"
	"errors"

	"tradematch.app/linkup/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrStaleStatus is returned when a status update finds the connection in a
// different status than the caller read.
var ErrStaleStatus = errors.New("connection status changed concurrently")

// ListFilter narrows and pages ListByOwner results. A zero Limit means no paging.
type ListFilter struct {
	Status *model.ConnectionStatus
	Limit  int32
	Offset int32
}

// UpdateStatusParams moves a connection from From to Entry.Status. Entry is
// appended to the history in the same write.
type UpdateStatusParams struct {
	ID          int64
	OwnerUserID int64
	From        model.ConnectionStatus
	Entry       model.StatusHistoryEntry
}

// ConnectionStore defines the contract for connection data access
type ConnectionStore interface {
	// Create inserts the connection together with its initial history.
	Create(ctx context.Context, conn *model.Connection) error
	GetByID(ctx context.Context, id int64) (*model.Connection, error)
	// GetByIDForOwner returns ErrNotFound for connections owned by someone else.
	GetByIDForOwner(ctx context.Context, id, ownerUserID int64) (*model.Connection, error)
	ListByOwner(ctx context.Context, ownerUserID int64, filter ListFilter) ([]model.Connection, error)
	// UpdateStatus is a compare-and-set on the current status. It returns
	// ErrStaleStatus when the connection is no longer in From.
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (*model.Connection, error)
}

// SessionStore defines the contract for session data access
type SessionStore interface {
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
}

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// ReferenceStore answers existence checks for entities owned by the
// matchmaking directory.
type ReferenceStore interface {
	MatchExists(ctx context.Context, id int64) (bool, error)
	ProfileExists(ctx context.Context, id int64) (bool, error)
}
