package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tradematch.app/linkup/core/db/sqlc"
	"tradematch.app/linkup/internal/model"
)

type sessionStore struct {
	queries *sqlc.Queries
}

func newSessionStore(queries *sqlc.Queries) SessionStore {
	return &sessionStore{queries: queries}
}

func (s *sessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	row, err := s.queries.GetValidSession(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.Session{
		ID:        row.ID,
		UserID:    row.UserID,
		ExpiresAt: row.ExpiresAt.Time,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}
