package store

import (
	"context"

	"tradematch.app/linkup/core/db/sqlc"
)

type referenceStore struct {
	queries *sqlc.Queries
}

func newReferenceStore(queries *sqlc.Queries) ReferenceStore {
	return &referenceStore{queries: queries}
}

func (s *referenceStore) MatchExists(ctx context.Context, id int64) (bool, error) {
	return s.queries.MatchExists(ctx, id)
}

func (s *referenceStore) ProfileExists(ctx context.Context, id int64) (bool, error) {
	return s.queries.ProfileExists(ctx, id)
}
