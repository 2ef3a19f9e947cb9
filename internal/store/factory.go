package store

import (
	"tradematch.app/linkup/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Connections() ConnectionStore {
	return newConnectionStore(s.queries)
}

func (s *Stores) Sessions() SessionStore {
	return newSessionStore(s.queries)
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.queries)
}

func (s *Stores) References() ReferenceStore {
	return newReferenceStore(s.queries)
}
