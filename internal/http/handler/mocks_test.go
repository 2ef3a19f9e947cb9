package handler_test

import (
	"context"
	"sync"

	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/idempotency"
	"tradematch.app/linkup/internal/model"
	"tradematch.app/linkup/internal/service"
)

type mockConnectionService struct {
	createFn       func(ctx context.Context, ownerUserID int64, in domain.CreateConnectionInput) (*model.Connection, error)
	listFn         func(ctx context.Context, ownerUserID int64, params service.ListConnectionsParams) ([]model.Connection, error)
	getFn          func(ctx context.Context, ownerUserID, connID int64) (*model.Connection, error)
	updateStatusFn func(ctx context.Context, ownerUserID, connID int64, change service.StatusChange) (*model.Connection, error)
	createCalls    int
}

func (m *mockConnectionService) Create(ctx context.Context, ownerUserID int64, in domain.CreateConnectionInput) (*model.Connection, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, ownerUserID, in)
	}
	return nil, nil
}

func (m *mockConnectionService) List(ctx context.Context, ownerUserID int64, params service.ListConnectionsParams) ([]model.Connection, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerUserID, params)
	}
	return []model.Connection{}, nil
}

func (m *mockConnectionService) Get(ctx context.Context, ownerUserID, connID int64) (*model.Connection, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerUserID, connID)
	}
	return nil, service.ErrConnectionNotFound
}

func (m *mockConnectionService) UpdateStatus(ctx context.Context, ownerUserID, connID int64, change service.StatusChange) (*model.Connection, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, ownerUserID, connID, change)
	}
	return nil, service.ErrConnectionNotFound
}

type mockAuthService struct {
	resolveFn func(ctx context.Context, creds service.Credentials) (*model.User, error)
}

func (m *mockAuthService) Resolve(ctx context.Context, creds service.Credentials) (*model.User, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, creds)
	}
	return nil, service.ErrUnauthenticated
}

type memIdempotencyStore struct {
	mu      sync.Mutex
	records map[idempotency.Scope]idempotency.Record
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{records: map[idempotency.Scope]idempotency.Record{}}
}

func (m *memIdempotencyStore) Get(_ context.Context, scope idempotency.Scope) (idempotency.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[scope]
	return rec, ok, nil
}

func (m *memIdempotencyStore) Save(_ context.Context, scope idempotency.Scope, rec idempotency.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[scope]; !ok {
		m.records[scope] = rec
	}
	return nil
}
