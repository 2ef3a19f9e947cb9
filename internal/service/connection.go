package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tradematch.app/linkup/common/id"
	"tradematch.app/linkup/common/logger"
	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/model"
	"tradematch.app/linkup/internal/queue"
	"tradematch.app/linkup/internal/store"
)

var (
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrConflict means another transition committed first. Callers may re-read
	// and resubmit.
	ErrConflict = errors.New("connection was modified concurrently")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type ListConnectionsParams struct {
	Status *string
	Limit  int32
	Offset int32
}

// StatusChange is a requested transition. ExpectedStatus, when set, pins the
// status the caller last observed.
type StatusChange struct {
	Status         string
	Note           *string
	ExpectedStatus *string
}

type ConnectionService interface {
	Create(ctx context.Context, ownerUserID int64, in domain.CreateConnectionInput) (*model.Connection, error)
	List(ctx context.Context, ownerUserID int64, params ListConnectionsParams) ([]model.Connection, error)
	Get(ctx context.Context, ownerUserID, connID int64) (*model.Connection, error)
	UpdateStatus(ctx context.Context, ownerUserID, connID int64, change StatusChange) (*model.Connection, error)
}

type connectionService struct {
	txRunner    TxRunner
	connections store.ConnectionStore
	references  store.ReferenceStore
	producer    queue.Producer
	lifecycle   *domain.Lifecycle
	rules       domain.Rules
	now         func() time.Time
}

type ConnectionOption func(*connectionService)

// WithClock replaces the server clock used for history timestamps.
func WithClock(now func() time.Time) ConnectionOption {
	return func(s *connectionService) { s.now = now }
}

// NewConnectionService wires the lifecycle engine to storage. producer may be nil,
// in which case no transition events are published.
func NewConnectionService(
	txRunner TxRunner,
	connections store.ConnectionStore,
	references store.ReferenceStore,
	producer queue.Producer,
	lifecycle *domain.Lifecycle,
	rules domain.Rules,
	opts ...ConnectionOption,
) ConnectionService {
	s := &connectionService{
		txRunner:    txRunner,
		connections: connections,
		references:  references,
		producer:    producer,
		lifecycle:   lifecycle,
		rules:       rules,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *connectionService) Create(ctx context.Context, ownerUserID int64, in domain.CreateConnectionInput) (*model.Connection, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(ownerUserID),
		Component: "linkup.service.connection",
	})
	sc := logger.StartSpan(ctx, "connection.create")
	defer sc.End()
	ctx = sc.Context()

	draft, err := domain.ValidateDraft(s.rules, in)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, draft); err != nil {
		sc.RecordError(err)
		return nil, err
	}

	conn := domain.NewConnection(id.New(), ownerUserID, draft, s.lifecycle, s.now())
	conn.StatusHistory[0].ID = id.New()

	if err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		return stores.Connections().Create(ctx, &conn)
	}); err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("creating connection: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ConnectionID: logger.Ptr(conn.ID)})
	sc.Span().SetAttributes(attribute.Int64("connection.id", conn.ID))
	slog.InfoContext(ctx, "connection created",
		"match_id", conn.MatchID,
		"buyer_profile_id", conn.BuyerProfileID,
		"supplier_profile_id", conn.SupplierProfileID,
	)

	s.publish(ctx, queue.TransitionEvent{
		Type:         queue.EventConnectionCreated,
		ConnectionID: conn.ID,
		OwnerUserID:  ownerUserID,
		To:           conn.Status,
		Stage:        conn.Stage,
		OccurredAt:   conn.CreatedAt,
	})

	return &conn, nil
}

// checkReferences reports missing matches and profiles as field issues.
func (s *connectionService) checkReferences(ctx context.Context, draft domain.Draft) error {
	verr := &domain.ValidationError{}

	ok, err := s.references.MatchExists(ctx, draft.MatchID)
	if err != nil {
		return fmt.Errorf("checking match %d: %w", draft.MatchID, err)
	}
	if !ok {
		verr.Issues = append(verr.Issues, domain.FieldIssue{Field: "matchId", Reason: "does not exist"})
	}

	for _, ref := range []struct {
		field string
		id    int64
	}{
		{"buyerProfileId", draft.BuyerProfileID},
		{"supplierProfileId", draft.SupplierProfileID},
	} {
		ok, err := s.references.ProfileExists(ctx, ref.id)
		if err != nil {
			return fmt.Errorf("checking profile %d: %w", ref.id, err)
		}
		if !ok {
			verr.Issues = append(verr.Issues, domain.FieldIssue{Field: ref.field, Reason: "does not exist"})
		}
	}

	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}

func (s *connectionService) List(ctx context.Context, ownerUserID int64, params ListConnectionsParams) ([]model.Connection, error) {
	filter := store.ListFilter{Limit: params.Limit, Offset: params.Offset}

	if params.Status != nil {
		status, err := domain.ParseStatus(*params.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	switch {
	case filter.Limit < 0:
		return nil, domain.NewValidationError("limit", "must not be negative")
	case filter.Limit == 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}

	conns, err := s.connections.ListByOwner(ctx, ownerUserID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	return conns, nil
}

func (s *connectionService) Get(ctx context.Context, ownerUserID, connID int64) (*model.Connection, error) {
	conn, err := s.connections.GetByIDForOwner(ctx, connID, ownerUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, fmt.Errorf("getting connection: %w", err)
	}
	return conn, nil
}

func (s *connectionService) UpdateStatus(ctx context.Context, ownerUserID, connID int64, change StatusChange) (*model.Connection, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConnectionID: logger.Ptr(connID),
		UserID:       logger.Ptr(ownerUserID),
		ToStatus:     logger.Ptr(change.Status),
		Component:    "linkup.service.connection",
	})
	sc := logger.StartSpan(ctx, "connection.update_status")
	defer sc.End()
	ctx = sc.Context()

	target, err := domain.ParseStatus(change.Status)
	if err != nil {
		return nil, err
	}
	note, err := domain.NormalizeNote(change.Note)
	if err != nil {
		return nil, err
	}
	var expected *model.ConnectionStatus
	if change.ExpectedStatus != nil {
		status := model.ConnectionStatus(*change.ExpectedStatus)
		if !status.Valid() {
			return nil, domain.NewValidationError("expectedStatus", fmt.Sprintf("unknown status %q", *change.ExpectedStatus))
		}
		expected = &status
	}

	var (
		updated *model.Connection
		from    model.ConnectionStatus
	)
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		current, err := stores.Connections().GetByIDForOwner(ctx, connID, ownerUserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrConnectionNotFound
			}
			return fmt.Errorf("getting connection: %w", err)
		}
		from = current.Status

		if expected != nil && *expected != current.Status {
			return fmt.Errorf("%w: expected %s, found %s", ErrConflict, *expected, current.Status)
		}

		status, stage, err := s.lifecycle.Transition(current.Status, target)
		if err != nil {
			return err
		}

		next := domain.AppendHistory(*current, status, stage, note, s.now())
		entry, _ := domain.LatestEntry(next)
		entry.ID = id.New()

		updated, err = stores.Connections().UpdateStatus(ctx, store.UpdateStatusParams{
			ID:          connID,
			OwnerUserID: ownerUserID,
			From:        current.Status,
			Entry:       entry,
		})
		if err != nil {
			if errors.Is(err, store.ErrStaleStatus) {
				return ErrConflict
			}
			return fmt.Errorf("updating connection status: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, ErrConflict):
			slog.InfoContext(ctx, "status transition rejected", "from_status", from, "reason", err.Error())
		case !errors.Is(err, ErrConnectionNotFound):
			sc.RecordError(err)
		}
		return nil, err
	}

	entry, _ := domain.LatestEntry(*updated)
	slog.InfoContext(ctx, "status transition applied",
		"from_status", from,
		"stage", entry.Stage,
		"history_length", len(updated.StatusHistory),
	)

	s.publish(ctx, queue.TransitionEvent{
		Type:         queue.EventStatusChanged,
		ConnectionID: updated.ID,
		OwnerUserID:  ownerUserID,
		From:         from,
		To:           updated.Status,
		Stage:        updated.Stage,
		OccurredAt:   entry.OccurredAt,
	})

	return updated, nil
}

// publish runs after commit. A failed publish is logged and never fails the request.
func (s *connectionService) publish(ctx context.Context, evt queue.TransitionEvent) {
	if s.producer == nil {
		return
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID := spanCtx.TraceID().String()
		evt.TraceID = &traceID
	}
	if err := s.producer.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "failed to publish transition event", "error", err, "event_type", evt.Type)
	}
}
