package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"tradematch.app/linkup/core/db/sqlc"
	"tradematch.app/linkup/internal/model"
)

type connectionStore struct {
	queries *sqlc.Queries
}

func newConnectionStore(queries *sqlc.Queries) ConnectionStore {
	return &connectionStore{queries: queries}
}

// Create must run inside a transaction so the connection never exists without
// its initial history.
func (s *connectionStore) Create(ctx context.Context, conn *model.Connection) error {
	if len(conn.StatusHistory) == 0 {
		return errors.New("connection has no initial status history")
	}

	var plan []byte
	if conn.LogisticsPlan != nil {
		var err error
		if plan, err = json.Marshal(conn.LogisticsPlan); err != nil {
			return fmt.Errorf("encoding logistics plan: %w", err)
		}
	}

	attachments := make([]string, len(conn.Attachments))
	for i, a := range conn.Attachments {
		attachments[i] = string(a)
	}

	row, err := s.queries.CreateConnection(ctx, sqlc.CreateConnectionParams{
		ID:                conn.ID,
		MatchID:           conn.MatchID,
		BuyerProfileID:    conn.BuyerProfileID,
		SupplierProfileID: conn.SupplierProfileID,
		OwnerUserID:       conn.OwnerUserID,
		IntroMessage:      conn.IntroMessage,
		Locale:            nullableString(conn.Locale),
		Attachments:       attachments,
		LogisticsPlan:     plan,
		MeetingProposal:   toTimestamptzs(conn.MeetingProposal),
		Status:            string(conn.Status),
		Stage:             string(conn.Stage),
		CreatedAt:         toTimestamptz(conn.CreatedAt),
	})
	if err != nil {
		return err
	}

	history := make([]sqlc.ConnectionStatusHistory, 0, len(conn.StatusHistory))
	for _, entry := range conn.StatusHistory {
		h, err := s.insertHistory(ctx, conn.ID, entry)
		if err != nil {
			return err
		}
		history = append(history, h)
	}

	created, err := toConnectionModel(row, history)
	if err != nil {
		return err
	}
	*conn = *created
	return nil
}

func (s *connectionStore) GetByID(ctx context.Context, id int64) (*model.Connection, error) {
	row, err := s.queries.GetConnection(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.withHistory(ctx, row)
}

func (s *connectionStore) GetByIDForOwner(ctx context.Context, id, ownerUserID int64) (*model.Connection, error) {
	row, err := s.queries.GetConnectionForOwner(ctx, sqlc.GetConnectionForOwnerParams{
		ID:          id,
		OwnerUserID: ownerUserID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.withHistory(ctx, row)
}

func (s *connectionStore) ListByOwner(ctx context.Context, ownerUserID int64, filter ListFilter) ([]model.Connection, error) {
	params := sqlc.ListConnectionsByOwnerParams{
		OwnerUserID: ownerUserID,
		RowLimit:    filter.Limit,
		RowOffset:   filter.Offset,
	}
	if params.RowLimit <= 0 {
		params.RowLimit = 1<<31 - 1
	}
	if filter.Status != nil {
		status := string(*filter.Status)
		params.Status = &status
	}

	rows, err := s.queries.ListConnectionsByOwner(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.Connection{}, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	historyRows, err := s.queries.ListStatusHistoryForConnections(ctx, ids)
	if err != nil {
		return nil, err
	}
	byConnection := make(map[int64][]sqlc.ConnectionStatusHistory, len(rows))
	for _, h := range historyRows {
		byConnection[h.ConnectionID] = append(byConnection[h.ConnectionID], h)
	}

	conns := make([]model.Connection, 0, len(rows))
	for _, row := range rows {
		conn, err := toConnectionModel(row, byConnection[row.ID])
		if err != nil {
			return nil, err
		}
		conns = append(conns, *conn)
	}
	return conns, nil
}

// UpdateStatus must run inside a transaction. The conditional UPDATE holds the
// row lock until commit, so a competing transition on the same connection waits
// and then matches zero rows.
func (s *connectionStore) UpdateStatus(ctx context.Context, params UpdateStatusParams) (*model.Connection, error) {
	row, err := s.queries.TransitionConnectionStatus(ctx, sqlc.TransitionConnectionStatusParams{
		ToStatus:    string(params.Entry.Status),
		Stage:       string(params.Entry.Stage),
		UpdatedAt:   toTimestamptz(params.Entry.OccurredAt),
		ID:          params.ID,
		OwnerUserID: params.OwnerUserID,
		FromStatus:  string(params.From),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleStatus
		}
		return nil, err
	}

	if _, err := s.insertHistory(ctx, params.ID, params.Entry); err != nil {
		return nil, err
	}
	return s.withHistory(ctx, row)
}

func (s *connectionStore) insertHistory(ctx context.Context, connID int64, entry model.StatusHistoryEntry) (sqlc.ConnectionStatusHistory, error) {
	return s.queries.InsertStatusHistory(ctx, sqlc.InsertStatusHistoryParams{
		ID:           entry.ID,
		ConnectionID: connID,
		Status:       string(entry.Status),
		Stage:        string(entry.Stage),
		Note:         entry.Note,
		OccurredAt:   toTimestamptz(entry.OccurredAt),
	})
}

func (s *connectionStore) withHistory(ctx context.Context, row sqlc.Connection) (*model.Connection, error) {
	history, err := s.queries.ListStatusHistory(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return toConnectionModel(row, history)
}

func toConnectionModel(row sqlc.Connection, history []sqlc.ConnectionStatusHistory) (*model.Connection, error) {
	var plan *model.LogisticsPlan
	if len(row.LogisticsPlan) > 0 {
		plan = &model.LogisticsPlan{}
		if err := json.Unmarshal(row.LogisticsPlan, plan); err != nil {
			return nil, fmt.Errorf("decoding logistics plan of connection %d: %w", row.ID, err)
		}
	}

	attachments := make([]model.Attachment, len(row.Attachments))
	for i, a := range row.Attachments {
		attachments[i] = model.Attachment(a)
	}

	proposals := make([]time.Time, len(row.MeetingProposal))
	for i, ts := range row.MeetingProposal {
		proposals[i] = ts.Time.UTC()
	}

	entries := make([]model.StatusHistoryEntry, len(history))
	for i, h := range history {
		entries[i] = model.StatusHistoryEntry{
			ID:         h.ID,
			Status:     model.ConnectionStatus(h.Status),
			Stage:      model.ConnectionStage(h.Stage),
			OccurredAt: h.OccurredAt.Time.UTC(),
			Note:       h.Note,
		}
	}

	conn := &model.Connection{
		ID:                row.ID,
		MatchID:           row.MatchID,
		BuyerProfileID:    row.BuyerProfileID,
		SupplierProfileID: row.SupplierProfileID,
		OwnerUserID:       row.OwnerUserID,
		IntroMessage:      row.IntroMessage,
		Attachments:       attachments,
		LogisticsPlan:     plan,
		MeetingProposal:   proposals,
		Status:            model.ConnectionStatus(row.Status),
		Stage:             model.ConnectionStage(row.Stage),
		StatusHistory:     entries,
		CreatedAt:         row.CreatedAt.Time.UTC(),
		UpdatedAt:         row.UpdatedAt.Time.UTC(),
	}
	if row.Locale != nil {
		conn.Locale = *row.Locale
	}
	return conn, nil
}

func toTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func toTimestamptzs(ts []time.Time) []pgtype.Timestamptz {
	out := make([]pgtype.Timestamptz, len(ts))
	for i, t := range ts {
		out[i] = toTimestamptz(t)
	}
	return out
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
