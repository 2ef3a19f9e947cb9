package domain

import (
	"time"

	"tradematch.app/linkup/internal/model"
)

// NewConnection builds a fresh connection from a validated draft. The status history
// starts with the initial state so it is never empty.
func NewConnection(connID, ownerUserID int64, draft Draft, lc *Lifecycle, now time.Time) model.Connection {
	status, stage := lc.Initial()
	now = now.UTC()

	return model.Connection{
		ID:                connID,
		MatchID:           draft.MatchID,
		BuyerProfileID:    draft.BuyerProfileID,
		SupplierProfileID: draft.SupplierProfileID,
		OwnerUserID:       ownerUserID,
		IntroMessage:      draft.IntroMessage,
		Locale:            draft.Locale,
		Attachments:       draft.Attachments,
		LogisticsPlan:     draft.LogisticsPlan,
		MeetingProposal:   draft.MeetingProposal,
		Status:            status,
		Stage:             stage,
		StatusHistory: []model.StatusHistoryEntry{
			{Status: status, Stage: stage, OccurredAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendHistory returns a copy of conn moved to status/stage with one more history
// entry. Earlier entries are shared, never modified. now is always server time.
func AppendHistory(conn model.Connection, status model.ConnectionStatus, stage model.ConnectionStage, note *string, now time.Time) model.Connection {
	now = now.UTC()

	history := make([]model.StatusHistoryEntry, len(conn.StatusHistory), len(conn.StatusHistory)+1)
	copy(history, conn.StatusHistory)
	history = append(history, model.StatusHistoryEntry{
		Status:     status,
		Stage:      stage,
		OccurredAt: now,
		Note:       note,
	})

	conn.Status = status
	conn.Stage = stage
	conn.StatusHistory = history
	conn.UpdatedAt = now
	return conn
}

// LatestEntry is the entry that produced the current status.
func LatestEntry(conn model.Connection) (model.StatusHistoryEntry, bool) {
	if len(conn.StatusHistory) == 0 {
		return model.StatusHistoryEntry{}, false
	}
	return conn.StatusHistory[len(conn.StatusHistory)-1], true
}
