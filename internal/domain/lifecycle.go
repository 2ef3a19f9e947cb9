package domain

import (
	"errors"
	"fmt"
	"slices"

	"tradematch.app/linkup/internal/model"
)

// ErrInvalidTransition is returned for any (from, to) pair outside the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError carries the rejected pair. It matches ErrInvalidTransition with errors.Is.
type TransitionError struct {
	From    model.ConnectionStatus
	To      model.ConnectionStatus
	Allowed []model.ConnectionStatus
}

func (e *TransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot move connection from %s to %s: %s is terminal", e.From, e.To, e.From)
	}
	return fmt.Sprintf("cannot move connection from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Lifecycle is the connection state machine. It holds the transition table and the
// stage each arrival assigns; it performs no I/O and is safe for concurrent use.
type Lifecycle struct {
	edges map[model.ConnectionStatus]map[model.ConnectionStatus]model.ConnectionStage
}

// NewLifecycle builds the transition table. closedStage is the stage assigned when a
// connection is closed, from either pending or inDiscussion.
func NewLifecycle(closedStage model.ConnectionStage) (*Lifecycle, error) {
	if !closedStage.Valid() {
		return nil, fmt.Errorf("unknown stage %q for closed connections", closedStage)
	}

	return &Lifecycle{
		edges: map[model.ConnectionStatus]map[model.ConnectionStatus]model.ConnectionStage{
			model.ConnectionStatusPending: {
				model.ConnectionStatusInDiscussion: model.ConnectionStageMeeting,
				model.ConnectionStatusClosed:       closedStage,
			},
			model.ConnectionStatusInDiscussion: {
				model.ConnectionStatusCompleted: model.ConnectionStageDeal,
				model.ConnectionStatusClosed:    closedStage,
			},
		},
	}, nil
}

// DefaultLifecycle closes connections into the review stage.
func DefaultLifecycle() *Lifecycle {
	lc, _ := NewLifecycle(model.ConnectionStageReview)
	return lc
}

// Initial is the state every connection is created in.
func (l *Lifecycle) Initial() (model.ConnectionStatus, model.ConnectionStage) {
	return model.ConnectionStatusPending, model.ConnectionStageReply
}

// Transition validates from -> to and returns the resulting status and stage.
func (l *Lifecycle) Transition(from, to model.ConnectionStatus) (model.ConnectionStatus, model.ConnectionStage, error) {
	stage, ok := l.edges[from][to]
	if !ok {
		return from, "", &TransitionError{From: from, To: to, Allowed: l.Allowed(from)}
	}
	return to, stage, nil
}

// Allowed lists the statuses reachable from `from` in a stable order.
func (l *Lifecycle) Allowed(from model.ConnectionStatus) []model.ConnectionStatus {
	next := make([]model.ConnectionStatus, 0, len(l.edges[from]))
	for to := range l.edges[from] {
		next = append(next, to)
	}
	slices.Sort(next)
	return next
}
