package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tradematch.app/linkup/internal/model"
)

type EventType string

const (
	EventConnectionCreated EventType = "connection.created"
	EventStatusChanged     EventType = "connection.status_changed"
)

// TransitionEvent announces a committed lifecycle change. From is empty for
// EventConnectionCreated.
type TransitionEvent struct {
	Type         EventType
	ConnectionID int64
	OwnerUserID  int64
	From         model.ConnectionStatus
	To           model.ConnectionStatus
	Stage        model.ConnectionStage
	OccurredAt   time.Time
	TraceID      *string
}

type Producer interface {
	Publish(ctx context.Context, evt TransitionEvent) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, evt TransitionEvent) error {
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: evt.values(),
	}).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	p.logger.InfoContext(ctx, "published transition event",
		"event_type", evt.Type,
		"connection_id", evt.ConnectionID,
		"from_status", evt.From,
		"to_status", evt.To,
	)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

func (e TransitionEvent) values() map[string]any {
	fields := map[string]any{
		"event_type":    string(e.Type),
		"connection_id": strconv.FormatInt(e.ConnectionID, 10),
		"owner_user_id": strconv.FormatInt(e.OwnerUserID, 10),
		"to_status":     string(e.To),
		"stage":         string(e.Stage),
		"occurred_at":   e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if e.From != "" {
		fields["from_status"] = string(e.From)
	}
	if e.TraceID != nil && *e.TraceID != "" {
		fields["trace_id"] = *e.TraceID
	}
	return fields
}
