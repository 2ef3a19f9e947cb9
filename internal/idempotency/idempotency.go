// Package idempotency replays the first response recorded for a client-supplied
// Idempotency-Key.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxKeyLength bounds the header value accepted from clients.
const MaxKeyLength = 255

var ErrKeyTooLong = errors.New("idempotency key too long")

// Scope identifies one idempotent call. Keys are private to a user and an endpoint.
type Scope struct {
	UserID   int64
	Endpoint string
	Key      string
}

type Record struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type Store interface {
	Get(ctx context.Context, scope Scope) (Record, bool, error)
	// Save keeps the first record written for a scope.
	Save(ctx context.Context, scope Scope, rec Record) error
}

// Replay returns the recorded response for scope. Without a key it is a no-op.
func Replay(ctx context.Context, st Store, scope Scope) (Record, bool, error) {
	if scope.Key == "" {
		return Record{}, false, nil
	}
	if len(scope.Key) > MaxKeyLength {
		return Record{}, false, ErrKeyTooLong
	}
	return st.Get(ctx, scope)
}

func Save(ctx context.Context, st Store, scope Scope, status int, body []byte) error {
	if scope.Key == "" {
		return nil
	}
	return st.Save(ctx, scope, Record{Status: status, Body: body})
}

type redisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, scope Scope) (Record, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("reading idempotency record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decoding idempotency record: %w", err)
	}
	return rec, true, nil
}

func (s *redisStore) Save(ctx context.Context, scope Scope, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding idempotency record: %w", err)
	}
	if err := s.client.SetNX(ctx, redisKey(scope), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving idempotency record: %w", err)
	}
	return nil
}

func redisKey(scope Scope) string {
	sum := sha256.Sum256([]byte(scope.Key))
	return "linkup:idem:" + strconv.FormatInt(scope.UserID, 10) + ":" + scope.Endpoint + ":" + hex.EncodeToString(sum[:])
}
