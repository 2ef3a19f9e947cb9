package id

import (
	"errors"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// ErrInvalid is returned by Parse for anything that is not a positive int64.
var ErrInvalid = errors.New("invalid id")

// Init initializes the Snowflake node with the given node ID.
// Only the first call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new globally unique int64 ID using the Snowflake algorithm.
// IDs are time-ordered, so sorting by ID approximates creation order.
func New() int64 {
	return node.Generate().Int64()
}

// Parse converts the string form used on the wire back into an ID.
func Parse(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalid
	}
	return v, nil
}

// Format renders an ID the way it travels in JSON and URLs.
func Format(v int64) string {
	return strconv.FormatInt(v, 10)
}
