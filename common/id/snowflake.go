// Package id hands out snowflake ids for database rows. The server and the
// worker run as different nodes so their ids never collide.
package id

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var ErrNotInitialized = errors.New("id generator not initialized")

var (
	mu   sync.RWMutex
	node *snowflake.Node
)

// Init sets the node for this process. Calling it again with the same node is
// a no-op; a different node is an error.
func Init(nodeID int64) error {
	mu.Lock()
	defer mu.Unlock()

	if node != nil {
		if got := node.Generate().Node(); got != nodeID {
			return fmt.Errorf("id generator already running as node %d", got)
		}
		return nil
	}

	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("creating snowflake node %d: %w", nodeID, err)
	}
	node = n
	return nil
}

// New returns a time-ordered unique id. It panics if Init was never called,
// which is a wiring bug rather than a runtime condition.
func New() int64 {
	mu.RLock()
	n := node
	mu.RUnlock()
	if n == nil {
		panic(ErrNotInitialized)
	}
	return n.Generate().Int64()
}
