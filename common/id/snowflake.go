// Package id issues run IDs. A run ID is a snowflake whose node bits come
// from the process ID, so two cynthia processes generating into the same
// .cynthia directory do not hand out the same ID.
package id

import (
	"os"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// NodeForPID maps a process ID onto the snowflake node range.
func NodeForPID(pid int) int64 {
	limit := int64(-1) ^ (int64(-1) << snowflake.NodeBits)
	return int64(pid) & limit
}

// Init selects the node used by New. Calling it again replaces the node.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// New returns the next run ID. Without Init the node is derived from the
// current process.
func New() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(NodeForPID(os.Getpid()))
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
