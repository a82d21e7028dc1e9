package relstore

import (
	"strconv"
	"sync/atomic"
)

// TransactionID is an opaque, globally unique, monotonically assigned
// identifier for a transaction. Its total order is used by the buffer
// pool's deadlock arbitration rule.
type TransactionID struct {
	id int64
}

var nextTID int64

// NewTID assigns a fresh, globally unique TransactionID. Safe to call
// concurrently from any number of goroutines.
func NewTID() TransactionID {
	return TransactionID{id: atomic.AddInt64(&nextTID, 1)}
}

// older reports whether t was assigned before other (smaller id), the total
// order used by the deadlock arbiter.
func (t TransactionID) older(other TransactionID) bool {
	return t.id < other.id
}

func (t TransactionID) String() string {
	return "txn#" + strconv.FormatInt(t.id, 10)
}
