package models

import (
	"encoding/json"
	"time"
)

// OperationType classifies a queued offline mutation.
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// Valid reports whether t is one of the known operation types.
func (t OperationType) Valid() bool {
	switch t {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// PendingOperation is a mutation recorded while the client was offline,
// waiting to be replayed against the remote store. ID is assigned by the
// queue storage (auto-increment) and doubles as the FIFO replay order key.
// Operations are removed one at a time, each strictly after its own remote
// replay succeeds.
type PendingOperation struct {
	ID        int64           `json:"id"`
	Type      OperationType   `json:"type"`
	Table     Collection      `json:"table"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}
