package models

import (
	"encoding/json"
	"time"
)

// CachedRecord is one cached entity instance, keyed by ID within its
// collection. Data always holds the full server payload; a fresh value from
// the remote store fully overwrites the previous one, never a field merge.
// Invariant: the "id" field inside Data equals ID.
type CachedRecord struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	Synced    bool            `json:"synced"`
	UpdatedAt time.Time       `json:"updated_at"`
}
