package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is one audit entry awaiting a retry against the primary log
// store. Items drain oldest-first.
type Item struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	Data      json.RawMessage `json:"data"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
