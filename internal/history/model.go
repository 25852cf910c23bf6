package history

import (
	"context"
	"time"
)

// WindowSize is the number of prior exchanges fed back into the prompt.
const WindowSize = 5

// keyLayout gives record keys second resolution. Two appends for the same
// conversation within one second share a key and the later one wins.
const keyLayout = "20060102150405"

// Record is one persisted exchange: the non-history context the user turn
// was answered with, and the assistant reply.
type Record struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines exchange record persistence, partitioned by conversation id.
type Repository interface {
	// ListRecent returns at most limit records, newest first.
	ListRecent(ctx context.Context, conversationID string, limit int) ([]Record, error)
	// Append stores rec under Key(conversationID, rec.CreatedAt), overwriting
	// any record already stored under that key.
	Append(ctx context.Context, conversationID string, rec Record) error
}

// Key returns the storage key of a record: {conversationId}/{YYYYMMDDHHMMSS}.
func Key(conversationID string, at time.Time) string {
	return conversationID + "/" + at.UTC().Format(keyLayout)
}

func stamp(rec *Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Second)
}
