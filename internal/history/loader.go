package history

import (
	"context"
	"log/slog"
	"slices"
)

// Loader builds the history window for a conversation.
type Loader struct {
	repo  Repository
	limit int
}

// NewLoader creates a Loader returning at most WindowSize records.
func NewLoader(repo Repository) *Loader {
	return &Loader{repo: repo, limit: WindowSize}
}

// Load returns the most recent records oldest first. Storage failures are
// logged and produce an empty window.
func (l *Loader) Load(ctx context.Context, conversationID string) []Record {
	records, err := l.repo.ListRecent(ctx, conversationID, l.limit)
	if err != nil {
		slog.Error("loading conversation history",
			"conversation_id", conversationID,
			"error", err)
		return nil
	}
	if len(records) > l.limit {
		records = records[:l.limit]
	}
	window := slices.Clone(records)
	slices.Reverse(window)
	return window
}
