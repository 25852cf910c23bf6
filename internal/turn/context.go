package turn

import (
	"fmt"
	"strings"

	"github.com/aiox-platform/travelbot/internal/history"
	"github.com/aiox-platform/travelbot/internal/search"
)

// BlockKind labels a section of the prompt context.
type BlockKind int

const (
	BlockHistory BlockKind = iota
	BlockTranscript
	BlockImageDescription
	BlockCaption
	BlockSearchResults
	BlockUserQuery
)

var blockHeaders = map[BlockKind]string{
	BlockHistory:          "### Conversation History:",
	BlockTranscript:       "### Audio Transcript:",
	BlockImageDescription: "### Image Description:",
	BlockCaption:          "### Image Caption:",
	BlockSearchResults:    "### Web Search Results:",
	BlockUserQuery:        "### User Query:",
}

func (k BlockKind) String() string {
	switch k {
	case BlockHistory:
		return "history"
	case BlockTranscript:
		return "transcript"
	case BlockImageDescription:
		return "image-description"
	case BlockCaption:
		return "caption"
	case BlockSearchResults:
		return "search-results"
	case BlockUserQuery:
		return "user-query"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// Block is one labeled fragment of the prompt context.
type Block struct {
	Kind BlockKind
	Body string
}

func (b Block) String() string {
	return blockHeaders[b.Kind] + "\n" + b.Body + "\n"
}

// Blocks is an ordered prompt context.
type Blocks []Block

// Assemble builds the context in the order history, transcript, image
// description, caption, user query. Empty fields contribute no block.
func Assemble(window []history.Record, in *Normalized) Blocks {
	var blocks Blocks
	if len(window) > 0 {
		blocks = append(blocks, Block{Kind: BlockHistory, Body: renderHistory(window)})
	}
	if in == nil {
		return blocks
	}
	if in.Transcript != "" {
		blocks = append(blocks, Block{Kind: BlockTranscript, Body: in.Transcript})
	}
	if in.Description != "" {
		blocks = append(blocks, Block{Kind: BlockImageDescription, Body: in.Description})
	}
	if in.Caption != "" {
		blocks = append(blocks, Block{Kind: BlockCaption, Body: in.Caption})
	}
	if in.Text != "" {
		blocks = append(blocks, Block{Kind: BlockUserQuery, Body: in.Text})
	}
	return blocks
}

func renderHistory(window []history.Record) string {
	var sb strings.Builder
	for _, rec := range window {
		fmt.Fprintf(&sb, "\nUser: %s\nAssistant: %s\n", rec.User, rec.Assistant)
	}
	return sb.String()
}

func renderSearchResults(results []search.Result) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return sb.String()
}

// WithSearchResults returns a copy of bs with a search-results block placed
// before the user-query block. Turns without a user query get it before
// their last block.
func (bs Blocks) WithSearchResults(text string) Blocks {
	block := Block{Kind: BlockSearchResults, Body: text}
	at := len(bs) - 1
	for i := len(bs) - 1; i >= 0; i-- {
		if bs[i].Kind == BlockUserQuery {
			at = i
			break
		}
	}
	if at < 0 {
		at = 0
	}

	out := make(Blocks, 0, len(bs)+1)
	out = append(out, bs[:at]...)
	out = append(out, block)
	out = append(out, bs[at:]...)
	return out
}

// WithoutHistory returns the blocks that are persisted with an exchange.
func (bs Blocks) WithoutHistory() Blocks {
	out := make(Blocks, 0, len(bs))
	for _, b := range bs {
		if b.Kind != BlockHistory {
			out = append(out, b)
		}
	}
	return out
}

// Kinds returns the block kinds in order.
func (bs Blocks) Kinds() []BlockKind {
	kinds := make([]BlockKind, len(bs))
	for i, b := range bs {
		kinds[i] = b.Kind
	}
	return kinds
}

// String serializes the context as prompt text.
func (bs Blocks) String() string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.String()
	}
	return strings.Join(parts, "\n")
}
