package turn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aiox-platform/travelbot/internal/history"
	"github.com/aiox-platform/travelbot/internal/search"
)

func TestAssemble_Order(t *testing.T) {
	window := []history.Record{{User: "H", Assistant: "A", CreatedAt: time.Now()}}

	tests := []struct {
		name   string
		window []history.Record
		in     *Normalized
		want   []BlockKind
	}{
		{
			name:   "history transcript query",
			window: window,
			in:     &Normalized{Transcript: "T", Text: "U"},
			want:   []BlockKind{BlockHistory, BlockTranscript, BlockUserQuery},
		},
		{
			name: "text only",
			in:   &Normalized{Text: "U"},
			want: []BlockKind{BlockUserQuery},
		},
		{
			name:   "image with caption",
			window: window,
			in:     &Normalized{Description: "D", Caption: "C"},
			want:   []BlockKind{BlockHistory, BlockImageDescription, BlockCaption},
		},
		{
			name: "image without description",
			in:   &Normalized{Caption: "C"},
			want: []BlockKind{BlockCaption},
		},
		{
			name: "nothing recognized",
			in:   &Normalized{},
			want: []BlockKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(tt.window, tt.in).Kinds()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlocks_String(t *testing.T) {
	window := []history.Record{
		{User: "Where to in May?", Assistant: "Try Lisbon."},
		{User: "Budget?", Assistant: "About 80 EUR a day."},
	}
	blocks := Assemble(window, &Normalized{Transcript: "hotels near the river", Text: "U"})

	want := "### Conversation History:\n" +
		"\nUser: Where to in May?\nAssistant: Try Lisbon.\n" +
		"\nUser: Budget?\nAssistant: About 80 EUR a day.\n" +
		"\n\n" +
		"### Audio Transcript:\nhotels near the river\n" +
		"\n" +
		"### User Query:\nU\n"
	assert.Equal(t, want, blocks.String())
}

func TestBlocks_WithSearchResults(t *testing.T) {
	results := renderSearchResults([]search.Result{
		{Title: "Paris Forecast", Snippet: "Sunny", Link: "https://w.example"},
	})
	assert.Equal(t, "1. Paris Forecast\nSunny\nhttps://w.example\n\n", results)

	t.Run("before user query", func(t *testing.T) {
		in := Blocks{{Kind: BlockHistory, Body: "h"}, {Kind: BlockUserQuery, Body: "q"}}
		out := in.WithSearchResults(results)

		assert.Equal(t, []BlockKind{BlockHistory, BlockSearchResults, BlockUserQuery}, out.Kinds())
		assert.Equal(t, []BlockKind{BlockHistory, BlockUserQuery}, in.Kinds())
	})

	t.Run("no user query", func(t *testing.T) {
		in := Blocks{{Kind: BlockImageDescription, Body: "d"}, {Kind: BlockCaption, Body: "c"}}
		out := in.WithSearchResults(results)

		assert.Equal(t, []BlockKind{BlockImageDescription, BlockSearchResults, BlockCaption}, out.Kinds())
	})

	t.Run("empty", func(t *testing.T) {
		out := Blocks{}.WithSearchResults(results)
		assert.Equal(t, []BlockKind{BlockSearchResults}, out.Kinds())
	})
}

func TestBlocks_WithoutHistory(t *testing.T) {
	in := Blocks{
		{Kind: BlockHistory, Body: "h"},
		{Kind: BlockSearchResults, Body: "s"},
		{Kind: BlockUserQuery, Body: "q"},
	}
	assert.Equal(t, []BlockKind{BlockSearchResults, BlockUserQuery}, in.WithoutHistory().Kinds())
	assert.Equal(t, "### Web Search Results:\ns\n\n### User Query:\nq\n", in.WithoutHistory().String())
}

func TestBlockKind_String(t *testing.T) {
	assert.Equal(t, "image-description", BlockImageDescription.String())
	assert.Equal(t, "BlockKind(42)", BlockKind(42).String())
}
