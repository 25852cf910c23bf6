package turn

import (
	"context"
	"errors"
	"sync"

	"github.com/aiox-platform/travelbot/internal/events"
	"github.com/aiox-platform/travelbot/internal/llm"
	"github.com/aiox-platform/travelbot/internal/search"
)

var errProvider = errors.New("provider unavailable")

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type fakeTranscoder struct {
	err   error
	calls int
}

func (f *fakeTranscoder) ToWAV(_ context.Context, ogg []byte) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("RIFF"), ogg...), nil
}

type fakeSpeech struct {
	configured bool
	text       string
	err        error
	got        []byte
}

func (f *fakeSpeech) Configured() bool { return f.configured }

func (f *fakeSpeech) Recognize(_ context.Context, wav []byte) (string, error) {
	f.got = wav
	return f.text, f.err
}

type fakeVision struct {
	configured bool
	desc       string
	err        error
}

func (f *fakeVision) Configured() bool { return f.configured }

func (f *fakeVision) Describe(_ context.Context, _ []byte) (string, error) {
	return f.desc, f.err
}

// scriptedModel answers the decision call first and the generation call second.
type scriptedModel struct {
	mu        sync.Mutex
	decision  string
	reply     string
	decideErr error
	replyErr  error
	requests  []llm.Request
}

func (m *scriptedModel) Complete(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if req.Schema != nil {
		return m.decision, m.decideErr
	}
	return m.reply, m.replyErr
}

type fakeSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeDeliverer struct {
	chatID string
	text   string
	err    error
	calls  int
}

func (f *fakeDeliverer) Send(_ context.Context, chatID, text string) error {
	f.calls++
	f.chatID = chatID
	f.text = text
	return f.err
}

type fakePublisher struct {
	events []events.TurnCompleted
	err    error
}

func (f *fakePublisher) PublishTurnCompleted(_ context.Context, ev events.TurnCompleted) error {
	f.events = append(f.events, ev)
	return f.err
}
