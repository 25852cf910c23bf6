package turn

import (
	"context"
	"log/slog"
	"time"

	"github.com/aiox-platform/travelbot/internal/events"
	"github.com/aiox-platform/travelbot/internal/history"
	"github.com/aiox-platform/travelbot/internal/metrics"
)

// Deliverer sends a reply to a chat on an external channel.
type Deliverer interface {
	Send(ctx context.Context, chatID, text string) error
}

// EventPublisher announces finished turns.
type EventPublisher interface {
	PublishTurnCompleted(ctx context.Context, event events.TurnCompleted) error
}

// Deps holds the collaborators of a Pipeline. Telegram and Events may be nil.
type Deps struct {
	Normalizer *Normalizer
	History    history.Repository
	Decider    *Decider
	Generator  *Generator
	Telegram   Deliverer
	Events     EventPublisher
}

// Pipeline runs one turn: normalize, load history, assemble, decide on
// search, generate, deliver and persist. Steps run in order on the caller's
// goroutine.
type Pipeline struct {
	normalizer *Normalizer
	records    history.Repository
	loader     *history.Loader
	decider    *Decider
	generator  *Generator
	telegram   Deliverer
	events     EventPublisher
	now        func() time.Time
}

func NewPipeline(d Deps) *Pipeline {
	return &Pipeline{
		normalizer: d.Normalizer,
		records:    d.History,
		loader:     history.NewLoader(d.History),
		decider:    d.Decider,
		generator:  d.Generator,
		telegram:   d.Telegram,
		events:     d.Events,
		now:        time.Now,
	}
}

// Run executes the turn and returns the assistant reply.
func (p *Pipeline) Run(ctx context.Context, req *Request) (string, error) {
	start := p.now()
	ev := events.TurnCompleted{
		ConversationID: req.ConversationID,
		Channel:        string(req.Channel),
		Modality:       ModalityName(req.Modality),
	}

	reply, err := p.run(ctx, req, &ev)

	ev.LatencyMS = p.now().Sub(start).Milliseconds()
	ev.CompletedAt = p.now().UTC()
	ev.Outcome = "ok"
	if err != nil {
		ev.Outcome = string(KindOf(err))
		if ev.Outcome == "" {
			ev.Outcome = "internal"
		}
	}
	metrics.TurnsTotal.WithLabelValues(ev.Channel, ev.Outcome).Inc()
	p.publish(ctx, ev)

	return reply, err
}

func (p *Pipeline) run(ctx context.Context, req *Request, ev *events.TurnCompleted) (string, error) {
	norm, err := p.normalizer.Normalize(ctx, req)
	if err != nil {
		return "", err
	}
	for _, k := range norm.Degraded {
		p.degraded(ev, k)
	}

	window := p.loader.Load(ctx, req.ConversationID)
	blocks := Assemble(window, norm)

	blocks, outcome, err := p.decider.Decide(ctx, req.ConversationID, blocks)
	if err != nil {
		return "", err
	}
	ev.SearchRequired = outcome.Decision.Required
	ev.Searched = outcome.Searched
	ev.SearchResults = outcome.ResultCount
	if outcome.Decision.Required {
		metrics.SearchDecisionsTotal.WithLabelValues("search").Inc()
	} else {
		metrics.SearchDecisionsTotal.WithLabelValues("no_search").Inc()
	}
	if outcome.Degraded {
		p.degraded(ev, KindSearchUnavailable)
	}

	reply, err := p.generator.Generate(ctx, blocks)
	if err != nil {
		return "", err
	}

	if req.Channel == ChannelTelegram {
		p.deliver(ctx, req, reply, ev)
	}

	rec := history.Record{
		User:      blocks.WithoutHistory().String(),
		Assistant: reply,
		CreatedAt: p.now(),
	}
	if err := p.records.Append(ctx, req.ConversationID, rec); err != nil {
		slog.Error("failed to save conversation history",
			"conversation_id", req.ConversationID,
			"error", err)
		p.degraded(ev, KindPersistenceFailed)
	}

	return reply, nil
}

func (p *Pipeline) deliver(ctx context.Context, req *Request, reply string, ev *events.TurnCompleted) {
	if p.telegram == nil {
		slog.Warn("telegram delivery not configured", "conversation_id", req.ConversationID)
		p.degraded(ev, KindDeliveryFailed)
		return
	}
	if err := p.telegram.Send(ctx, req.ConversationID, reply); err != nil {
		slog.Error("telegram delivery failed",
			"conversation_id", req.ConversationID,
			"error", err)
		p.degraded(ev, KindDeliveryFailed)
	}
}

func (p *Pipeline) degraded(ev *events.TurnCompleted, kind Kind) {
	ev.Degraded = append(ev.Degraded, string(kind))
	metrics.DegradedStepsTotal.WithLabelValues(string(kind)).Inc()
}

func (p *Pipeline) publish(ctx context.Context, ev events.TurnCompleted) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishTurnCompleted(ctx, ev); err != nil {
		slog.Warn("publishing turn event",
			"conversation_id", ev.ConversationID,
			"error", err)
	}
}
