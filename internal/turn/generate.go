package turn

import (
	"context"

	"github.com/aiox-platform/travelbot/internal/llm"
)

const personaPrompt = "You're a friendly travel assistant! Please help with travel-related questions only. " +
	"If someone asks about something else, kindly respond with: " +
	"'Oops! I can only help with travel questions. Feel free to ask about your next trip!' " +
	"Keep your replies warm and brief."

const replyInstruction = "\nRespond to the user's input appropriately."

// Generator produces the assistant reply for an assembled context.
type Generator struct {
	model LanguageModel
}

func NewGenerator(model LanguageModel) *Generator {
	return &Generator{model: model}
}

// Generate makes one completion call. Provider failures abort the turn.
func (g *Generator) Generate(ctx context.Context, blocks Blocks) (string, error) {
	reply, err := g.model.Complete(ctx, llm.Request{
		System: personaPrompt,
		User:   blocks.String() + replyInstruction,
	})
	if err != nil {
		return "", newError(KindModelInvocation, "Language model request failed", err)
	}
	return reply, nil
}
