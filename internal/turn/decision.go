package turn

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/aiox-platform/travelbot/internal/llm"
	"github.com/aiox-platform/travelbot/internal/search"
)

// LanguageModel produces a single completion.
type LanguageModel interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// WebSearcher returns ranked results for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

const decisionSystemPrompt = "You are a smart travel assistant."

const decisionInstruction = `

Analyze the provided user query and given context carefully.
Your goal is to determine:
1. Whether performing a web search is needed.
2. If yes, generate a concise, effective search query suitable for a search engine like DuckDuckGo.

Output must be strictly a valid JSON object with exactly two keys:
- "search_required": a boolean (true or false).
- "search_query": a string (empty "" if search is not required).

Rules:
- Only say "search_required": true if the information clearly cannot be answered directly from the given context.
- "search_query" should be clean, short, and remove unnecessary words or filler.
- Never include extra text, explanation, or formatting outside the JSON.

Example Output:
{
  "search_required": true,
  "search_query": "best travel destinations in Europe in June"
}

or

{
  "search_required": false,
  "search_query": ""
}
`

var decisionSchema = &llm.Schema{
	Name: "search_decision",
	Definition: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"search_required": {Type: jsonschema.Boolean},
			"search_query":    {Type: jsonschema.String},
		},
		Required:             []string{"search_required", "search_query"},
		AdditionalProperties: false,
	},
}

var codeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Decision is the model's answer to whether the turn needs a web search.
type Decision struct {
	Required bool
	Query    string
}

// SearchOutcome reports what the decision step did.
type SearchOutcome struct {
	Decision    Decision
	Searched    bool
	ResultCount int
	Degraded    bool
}

var validate = validator.New()

// decisionPayload uses pointers so that absent keys fail validation.
type decisionPayload struct {
	SearchRequired *bool   `json:"search_required" validate:"required"`
	SearchQuery    *string `json:"search_query" validate:"required"`
}

// ParseDecision decodes a model reply, tolerating a markdown code fence.
func ParseDecision(content string) (Decision, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if m := codeFence.FindStringSubmatch(content); len(m) > 1 {
			content = m[1]
		}
	}

	var p decisionPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return Decision{}, newError(KindModelResponseMalformed, "Malformed search decision from language model", err)
	}
	if err := validate.Struct(p); err != nil {
		return Decision{}, newError(KindModelResponseMalformed, "Malformed search decision from language model", err)
	}
	return Decision{Required: *p.SearchRequired, Query: strings.TrimSpace(*p.SearchQuery)}, nil
}

// Decider asks the model whether to search and splices results into the context.
type Decider struct {
	model    LanguageModel
	searcher WebSearcher
}

func NewDecider(model LanguageModel, searcher WebSearcher) *Decider {
	return &Decider{model: model, searcher: searcher}
}

// Decide returns blocks, augmented with a search-results block when the model
// asked for a search and the provider returned results.
func (d *Decider) Decide(ctx context.Context, conversationID string, blocks Blocks) (Blocks, SearchOutcome, error) {
	var outcome SearchOutcome

	content, err := d.model.Complete(ctx, llm.Request{
		System: decisionSystemPrompt,
		User:   blocks.String() + decisionInstruction,
		Schema: decisionSchema,
	})
	if err != nil {
		return nil, outcome, newError(KindModelInvocation, "Language model request failed", err)
	}

	decision, err := ParseDecision(content)
	if err != nil {
		slog.Warn("parsing search decision",
			"conversation_id", conversationID,
			"content", content,
			"error", err)
		return nil, outcome, err
	}
	outcome.Decision = decision

	if !decision.Required || decision.Query == "" {
		return blocks, outcome, nil
	}
	if d.searcher == nil {
		outcome.Degraded = true
		return blocks, outcome, nil
	}

	outcome.Searched = true
	results, err := d.searcher.Search(ctx, decision.Query)
	if err != nil {
		slog.Error("web search failed",
			"conversation_id", conversationID,
			"query", decision.Query,
			"error", err)
		outcome.Degraded = true
		return blocks, outcome, nil
	}

	outcome.ResultCount = len(results)
	if len(results) == 0 {
		return blocks, outcome, nil
	}
	return blocks.WithSearchResults(renderSearchResults(results)), outcome, nil
}
