package llm

import "context"

// ChatModel answers a single system plus user exchange.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// JSONModel is implemented by providers that can constrain the reply to a
// single JSON object.
type JSONModel interface {
	ChatModel
	AskJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AskJSON uses the JSON mode of m when it has one and falls back to Ask.
func AskJSON(ctx context.Context, m ChatModel, systemPrompt, userPrompt string) (string, error) {
	if jm, ok := m.(JSONModel); ok {
		return jm.AskJSON(ctx, systemPrompt, userPrompt)
	}
	return m.Ask(ctx, systemPrompt, userPrompt)
}
