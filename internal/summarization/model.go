package summarization

import "context"

// Outcome is the explicit result of a remote model call. Exactly one of Text
// or Reason is meaningful, selected by OK.
type Outcome struct {
	OK     bool
	Text   string
	Reason string
}

// Success wraps generated text.
func Success(text string) Outcome {
	return Outcome{OK: true, Text: text}
}

// Failure records why the model produced nothing usable.
func Failure(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Model generates a summary for a prompt. Implementations report every
// failure (transport, status, response shape, timeout) as a failure Outcome.
type Model interface {
	// Name is the model identifier recorded as model_used on success.
	Name() string
	Generate(ctx context.Context, prompt string) Outcome
}

// NoModel always fails, so every summary takes the fallback path.
type NoModel struct{}

func (NoModel) Name() string { return ProviderNone }

func (NoModel) Generate(context.Context, string) Outcome {
	return Failure("model not configured")
}
