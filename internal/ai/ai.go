package ai

import "context"

// Summarizer produces an abstractive summary of flattened thread text.
// Implementations must respect ctx deadlines; the engine treats any error
// as "use the extractive summary instead".
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
