package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/threadintel/backend/internal/utils"
)

// MockSummarizer is a deterministic stand-in for local development. The
// output depends only on the input text.
type MockSummarizer struct {
	ModelVersion string
}

func (m MockSummarizer) Summarize(_ context.Context, text string) (string, error) {
	words := strings.Fields(text)
	if len(words) > 40 {
		words = words[:40]
	}
	h := utils.HashStringToUint64(text)
	return fmt.Sprintf("%s... (condensed by %s, digest %x)",
		strings.Join(words, " "), m.version(), h%0xffff), nil
}

func (m MockSummarizer) version() string {
	if m.ModelVersion == "" {
		return "mock-v1"
	}
	return m.ModelVersion
}
