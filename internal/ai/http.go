package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPSummarizer calls an external summarization service. The client
// timeout is clamped to the remaining context deadline.
type HTTPSummarizer struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func (s HTTPSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(s.BaseURL) == "" {
		return "", errors.New("summarizer base url is not set")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	b, _ := json.Marshal(summarizeRequest{Text: text})
	url := strings.TrimRight(s.BaseURL, "/") + "/summarize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errors.New("summarizer request timed out")
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", errors.New("summarizer request timed out")
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.New("summarizer service error: " + resp.Status)
	}

	var r summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	if strings.TrimSpace(r.Summary) == "" {
		return "", errors.New("empty summarizer response")
	}
	return r.Summary, nil
}
