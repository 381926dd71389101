package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, ev SubmissionEvent) error {
	if !ev.SlackEnabled || s.webhookURL == "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"text": slackText(ev)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack webhook: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func slackText(ev SubmissionEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*New response to %s* from %s (%s)\n", ev.FormTitle, ev.respondent(), ev.Status)
	for _, a := range ev.Answers {
		fmt.Fprintf(&b, "• %s: %s\n", a.Question, a.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}
