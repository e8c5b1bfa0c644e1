package escalate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// requestTimeout bounds each webhook post
const requestTimeout = 10 * time.Second

// Terminal writes escalations to a writer, usually stderr
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal creates a terminal escalator writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Escalate writes the escalation as an indented block
func (t *Terminal) Escalate(ctx context.Context, e Escalation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := "ℹ️  "
	switch e.Severity {
	case SeverityCritical:
		prefix = "🚨 "
	case SeverityWarning:
		prefix = "⚠️  "
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.w, "\n%s[%s] %s\n", prefix, e.Severity, e.Title)
	if e.Subject != "" {
		fmt.Fprintf(t.w, "   Subject: %s\n", e.Subject)
	}
	fmt.Fprintf(t.w, "   %s\n", e.Message)
	for _, k := range e.SortedContext() {
		fmt.Fprintf(t.w, "   %s: %s\n", k, e.Context[k])
	}
	return nil
}

// Name returns "terminal"
func (t *Terminal) Name() string {
	return "terminal"
}

// WebhookPayload is the JSON body posted to generic webhooks
type WebhookPayload struct {
	Severity string            `json:"severity"`
	Subject  string            `json:"subject"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
}

// Webhook posts escalations as JSON
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook escalator. A nil client gets a default one.
func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Webhook{url: url, client: client}
}

// Escalate posts the escalation to the webhook URL
func (w *Webhook) Escalate(ctx context.Context, e Escalation) error {
	return postJSON(ctx, w.client, w.url, "webhook", WebhookPayload{
		Severity: string(e.Severity),
		Subject:  e.Subject,
		Title:    e.Title,
		Message:  e.Message,
		Context:  e.Context,
	})
}

// Name returns "webhook"
func (w *Webhook) Name() string {
	return "webhook"
}

// Slack posts escalations to a Slack incoming webhook
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack escalator. A nil client gets a default one.
func NewSlack(webhookURL string, client *http.Client) *Slack {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Slack{webhookURL: webhookURL, client: client}
}

var slackEmoji = map[Severity]string{
	SeverityInfo:     ":information_source:",
	SeverityWarning:  ":warning:",
	SeverityCritical: ":rotating_light:",
}

// Escalate posts a section block with the message and a context block
// with the batch details
func (s *Slack) Escalate(ctx context.Context, e Escalation) error {
	blocks := []map[string]any{{
		"type": "section",
		"text": map[string]string{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s*\n%s", e.Title, e.Message),
		},
	}}

	var fields []map[string]any
	for _, k := range e.SortedContext() {
		fields = append(fields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s:* %s", k, e.Context[k]),
		})
	}
	if len(fields) > 0 {
		blocks = append(blocks, map[string]any{"type": "context", "elements": fields})
	}

	return postJSON(ctx, s.client, s.webhookURL, "slack webhook", map[string]any{
		"text":   fmt.Sprintf("%s *[%s]* %s", slackEmoji[e.Severity], e.Subject, e.Title),
		"blocks": blocks,
	})
}

// Name returns "slack"
func (s *Slack) Name() string {
	return "slack"
}

func postJSON(ctx context.Context, client *http.Client, url, label string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", label, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", label, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned %d", label, resp.StatusCode)
	}
	return nil
}
