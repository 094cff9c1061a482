package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Slack posts alerts to an incoming-webhook URL.
type Slack struct {
	webhook string
	client  *http.Client
}

func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		webhook: webhook,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Slack) Name() string { return "slack" }

type slackAttachment struct {
	Color string `json:"color"`
	Title string `json:"title"`
	Text  string `json:"text"`
	TS    int64  `json:"ts"`
}

type slackPayload struct {
	Attachments []slackAttachment `json:"attachments"`
}

func (s *Slack) Send(ctx context.Context, subject, body string) error {
	color := "good"
	if strings.HasPrefix(subject, "🚨") {
		color = "danger"
	}
	payload, err := json.Marshal(slackPayload{
		Attachments: []slackAttachment{{
			Color: color,
			Title: subject,
			Text:  body,
			TS:    time.Now().Unix(),
		}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhook, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}

var _ Notifier = (*Slack)(nil)
