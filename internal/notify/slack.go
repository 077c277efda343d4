package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

// Slack posts run summaries to an incoming webhook. The verdict counts go
// into attachment fields so the channel shows them aligned, and the
// attachment color tracks whether the run found dead channels.
type Slack struct {
	Webhook string
	Client  *http.Client
}

func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Fields []slackField `json:"fields"`
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

func (s *Slack) RunFinished(ctx context.Context, rec *domain.RunRecord) error {
	if s == nil || s.Webhook == "" {
		return fmt.Errorf("slack notifier is not configured")
	}

	title, _ := RunSummary(rec)
	body, err := json.Marshal(slackMessage{
		Text: "*" + title + "*",
		Attachments: []slackAttachment{{
			Color:  runColor(rec),
			Fields: runFields(rec),
		}},
	})
	if err != nil {
		return fmt.Errorf("encode slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack webhook returned %s", resp.Status)
	}
	return nil
}

func runColor(rec *domain.RunRecord) string {
	switch {
	case rec.Dead == 0:
		return "good"
	case rec.Alive == 0:
		return "danger"
	}
	return "warning"
}

func runFields(rec *domain.RunRecord) []slackField {
	return []slackField{
		{Title: "Source", Value: rec.Source},
		{Title: "Channels", Value: strconv.Itoa(rec.Total), Short: true},
		{Title: "Alive", Value: strconv.Itoa(rec.Alive), Short: true},
		{Title: "Unstable", Value: strconv.Itoa(rec.Unstable), Short: true},
		{Title: "Dead", Value: strconv.Itoa(rec.Dead), Short: true},
		{Title: "Duration", Value: rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second).String(), Short: true},
	}
}
