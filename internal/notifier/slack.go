package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/retry"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// messageGap spaces out consecutive webhook posts.
const messageGap = 500 * time.Millisecond

// SlackNotifier sends job alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	link       LinkFunc
	logger     *slog.Logger
	sleep      func(time.Duration)
}

// NewSlackNotifier returns a notifier that posts each job to Slack via
// webhook. link may be nil, in which case messages carry no button.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, link LinkFunc, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		link:       link,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Notify sends each job as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	failures := 0
	for i, j := range jobs {
		if i > 0 {
			s.sleep(messageGap)
		}
		if err := s.sendMessage(j); err != nil {
			s.logger.Error("slack notification failed", "company", j.CompanyName, "title", j.Title, "error", err)
			failures++
		}
	}

	if failures == len(jobs) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(jobs)-failures, "failed", failures)
	return nil
}

// sendMessage posts one job, retrying once when Slack rate limits.
func (s *SlackNotifier) sendMessage(j model.Job) error {
	body, err := json.Marshal(s.buildPayload(j))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	for attempt := 0; ; attempt++ {
		resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack: %w", err)
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			s.logger.Info("slack message sent", "company", j.CompanyName, "title", j.Title, "retried", attempt > 0)
			return nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt == 0:
			wait := retry.ParseRetryAfter(resp.Header.Get("Retry-After"))
			if wait <= 0 {
				wait = time.Second
			}
			s.logger.Warn("slack rate limited, retrying", "retry_after", wait)
			s.sleep(wait)
		default:
			return fmt.Errorf("slack returned %d", resp.StatusCode)
		}
	}
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a dummy job notification to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	testJob := model.Job{
		ID:          "test-001",
		CompanyName: "jobdesk",
		Title:       "Test Notification: Integration Verified",
		Location:    "Everywhere",
		JobType:     model.JobTypeFullTime,
		PostedAt:    &now,
	}
	return n.Notify([]model.Job{testJob})
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func (s *SlackNotifier) buildPayload(j model.Job) slackPayload {
	postedText := "Just detected"
	if j.PostedAt != nil {
		postedText = j.PostedAt.UTC().Format(time.RFC1123)
	}

	var kinds []string
	for _, k := range []string{j.JobType.Label(), j.ExperienceLevel.Label()} {
		if k != "" {
			kinds = append(kinds, k)
		}
	}
	kind := strings.Join(kinds, " · ")

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🚀 " + j.CompanyName + ": " + j.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Company:*\n" + orNA(j.CompanyName)},
				{Type: "mrkdwn", Text: "*Location:*\n" + orNA(j.Location)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Posted:*\n" + postedText},
				{Type: "mrkdwn", Text: "*Type:*\n" + orNA(kind)},
			},
		},
	}

	if salary := j.SalaryRange(); salary != "" || len(j.Skills) > 0 {
		var lines []string
		if salary != "" {
			lines = append(lines, "*Salary:* "+salary)
		}
		if len(j.Skills) > 0 {
			lines = append(lines, "*Skills:* "+strings.Join(j.Skills, ", "))
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: strings.Join(lines, "\n")},
		})
	}

	if s.link != nil {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Job"},
					URL:   s.link(j),
					Style: "primary",
				},
			},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}
