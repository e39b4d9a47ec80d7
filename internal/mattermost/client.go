// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aimd54/fan-ledger/internal/config"
	"github.com/aimd54/fan-ledger/internal/ledger"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

const botUsername = "Fan Ledger"

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Pretext  string  `json:"pretext,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = botUsername
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// Notify delivers a ledger notification for a fan.
func (c *Client) Notify(ctx context.Context, fanID uint, fanName string, n ledger.Notification) error {
	return c.SendMessage(ctx, &Message{
		Attachments: []Attachment{{
			Fallback: fmt.Sprintf("%s: %s", n.Title, n.Description),
			Color:    severityColor(n.Severity),
			Title:    n.Title,
			Text:     n.Description,
			Fields: []Field{
				{Short: true, Title: "Fan", Value: fanName},
				{Short: true, Title: "Fan ID", Value: fmt.Sprintf("%d", fanID)},
			},
		}},
	})
}

// Standing is one line of a leaderboard summary.
type Standing struct {
	Rank        int
	Name        string
	Tier        string
	TotalPoints int
}

// SendLeaderboardSummary posts the current top fans.
func (c *Client) SendLeaderboardSummary(ctx context.Context, standings []Standing) error {
	if len(standings) == 0 {
		c.log.Debug().Msg("No fans ranked, skipping leaderboard summary")
		return nil
	}

	text := fmt.Sprintf("### Fan leaderboard\n\nTop **%d** fans by points:\n\n", len(standings))
	text += "| # | Fan | Tier | Points |\n|---|---|---|---|\n"
	for _, s := range standings {
		text += fmt.Sprintf("| %d | %s | %s | %d |\n", s.Rank, s.Name, s.Tier, s.TotalPoints)
	}

	return c.SendMessage(ctx, &Message{Text: text})
}

func severityColor(s ledger.Severity) string {
	switch s {
	case ledger.SeveritySuccess:
		return "#2eb886"
	case ledger.SeverityWarning:
		return "#daa038"
	case ledger.SeverityDestructive:
		return "#a30200"
	default:
		return "#439fe0"
	}
}
