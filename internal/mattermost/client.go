// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// Client posts announcements to a Mattermost incoming webhook.
type Client struct {
	webhookURL string
	channel    string
	username   string
	enabled    bool
	http       *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		username:   cfg.Username,
		enabled:    cfg.Enabled,
		http:       &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
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
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage posts msg, filling in the configured channel and username.
func (c *Client) SendMessage(msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = c.username
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := c.http.Post(c.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Int("attachments", len(msg.Attachments)).
		Msg("Sent message to Mattermost")

	return nil
}

// SendText posts a plain markdown message.
func (c *Client) SendText(text string) error {
	return c.SendMessage(&Message{Text: text})
}

// MatchResult is a published match outcome announced to the channel.
type MatchResult struct {
	Tournament  string
	Number      int
	TeamA       string
	TeamB       string
	TossWinner  string
	MatchWinner string
	Summary     string
	Scored      int
}

// SendMatchResult announces a published match result.
func (c *Client) SendMatchResult(result MatchResult) error {
	if !c.enabled {
		return nil
	}

	title := fmt.Sprintf("%s vs %s", result.TeamA, result.TeamB)
	if result.Number > 0 {
		title = fmt.Sprintf("Match %d: %s", result.Number, title)
	}

	fields := []Field{
		{Short: true, Title: "Winner", Value: result.MatchWinner},
		{Short: true, Title: "Predictions scored", Value: fmt.Sprintf("%d", result.Scored)},
	}
	if result.TossWinner != "" {
		fields = append(fields, Field{Short: true, Title: "Toss", Value: result.TossWinner})
	}

	return c.SendMessage(&Message{
		Attachments: []Attachment{{
			Fallback: fmt.Sprintf("%s: %s", title, result.MatchWinner),
			Color:    "#2e7d32",
			Pretext:  fmt.Sprintf("🏏 **Result published** (%s)", result.Tournament),
			Title:    title,
			Text:     result.Summary,
			Fields:   fields,
		}},
	})
}

// SendTournamentWinner announces a tournament champion.
func (c *Client) SendTournamentWinner(tournament, winner string, correctPicks int) error {
	if !c.enabled {
		return nil
	}

	text := fmt.Sprintf("🏆 **%s** champions: **%s**\n\n%d correct champion pick(s) earned the bonus.",
		tournament, winner, correctPicks)
	return c.SendText(text)
}

// UpcomingMatch is a fixture listed in the daily digest.
type UpcomingMatch struct {
	Tournament string
	TeamA      string
	TeamB      string
	StartsAt   time.Time
	LocksAt    time.Time
	Picks      int
}

// SendDailyDigest lists the day's fixtures and when their predictions close.
// Times are rendered in loc.
func (c *Client) SendDailyDigest(matches []UpcomingMatch, loc *time.Location) error {
	if len(matches) == 0 {
		c.log.Debug().Msg("No upcoming matches, skipping daily digest")
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	text := fmt.Sprintf("### 🏏 Today's fixtures\n\n**%d** match(es) in the next 24 hours:\n\n", len(matches))
	for _, m := range matches {
		text += fmt.Sprintf("• **%s vs %s** (%s) starts %s, predictions close %s, %d pick(s) so far\n",
			m.TeamA, m.TeamB, m.Tournament,
			m.StartsAt.In(loc).Format("Mon 15:04 MST"),
			m.LocksAt.In(loc).Format("15:04"),
			m.Picks)
	}
	text += "\n_Get your picks in before the window closes!_"

	return c.SendText(text)
}
