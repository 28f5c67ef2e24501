package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Notifier posts analysis outcomes to Discord webhooks. A Notifier with
// empty webhook URLs silently drops messages, so callers do not need to
// guard every send.
type Notifier struct {
	errorWebhook   string
	successWebhook string
	client         *http.Client
}

func NewNotifier(errorWebhook, successWebhook string) *Notifier {
	return &Notifier{
		errorWebhook:   errorWebhook,
		successWebhook: successWebhook,
		client:         http.DefaultClient,
	}
}

func (n *Notifier) SendError(errorMessage string) error {
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 Analysis Failed",
				Description: fmt.Sprintf("An error occurred: %s", errorMessage),
				Color:       16711680, // Red color
			},
		},
	}
	return n.send(n.errorWebhook, message)
}

func (n *Notifier) SendSuccess(successMessage string) error {
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ Analysis Complete",
				Description: successMessage,
				Color:       65280, // Green color
			},
		},
	}
	return n.send(n.successWebhook, message)
}

func (n *Notifier) send(webhook string, message DiscordMessage) error {
	if webhook == "" {
		return nil
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	resp, err := n.client.Post(webhook, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}

	return nil
}
