package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/earthtrend/earthtrend-research-cli/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// SendDiscordErrorNotification posts a run failure to the error webhook.
// Without a configured webhook URL it is a no-op.
func SendDiscordErrorNotification(errorMessage string) error {
	url := properties.DiscordErrorNotificationUrl()
	if url == "" {
		return nil
	}
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 Run Failed",
				Description: errorMessage,
				Color:       16711680, // Red color
			},
		},
	}
	return send(url, message)
}

// SendDiscordSuccessNotification posts the artifact locations of a finished
// run to the success webhook. Without a configured webhook URL it is a no-op.
func SendDiscordSuccessNotification(successMessage string) error {
	url := properties.DiscordSuccessNotificationUrl()
	if url == "" {
		return nil
	}
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ Run Finished",
				Description: successMessage,
				Color:       65280, // Green color
			},
		},
	}
	return send(url, message)
}

func send(url string, message DiscordMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
