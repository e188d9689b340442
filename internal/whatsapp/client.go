// Package whatsapp wraps the UAZAPI gateway the restaurant's WhatsApp line
// runs on. Delivery failures are reported to callers but are never fatal to
// a booking: the caller decides whether to log and move on.
package whatsapp

import (
	"context"
	"fmt"
	"net/http"

	"mesero/pkg/client"
	"mesero/pkg/config"
	"mesero/pkg/logger"
)

// Sender is the outbound messaging surface the rest of the service uses.
type Sender interface {
	SendText(ctx context.Context, number string, text string) error
	SendMenu(ctx context.Context, number string, text string, choices []string, buttonText string, footerText string) error
}

type Client struct {
	http *client.HttpClient
	log  *logger.Logger
}

func NewClient(cfg *config.Config) *Client {
	httpClient := client.NewHttpClient(cfg.WhatsAppAPIURL, cfg.RequestTimeout).
		WithHeader("token", cfg.WhatsAppToken)

	return &Client{
		http: httpClient,
		log:  cfg.Log,
	}
}

type textPayload struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type menuPayload struct {
	Number     string   `json:"number"`
	Text       string   `json:"text"`
	Type       string   `json:"type"`
	Choices    []string `json:"choices"`
	ButtonText string   `json:"buttonText"`
	FooterText string   `json:"footerText"`
}

// SendText delivers a plain text message.
func (c *Client) SendText(ctx context.Context, number string, text string) error {
	resp, err := c.http.POST(ctx, "/send/text", textPayload{
		Number: number,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send text message: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway rejected text message: %s", client.GetErrorMessage(resp))
	}

	c.log.Debug("Text message sent", "number", number)
	return nil
}

// SendMenu delivers an interactive list message the customer can pick from.
func (c *Client) SendMenu(ctx context.Context, number string, text string, choices []string, buttonText string, footerText string) error {
	resp, err := c.http.POST(ctx, "/send/menu", menuPayload{
		Number:     number,
		Text:       text,
		Type:       "list",
		Choices:    choices,
		ButtonText: buttonText,
		FooterText: footerText,
	})
	if err != nil {
		return fmt.Errorf("failed to send menu message: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway rejected menu message: %s", client.GetErrorMessage(resp))
	}

	c.log.Debug("Menu message sent", "number", number, "choices", len(choices))
	return nil
}
