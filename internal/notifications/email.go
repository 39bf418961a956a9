package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// EmailSender delivers one plain-text email. Nil disables the channel.
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	TextContent string      `json:"textContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoClient sends certificate notification emails via the Brevo
// transactional API. BaseURL overrides the endpoint in tests.
type BrevoClient struct {
	APIKey     string
	MailFrom   string
	SenderName string
	BaseURL    string
	Client     *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "no-reply@example.com"
}

func (c *BrevoClient) endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return brevoAPI
}

func (c *BrevoClient) Send(ctx context.Context, toEmail, subject, body string) error {
	if c.APIKey == "" {
		return fmt.Errorf("brevo: api key is not configured")
	}
	payload := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: c.SenderName},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		TextContent: body,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}
