package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPI = "https://api.twilio.com"

// SMSSender delivers one SMS. Configured reports whether the transport has
// the credentials it needs; the dispatcher picks the first configured sender.
type SMSSender interface {
	Send(ctx context.Context, phoneNumber, message string) error
	Configured() bool
}

// TwilioSender is the primary SMS transport: the Twilio Messages API with
// basic-auth credentials. BaseURL overrides the endpoint in tests.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Client     *http.Client
}

func (s *TwilioSender) Configured() bool {
	return s.AccountSID != "" && s.AuthToken != "" && s.FromNumber != ""
}

func (s *TwilioSender) endpoint() string {
	base := s.BaseURL
	if base == "" {
		base = twilioAPI
	}
	return fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", strings.TrimRight(base, "/"), s.AccountSID)
}

func (s *TwilioSender) Send(ctx context.Context, phoneNumber, message string) error {
	form := url.Values{
		"To":   []string{phoneNumber},
		"From": []string{s.FromNumber},
		"Body": []string{message},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.AccountSID, s.AuthToken)

	if s.Client == nil {
		s.Client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twilio send failed: status %d", resp.StatusCode)
	}
	return nil
}

// GatewaySender is the fallback SMS transport: a webhook-style gateway taking
// a JSON body with bearer-token auth.
type GatewaySender struct {
	URL    string
	Token  string
	Client *http.Client
}

func (s *GatewaySender) Configured() bool {
	return s.URL != ""
}

func (s *GatewaySender) Send(ctx context.Context, phoneNumber, message string) error {
	payload, err := json.Marshal(map[string]string{"to": phoneNumber, "message": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	if s.Client == nil {
		s.Client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway send failed: status %d", resp.StatusCode)
	}
	return nil
}
