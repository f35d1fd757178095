package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/internal/config"
)

const defaultMailerBaseURL = "https://api.sendgrid.com"

// httpMailer sends verification mail through a SendGrid-style HTTP API.
type httpMailer struct {
	apiKey    string
	baseURL   string
	fromEmail string
	fromName  string
	client    *http.Client
}

func NewHTTPMailer(cfg config.Config) (service.Mailer, error) {
	if cfg.Mailer.APIKey == "" {
		return nil, fmt.Errorf("mailer api_key has not config")
	}
	baseURL := strings.TrimRight(cfg.Mailer.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultMailerBaseURL
	}
	return &httpMailer{
		apiKey:    cfg.Mailer.APIKey,
		baseURL:   baseURL,
		fromEmail: cfg.Mailer.FromEmail,
		fromName:  cfg.Mailer.FromName,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendMailRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

func (m *httpMailer) SendVerificationMail(ctx context.Context, toEmail, verifyURL string) error {
	payload := sendMailRequest{
		Personalizations: []mailPersonalization{
			{To: []mailAddress{{Email: toEmail}}},
		},
		From:    mailAddress{Email: m.fromEmail, Name: m.fromName},
		Subject: "Verify your RoomNet account",
		Content: []mailContent{
			{
				Type: "text/plain",
				Value: fmt.Sprintf(
					"Welcome to RoomNet!\n\nPlease verify your email by opening this link:\n%s\n\nThe link expires in 24 hours. If it has expired, request a new one from the app.",
					verifyURL,
				),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailer returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
