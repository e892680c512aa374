// Package notifications sends transactional customer emails through the
// Brevo HTTP API.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/swand-12/saloon-backend-admin/internal/models"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

var ErrMissingRecipient = errors.New("missing recipient email")

// APIError is returned when Brevo answers with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brevo send failed: status=%d body=%s", e.Status, e.Body)
}

type BrevoClient struct {
	apiKey     string
	sender     brevoContact
	sandbox    bool
	endpoint   string
	httpClient *http.Client
}

// NewBrevoClient returns nil when the API key or sender address is missing,
// which callers treat as "email disabled".
func NewBrevoClient(apiKey, senderEmail, senderName string, sandbox bool) *BrevoClient {
	apiKey = strings.TrimSpace(apiKey)
	senderEmail = strings.TrimSpace(senderEmail)
	if apiKey == "" || senderEmail == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	return &BrevoClient{
		apiKey:     apiKey,
		sender:     brevoContact{Email: senderEmail, Name: senderName},
		sandbox:    sandbox,
		endpoint:   defaultBrevoEndpoint,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// SendAppointmentAccepted tells the customer their request was accepted.
func (c *BrevoClient) SendAppointmentAccepted(ctx context.Context, appointment models.Appointment) (string, error) {
	if strings.TrimSpace(appointment.Email) == "" {
		return "", ErrMissingRecipient
	}
	body, err := buildAppointmentAcceptedHTML(appointment)
	if err != nil {
		return "", fmt.Errorf("render accepted email: %w", err)
	}
	return c.send(ctx, brevoMessage{
		Sender:      c.sender,
		To:          []brevoContact{{Email: appointment.Email, Name: appointment.Name}},
		Subject:     fmt.Sprintf("Your %s appointment is confirmed", appointment.Service),
		HtmlContent: body,
		Tags:        []string{"appointment-accepted"},
	})
}

func (c *BrevoClient) send(ctx context.Context, msg brevoMessage) (string, error) {
	if c.sandbox {
		msg.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if out.MessageID == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

type brevoMessage struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	Subject     string            `json:"subject"`
	HtmlContent string            `json:"htmlContent"`
	Tags        []string          `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
