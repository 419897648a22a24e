package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"blog-edge/pkg/logger"
)

const resendEndpoint = "https://api.resend.com/emails"

// EmailTag is a Resend delivery tag
type EmailTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EmailMessage is one outbound email
type EmailMessage struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Tags    []EmailTag        `json:"tags,omitempty"`
}

// ResendClient sends transactional email through the Resend HTTP API
type ResendClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewResendClient creates a new Resend client
func NewResendClient(apiKey string, logger *logger.Logger) *ResendClient {
	return NewResendClientWithEndpoint(apiKey, resendEndpoint, logger)
}

// NewResendClientWithEndpoint creates a client against a non-default API
// endpoint, e.g. a local stub server
func NewResendClientWithEndpoint(apiKey, endpoint string, logger *logger.Logger) *ResendClient {
	return &ResendClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Send delivers one email and returns the Resend message ID
func (c *ResendClient) Send(ctx context.Context, msg EmailMessage) (string, error) {
	jsonBody, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Resend API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Resend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Resend API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse Resend response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"message_id": parsed.ID,
		"subject":    msg.Subject,
	}).Debug("Email sent")

	return parsed.ID, nil
}
