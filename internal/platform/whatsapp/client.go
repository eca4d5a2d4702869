// Package whatsapp sends templated WhatsApp messages through the ADA
// messaging API and holds the static template registry.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// SendResult is the outcome of a single template send. Delivery failures are
// reported here, never as a Go error: the provider call is best-effort and
// callers must not assume the message arrived.
type SendResult struct {
	Delivered  bool            `json:"delivered"`
	StatusCode int             `json:"status_code"`
	Raw        json.RawMessage `json:"raw,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Gateway is the messaging surface consumed by the domain services.
type Gateway interface {
	SendTemplate(ctx context.Context, templateName, to string, params []string) *SendResult
	SendGreeting(ctx context.Context, templateName, to, name string) *SendResult
	SendPlanUpdate(ctx context.Context, templateName, to, name, plan string) *SendResult
}

// templatePayload is the ADA API request body. templateData is an ordered
// list of parameter substitutions; the order must match the template's
// placeholders exactly.
type templatePayload struct {
	Platform       string   `json:"platform"`
	From           string   `json:"from"`
	To             string   `json:"to"`
	Type           string   `json:"type"`
	TemplateName   string   `json:"templateName"`
	TemplateLang   string   `json:"templateLang"`
	TemplateData   []string `json:"templateData"`
	TemplateButton []string `json:"templateButton"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client used for sends.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// Client calls the ADA messaging API with bearer-token authorization.
type Client struct {
	apiURL     string
	apiKey     string
	sender     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client for the given API endpoint, key, and sender
// identifier.
func NewClient(apiURL, apiKey, sender string, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		sender: sender,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SendTemplate performs one synchronous POST to the provider. A non-200
// response is logged with status and body and surfaces as Delivered=false.
// There is no retry.
func (c *Client) SendTemplate(ctx context.Context, templateName, to string, params []string) *SendResult {
	if params == nil {
		params = []string{}
	}
	payload := templatePayload{
		Platform:       "WA",
		From:           c.sender,
		To:             to,
		Type:           "template",
		TemplateName:   templateName,
		TemplateLang:   "en",
		TemplateData:   params,
		TemplateButton: []string{},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &SendResult{Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return &SendResult{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).
			Str("template", templateName).
			Str("to", to).
			Msg("whatsapp send failed")
		return &SendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	result := &SendResult{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusOK {
		result.Delivered = true
		result.Raw = json.RawMessage(respBody)
		c.logger.Info().
			Str("template", templateName).
			Str("to", to).
			Msg("whatsapp template sent")
		return result
	}

	result.Error = fmt.Sprintf("non-200 response: %d", resp.StatusCode)
	c.logger.Error().
		Int("status", resp.StatusCode).
		Str("template", templateName).
		Str("to", to).
		Str("body", string(respBody)).
		Msg("whatsapp send rejected")
	return result
}

// SendGreeting sends a one-parameter greeting template. The single
// placeholder is the recipient's name.
func (c *Client) SendGreeting(ctx context.Context, templateName, to, name string) *SendResult {
	return c.SendTemplate(ctx, templateName, to, []string{name})
}

// SendPlanUpdate sends a two-parameter plan template: name first, then the
// day's plan text. The order is the provider contract.
func (c *Client) SendPlanUpdate(ctx context.Context, templateName, to, name, plan string) *SendResult {
	return c.SendTemplate(ctx, templateName, to, []string{name, plan})
}
