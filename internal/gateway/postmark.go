package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// PostmarkConfig configures the Postmark gateway client.
type PostmarkConfig struct {
	// ServiceURL is the base URL of the internal Postmark sending service.
	ServiceURL string
	// APIKey authenticates against the sending service.
	APIKey string
	// FromAddress is the default sender identity.
	FromAddress string
	// BCCAddress, when set, receives a blind copy of every message.
	BCCAddress string
	// Timeout bounds each send call. Zero means 30s.
	Timeout time.Duration
}

// Postmark sends email through the organization's Postmark sending service.
type Postmark struct {
	cfg    PostmarkConfig
	client *http.Client
}

// NewPostmark creates a Postmark gateway client.
func NewPostmark(cfg PostmarkConfig) *Postmark {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Postmark{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// postmarkPayload matches the sending service's /send JSON schema.
type postmarkPayload struct {
	From          string `json:"from"`
	To            string `json:"to"`
	BCC           string `json:"bcc,omitempty"`
	Subject       string `json:"subject"`
	HTMLBody      string `json:"htmlBody"`
	TextBody      string `json:"textBody"`
	Tag           string `json:"tag,omitempty"`
	MessageStream string `json:"messageStream,omitempty"`
	TrackOpens    bool   `json:"trackOpens"`
	TrackLinks    string `json:"trackLinks"`
}

// Send posts one message to the sending service. A non-2xx response is
// returned as a *DeliveryError carrying the status and response body.
func (p *Postmark) Send(ctx context.Context, email Email) error {
	if p.cfg.APIKey == "" {
		return fmt.Errorf("postmark API key is not configured")
	}

	from := email.FromAddress
	if from == "" {
		from = p.cfg.FromAddress
	}

	payload := postmarkPayload{
		From:          from,
		To:            email.To,
		BCC:           p.cfg.BCCAddress,
		Subject:       email.Subject,
		HTMLBody:      email.HTMLBody,
		TextBody:      email.TextBody,
		Tag:           email.Tag,
		MessageStream: email.MessageStream,
		TrackOpens:    false,
		TrackLinks:    "None",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal postmark payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ServiceURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build postmark request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("postmark request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &DeliveryError{StatusCode: resp.StatusCode, Body: string(respBody)}
}
