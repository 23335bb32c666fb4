package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stafflink/internal/platform/config"
)

// HTTPSMSSender posts messages to the SMS provider's webhook. No provider SDK
// is assumed; the provider URL and key come from configuration.
type HTTPSMSSender struct {
	client *http.Client
	cfg    config.SMSConfig
}

func NewHTTPSMSSender(cfg config.SMSConfig) *HTTPSMSSender {
	return &HTTPSMSSender{
		client: &http.Client{Timeout: 10 * time.Second},
		cfg:    cfg,
	}
}

func (s *HTTPSMSSender) SendSMS(ctx context.Context, sms SMS) error {
	payload, err := json.Marshal(map[string]string{
		"sender":  s.cfg.Sender,
		"to":      sms.To,
		"message": sms.Body,
	})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ProviderURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned %s", resp.Status)
	}
	return nil
}
