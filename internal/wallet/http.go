package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/arcade-go/internal/model"
)

// ServiceSecretHeader authenticates this service to the wallet
const ServiceSecretHeader = "X-Service-Secret"

// creditPath is appended to the wallet base URL
const creditPath = "/user/coins/add"

// HTTPConfig configures the HTTP wallet client
type HTTPConfig struct {
	BaseURL       string
	ServiceSecret string
	Timeout       time.Duration
}

// DefaultHTTPConfig returns sensible defaults for the wallet client
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout: 5 * time.Second,
	}
}

type creditRequest struct {
	UserID      string `json:"userId"`
	Amount      int    `json:"amount"`
	Source      string `json:"source"`
	GameID      string `json:"gameId"`
	GameScore   int    `json:"gameScore"`
	Description string `json:"description"`
}

// HTTPCrediter posts credits to the social service's wallet endpoint
type HTTPCrediter struct {
	url        string
	secret     string
	httpClient *http.Client
}

// Ensure HTTPCrediter implements Crediter
var _ Crediter = (*HTTPCrediter)(nil)

// NewHTTPCrediter creates a new HTTPCrediter
func NewHTTPCrediter(cfg HTTPConfig) *HTTPCrediter {
	return &HTTPCrediter{
		url:    strings.TrimSuffix(cfg.BaseURL, "/") + creditPath,
		secret: cfg.ServiceSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Credit sends one credit. Any transport failure or non-2xx status is
// reported as model.ErrWalletUnavailable.
func (c *HTTPCrediter) Credit(ctx context.Context, credit Credit) error {
	data, err := json.Marshal(creditRequest{
		UserID:      string(credit.UserID),
		Amount:      credit.Amount,
		Source:      credit.Source,
		GameID:      string(credit.GameID),
		GameScore:   credit.GameScore,
		Description: credit.Description,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ServiceSecretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrWalletUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: HTTP %d: %s", model.ErrWalletUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
