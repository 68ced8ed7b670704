// Package reward talks to the upstream yield oracle. Every successful
// mining action is submitted as work; the oracle answers with the CGT
// yield to credit. The oracle being down must never stall play, so any
// failure falls back to a locally computed yield.
package reward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"cgtminer/internal/config"
)

// Submitter converts raw mining power into a CGT yield.
type Submitter interface {
	SubmitWork(ctx context.Context, power float64) (float64, error)
}

type workRequest struct {
	Power float64 `json:"power"`
}

type workResponse struct {
	Yield float64 `json:"yield"`
}

// Client posts work to the oracle over HTTP. When no base URL is
// configured, or the oracle misbehaves in any way, it degrades to the
// local fallback instead of surfacing an error.
type Client struct {
	cfg  config.RewardConfig
	http *http.Client
	log  *log.Logger
}

func NewClient(cfg config.RewardConfig, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout()},
		log:  logger,
	}
}

func (c *Client) fallback(power float64) float64 {
	return power * c.cfg.FallbackFactor
}

// SubmitWork asks the oracle for the yield of one unit of work. The
// error return is always nil: failures are logged and answered with
// the fallback yield so a dead oracle cannot block mining.
func (c *Client) SubmitWork(ctx context.Context, power float64) (float64, error) {
	if c.cfg.BaseURL == "" {
		return c.fallback(power), nil
	}

	yield, err := c.submit(ctx, power)
	if err != nil {
		c.log.Printf("reward oracle unavailable, using local yield: %v", err)
		return c.fallback(power), nil
	}
	return yield, nil
}

func (c *Client) submit(ctx context.Context, power float64) (float64, error) {
	body, err := json.Marshal(workRequest{Power: power})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/submit-work", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("submit work: unexpected status %d", resp.StatusCode)
	}

	var out workResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("submit work: decode response: %w", err)
	}
	if out.Yield < 0 {
		return 0, fmt.Errorf("submit work: negative yield %f", out.Yield)
	}
	return out.Yield, nil
}

// LocalSubmitter answers every submission with the fallback formula and
// never touches the network. It backs offline mode and tests.
type LocalSubmitter struct {
	Factor float64
}

func (l LocalSubmitter) SubmitWork(ctx context.Context, power float64) (float64, error) {
	return power * l.Factor, nil
}
