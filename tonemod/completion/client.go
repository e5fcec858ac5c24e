// Client for the external generative completion service. The service speaks
// the common chat-completion wire shape: role-tagged messages in, one text
// completion out.
//
// Every failure mode (network error, non-2xx status, malformed or empty
// body, timeout) is reported as ErrUnavailable. Callers treat that as "go
// take the local fallback path", never as a batch-fatal error.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/loofah-social/loofah/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

var ErrUnavailable = errors.New("completion service unavailable")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type Client struct {
	Client *http.Client
	Host   string
	APIKey string
	Model  string
	// per-call deadline; beyond it the service counts as unavailable
	Timeout time.Duration
	// optional cap on request rate to the upstream service
	Limiter *rate.Limiter

	logger *slog.Logger
}

func NewClient(host, apiKey, model string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Client:  util.RobustHTTPClient(),
		Host:    host,
		APIKey:  apiKey,
		Model:   model,
		Timeout: 15 * time.Second,
		logger:  logger.With("system", "completion"),
	}
}

// Complete sends one chat-completion request and returns the trimmed text of
// the first choice. Any failure returns an error wrapping ErrUnavailable.
func (c *Client) Complete(ctx context.Context, msgs []Message, temperature float64, maxTokens int) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
		}
	}

	body, err := json.Marshal(&chatRequest{
		Model:       c.Model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: serializing request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", strings.TrimSuffix(c.Host, "/")+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "loofah/"+versioninfo.Short())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	start := time.Now()
	defer func() {
		completionAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		completionAPICount.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	completionAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		c.logger.Warn("completion request failed", "status", res.StatusCode)
		return "", fmt.Errorf("%w: statusCode=%d", ErrUnavailable, res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	var respObj chatResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrUnavailable, err)
	}
	if respObj.Error != nil {
		c.logger.Warn("completion service error", "type", respObj.Error.Type, "msg", respObj.Error.Message)
		return "", fmt.Errorf("%w: %s", ErrUnavailable, respObj.Error.Message)
	}
	if len(respObj.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrUnavailable)
	}
	out := strings.TrimSpace(respObj.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return out, nil
}
