package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/designmark/internal/copyfit"
)

// Providers understood by Client.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var defaultEndpoints = map[string]string{
	ProviderAnthropic: "https://api.anthropic.com/v1/messages",
	ProviderOpenAI:    "https://api.openai.com/v1/chat/completions",
}

// Completer phrases copy for a layer. Implementations must honor ctx.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config is the explicit collaborator configuration. Nothing falls back to
// ambient credentials.
type Config struct {
	Provider string
	Endpoint string // defaults to the provider's public endpoint
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client calls a hosted text-completion API: the Anthropic Messages API or
// any OpenAI-compatible chat completions endpoint.
type Client struct {
	provider   string
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client

	Stats *LLMStats
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderAnthropic
	}
	endpoint, ok := defaultEndpoints[provider]
	if !ok {
		return nil, fmt.Errorf("unknown text provider %q", cfg.Provider)
	}
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("text provider %s: model is required", provider)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		provider: provider,
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewLLMStats(time.Hour),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Provider returns the configured provider.
func (c *Client) Provider() string { return c.provider }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete asks the provider for copy for one layer and returns the raw
// reply with any code fence removed. An empty reply is an error.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := c.complete(ctx, req)
	if err != nil {
		c.Stats.RecordFailure()
		return "", err
	}
	c.Stats.Record(time.Since(start).Milliseconds())
	return text, nil
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	prompt := BuildPrompt(req)
	maxTokens := copyfit.TokensForWords(req.MaxWords)

	var payload any
	switch c.provider {
	case ProviderOpenAI:
		payload = openAIRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: SystemPrompt},
				{Role: "user", Content: prompt},
			},
			MaxTokens: maxTokens,
		}
	default:
		payload = anthropicRequest{
			Model:     c.model,
			MaxTokens: maxTokens,
			System:    SystemPrompt,
			Messages:  []chatMessage{{Role: "user", Content: prompt}},
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.provider == ProviderOpenAI {
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
	} else {
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", "2023-06-01")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s api: %w", c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s api status %d: %s", c.provider, resp.StatusCode, truncate(string(respBody), 200))
	}

	var text string
	if c.provider == ProviderOpenAI {
		var apiResp openAIResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if apiResp.Error != nil {
			return "", fmt.Errorf("%s error: %s: %s", c.provider, apiResp.Error.Type, apiResp.Error.Message)
		}
		if len(apiResp.Choices) > 0 {
			text = apiResp.Choices[0].Message.Content
		}
	} else {
		var apiResp anthropicResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if apiResp.Error != nil {
			return "", fmt.Errorf("%s error: %s: %s", c.provider, apiResp.Error.Type, apiResp.Error.Message)
		}
		if len(apiResp.Content) > 0 {
			text = apiResp.Content[0].Text
		}
	}

	text = stripCodeBlock(text)
	if text == "" {
		return "", fmt.Errorf("empty response from %s", c.provider)
	}
	return text, nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:[a-z]+)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
