package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tarim-kds/internal/gemini"
	"tarim-kds/internal/schema"
)

// Client represents an OpenRouter API client.
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config holds configuration for OpenRouter client.
type Config struct {
	APIKey     string
	ModelName  string // e.g., "meta-llama/llama-3.2-3b-instruct:free"
	MaxRetries int
	RetryDelay time.Duration
}

// openRouterRequest represents the request structure for OpenRouter API.
type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openRouterResponse represents the response structure from OpenRouter API.
type openRouterResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewClient creates a new OpenRouter client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "meta-llama/llama-3.2-3b-instruct:free" // Free model
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    "https://openrouter.ai/api/v1",
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}

	logger.Info("OpenRouter client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return client, nil
}

// GenerateSQL translates one question into a single SELECT statement.
func (c *Client) GenerateSQL(ctx context.Context, question string, sch *schema.Schema, referenceYear int) (string, error) {
	prompt := gemini.BuildSQLPrompt(question, sch, referenceYear)

	content, err := c.chat(ctx, gemini.SystemInstruction, prompt, 0.1, 300)
	if err != nil {
		return "", err
	}

	sql := gemini.CleanSQL(content)
	if sql == "" {
		return "", fmt.Errorf("openrouter returned no SQL")
	}

	c.logger.Debug("Generated SQL with OpenRouter",
		zap.String("question", question),
		zap.String("sql", sql))

	return sql, nil
}

// GenerateAnalysis produces a free-text report for a prepared prompt.
func (c *Client) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	content, err := c.chat(ctx, "", prompt, 0.7, 1500)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return "", fmt.Errorf("openrouter returned empty analysis")
	}

	return text, nil
}

func (c *Client) chat(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		content, err := c.chatOnce(ctx, system, prompt, temperature, maxTokens, attempt)
		if err == nil {
			return content, nil
		}

		lastErr = err
		c.logger.Warn("OpenRouter API attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(err))

		// Don't retry if context is cancelled
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		// Wait before retry (except on last attempt)
		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) chatOnce(ctx context.Context, system, prompt string, temperature float64, maxTokens, attempt int) (string, error) {
	var messages []openRouterMessage
	if system != "" {
		messages = append(messages, openRouterMessage{Role: "system", Content: system})
	}
	messages = append(messages, openRouterMessage{Role: "user", Content: prompt})

	reqBody := openRouterRequest{
		Model:       c.modelName,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://github.com/tarim-kds")
	req.Header.Set("X-Title", "Tarim Karar Destek Sistemi")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("OpenRouter API error", zap.Error(err), zap.Int("attempt", attempt))
		return "", fmt.Errorf("openrouter API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// Check for HTTP errors
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OpenRouter API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
			zap.Int("attempt", attempt))
		return "", fmt.Errorf("openrouter API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp openRouterResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// Check for API error in response
	if apiResp.Error != nil {
		return "", fmt.Errorf("openrouter API error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openrouter response")
	}

	return apiResp.Choices[0].Message.Content, nil
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// GetModelInfo returns information about the model being used.
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": "openrouter",
		"model":    c.modelName,
		"base_url": c.baseURL,
	}
}
