package groq

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

// Client wraps the Groq API client
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config for Groq client
type Config struct {
	APIKey     string
	ModelName  string // Default: "llama-3.3-70b-versatile"
	MaxRetries int
	RetryDelay time.Duration
}

// groqRequest represents the request to Groq API
type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float32       `json:"temperature,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// groqResponse represents the response from Groq API
type groqResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
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
}

// NewClient creates a new Groq client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "llama-3.3-70b-versatile" // Fast and accurate
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	logger.Info("Groq client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    "https://api.groq.com/openai/v1",
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Close closes the Groq client
func (c *Client) Close() error {
	return nil
}

// GenerateSQL translates one question into a single SELECT statement
// using the shared prompt so every provider answers the same contract.
func (c *Client) GenerateSQL(ctx context.Context, question string, sch *schema.Schema, referenceYear int) (string, error) {
	prompt := gemini.BuildSQLPrompt(question, sch, referenceYear)

	content, err := c.chat(ctx, gemini.SystemInstruction, prompt, 0.1)
	if err != nil {
		return "", err
	}

	sql := gemini.CleanSQL(content)
	if sql == "" {
		return "", fmt.Errorf("groq returned no SQL")
	}

	c.logger.Debug("Generated SQL with Groq",
		zap.String("question", question),
		zap.String("sql", sql))

	return sql, nil
}

// GenerateAnalysis produces a free-text report for a prepared prompt.
func (c *Client) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	content, err := c.chat(ctx, "", prompt, 0.7)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return "", fmt.Errorf("groq returned empty analysis")
	}

	return text, nil
}

func (c *Client) chat(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Groq request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		var messages []groqMessage
		if system != "" {
			messages = append(messages, groqMessage{Role: "system", Content: system})
		}
		messages = append(messages, groqMessage{Role: "user", Content: prompt})

		reqBody := groqRequest{
			Model:       c.modelName,
			Messages:    messages,
			Stream:      false,
			Temperature: temperature,
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			lastErr = fmt.Errorf("failed to marshal request: %w", err)
			continue
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("groq API error: %w", err)
			c.logger.Error("Groq API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, string(body))
			c.logger.Error("Groq API error",
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
				zap.Int("attempt", attempt+1))
			continue
		}

		var groqResp groqResponse
		if err := json.Unmarshal(body, &groqResp); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			c.logger.Error("Failed to parse JSON response",
				zap.Error(err),
				zap.String("body", string(body)),
				zap.Int("attempt", attempt+1))
			continue
		}

		if len(groqResp.Choices) == 0 {
			lastErr = fmt.Errorf("empty response from groq")
			c.logger.Error("Empty response from Groq", zap.Int("attempt", attempt+1))
			continue
		}

		return groqResp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    "groq",
		"model":       c.modelName,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
