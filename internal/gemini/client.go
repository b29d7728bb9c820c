package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"tarim-kds/internal/schema"
)

// Client wraps the Gemini API client
type Client struct {
	client     *genai.Client
	sqlModel   *genai.GenerativeModel
	textModel  *genai.GenerativeModel
	logger     *zap.Logger
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// Config for Gemini client
type Config struct {
	APIKey     string
	ModelName  string // Default: "gemini-2.0-flash-exp"
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash-exp" // Fast and free
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	// One model handle per task: SQL generation is pinned low and
	// short, report generation gets room to write.
	sqlModel := client.GenerativeModel(cfg.ModelName)
	sqlModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}
	sqlModel.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.1),
		TopP:            genai.Ptr[float32](0.9),
		TopK:            genai.Ptr[int32](40),
		MaxOutputTokens: genai.Ptr[int32](300),
	}

	textModel := client.GenerativeModel(cfg.ModelName)
	textModel.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: genai.Ptr[int32](1500),
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		client:     client,
		sqlModel:   sqlModel,
		textModel:  textModel,
		logger:     logger,
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// GenerateSQL translates one question into a single SELECT statement.
// The result is cleaned of markdown wrapping but not validated; the
// resolver owns the safety gate.
func (c *Client) GenerateSQL(ctx context.Context, question string, sch *schema.Schema, referenceYear int) (string, error) {
	prompt := BuildSQLPrompt(question, sch, referenceYear)

	raw, err := c.generate(ctx, c.sqlModel, prompt)
	if err != nil {
		return "", err
	}

	sql := CleanSQL(raw)
	if sql == "" {
		return "", fmt.Errorf("gemini returned no SQL")
	}

	c.logger.Debug("Generated SQL",
		zap.String("question", question),
		zap.String("sql", sql))

	return sql, nil
}

// GenerateAnalysis produces a free-text report for a prepared prompt.
func (c *Client) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	raw, err := c.generate(ctx, c.textModel, prompt)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("gemini returned empty analysis")
	}

	return text, nil
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Gemini request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("gemini API error: %w", err)
			c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("empty response from gemini")
			c.logger.Error("Empty response from Gemini", zap.Int("attempt", attempt+1))
			continue
		}

		textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
		if !ok {
			lastErr = fmt.Errorf("unexpected response type from gemini")
			c.logger.Error("Unexpected response type", zap.Int("attempt", attempt+1))
			continue
		}

		return string(textPart), nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    "gemini",
		"model":       c.modelName,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
