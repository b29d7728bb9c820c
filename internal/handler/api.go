package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tarim-kds/internal/models"
	"tarim-kds/internal/resolver"
	"tarim-kds/internal/service"
)

// Answering is the service surface the handlers need. Kept as an
// interface so handler tests can stub the whole service.
type Answering interface {
	Ask(ctx context.Context, question string) (*models.AskResponse, error)
	Analyze(ctx context.Context, tip, secim string) (*models.AnalyzeResponse, error)
	Provinces(ctx context.Context) ([]string, error)
	Products(ctx context.Context) ([]string, error)
	Debug(ctx context.Context) map[string]any
}

// Handler handles HTTP requests
type Handler struct {
	answerer Answering
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(answerer Answering, logger *zap.Logger) *Handler {
	return &Handler{
		answerer: answerer,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/ask", h.Ask)
		api.POST("/analyze", h.Analyze)

		api.GET("/provinces", h.Provinces)
		api.GET("/products", h.Products)
		api.GET("/debug", h.Debug)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// Ask answers one natural-language question
func (h *Handler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Soru alanı zorunludur."})
		return
	}

	resp, err := h.answerer.Ask(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, resolver.ErrUnresolvable) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Soru anlaşılamadı. Bir il, ilçe veya ürün adı içeren bir soru sorun.",
			})
			return
		}
		h.logger.Error("Failed to answer question", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Soru yanıtlanamadı."})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Analyze generates a decision card for a province or product
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tip ve secim alanları zorunludur."})
		return
	}

	resp, err := h.answerer.Analyze(c.Request.Context(), req.Tip, req.Secim)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadTip):
			c.JSON(http.StatusBadRequest, gin.H{"error": "tip 'il' veya 'urun' olmalıdır."})
		case errors.Is(err, service.ErrUnknownSelection):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Seçim veri setinde bulunamadı."})
		case errors.Is(err, service.ErrAnalysisUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analiz servisi şu anda kullanılamıyor."})
		default:
			h.logger.Error("Failed to generate analysis", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analiz oluşturulamadı."})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Provinces lists provinces present in the data
func (h *Handler) Provinces(c *gin.Context) {
	values, err := h.answerer.Provinces(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list provinces", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Liste alınamadı."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"iller": values,
		"total": len(values),
	})
}

// Products lists products present in the data
func (h *Handler) Products(c *gin.Context) {
	values, err := h.answerer.Products(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Liste alınamadı."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"urunler": values,
		"total":   len(values),
	})
}

// Debug reports the resolved schema and a data sample
func (h *Handler) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, h.answerer.Debug(c.Request.Context()))
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tarim-kds",
		"version": "1.0.0",
	})
}
