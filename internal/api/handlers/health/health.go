package health

import (
	"net/http"
	"runtime"
	"time"

	"flavorlab-enrichment/internal/core/batch"
	"flavorlab-enrichment/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Runtime    map[string]interface{} `json:"runtime"`
	References *ReferenceStatus       `json:"references,omitempty"`
	LastBatch  *BatchStatus           `json:"last_batch,omitempty"`
	Cache      map[string]interface{} `json:"cache,omitempty"`
}

// ReferenceStatus 參考字典狀態
type ReferenceStatus struct {
	Compounds int `json:"compounds"`
	Vitamins  int `json:"vitamins"`
}

// BatchStatus 最近一次批次摘要
type BatchStatus struct {
	BatchID          string    `json:"batch_id"`
	GeneratedAt      time.Time `json:"generated_at"`
	TotalIngredients int       `json:"total_ingredients"`
	CacheHit         bool      `json:"cache_hit"`
}

// Handler 健康檢查處理程序
type Handler struct {
	service *batch.Service
	version string
}

// NewHandler 創建健康檢查處理程序
func NewHandler(service *batch.Service, version string) *Handler {
	return &Handler{service: service, version: version}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Cache: h.service.CacheStats(),
	}

	if refs := h.service.References(); refs != nil {
		response.References = &ReferenceStatus{
			Compounds: refs.CompoundCount(),
			Vitamins:  refs.VitaminCount(),
		}
	}
	if latest, ok := h.service.Latest(); ok {
		response.LastBatch = &BatchStatus{
			BatchID:          latest.BatchID,
			GeneratedAt:      latest.GeneratedAt,
			TotalIngredients: latest.Report.TotalIngredients,
			CacheHit:         latest.CacheHit,
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 參考資料載入後才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.service.References() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": common.ErrReferencesNotReady.Message,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
