package enrichment

import (
	"net/http"

	"flavorlab-enrichment/internal/core/batch"
	core "flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxPreviewIngredients 單次預覽可送出的食材上限
const maxPreviewIngredients = 500

// PreviewRequest 預覽補全請求
type PreviewRequest struct {
	Ingredients []core.RawIngredient `json:"ingredients" binding:"required"`
}

// RunResponse 批次執行摘要
type RunResponse struct {
	BatchID     string         `json:"batch_id"`
	Fingerprint string         `json:"fingerprint"`
	CacheHit    bool           `json:"cache_hit"`
	Report      core.GapReport `json:"report"`
	RecordsPath string         `json:"records_path,omitempty"`
	ReportPath  string         `json:"report_path,omitempty"`
}

// Handler 食材補全處理程序
type Handler struct {
	service *batch.Service
	debug   bool
}

// NewHandler 創建新的處理程序
func NewHandler(service *batch.Service, debug bool) *Handler {
	return &Handler{service: service, debug: debug}
}

// HandleRun 執行一次完整批次
func (h *Handler) HandleRun(c *gin.Context) {
	requestID := requestIDFrom(c)

	result, err := h.service.Run(c.Request.Context())
	if err != nil {
		h.respondError(c, requestID, "批次執行失敗", err)
		return
	}

	c.JSON(http.StatusOK, RunResponse{
		BatchID:     result.BatchID,
		Fingerprint: result.Fingerprint,
		CacheHit:    result.CacheHit,
		Report:      result.Report,
		RecordsPath: result.RecordsPath,
		ReportPath:  result.ReportPath,
	})
}

// HandleRecords 取得最近一次批次的補全紀錄
func (h *Handler) HandleRecords(c *gin.Context) {
	result, ok := h.service.Latest()
	if !ok {
		h.respondError(c, requestIDFrom(c), "查無批次", common.ErrNoBatch)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch_id":     result.BatchID,
		"generated_at": result.GeneratedAt,
		"records":      result.Records,
	})
}

// HandleReport 取得最近一次批次的缺漏報告
func (h *Handler) HandleReport(c *gin.Context) {
	result, ok := h.service.Latest()
	if !ok {
		h.respondError(c, requestIDFrom(c), "查無批次", common.ErrNoBatch)
		return
	}
	c.JSON(http.StatusOK, result.Report)
}

// HandlePreview 以已載入的參考資料補全請求中的食材
func (h *Handler) HandlePreview(c *gin.Context) {
	requestID := requestIDFrom(c)

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, requestID, "請求格式無效", common.ErrInvalidRequest.Wrap(err))
		return
	}
	if len(req.Ingredients) > maxPreviewIngredients {
		err := common.NewValidationError("too many ingredients in one preview request")
		h.respondError(c, requestID, "請求格式無效", common.ErrInvalidRequest.Wrap(err))
		return
	}

	result, err := h.service.Preview(c.Request.Context(), req.Ingredients)
	if err != nil {
		h.respondError(c, requestID, "預覽失敗", err)
		return
	}

	common.LogInfo("預覽完成",
		zap.String("request_id", requestID),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Int("compound_gaps", result.Report.IngredientsWithCompoundGaps),
		zap.Int("vitamin_gaps", result.Report.IngredientsWithVitaminGaps),
	)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) respondError(c *gin.Context, requestID, msg string, err error) {
	ce := common.AsCustomError(err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError(msg, fields...)
	} else {
		common.LogWarn(msg, fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(h.debug))
}

func requestIDFrom(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}
