package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"flavorlab-enrichment/internal/core/cache"
	"flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/infrastructure/reference"
	"flavorlab-enrichment/internal/pkg/common"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "batch:"

// IngredientSource 食材來源
type IngredientSource interface {
	ListIngredients(ctx context.Context) ([]enrichment.RawIngredient, error)
}

// ResultWriter 批次結果輸出
type ResultWriter interface {
	Write(result enrichment.Result) (string, string, error)
}

// Result 一次批次執行的完整結果
type Result struct {
	BatchID     string                      `json:"batch_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Fingerprint string                      `json:"fingerprint"`
	CacheHit    bool                        `json:"cache_hit"`
	Records     []enrichment.EnrichedRecord `json:"records"`
	Report      enrichment.GapReport        `json:"report"`
	RecordsPath string                      `json:"records_path,omitempty"`
	ReportPath  string                      `json:"report_path,omitempty"`
}

// Options 批次服務相依
type Options struct {
	Ingredients IngredientSource
	Compounds   reference.Source
	Vitamins    reference.Source
	Writer      ResultWriter // nil 表示不寫檔
	Cache       cache.Store  // nil 表示不使用快取
	Workers     int
}

// Service 批次補全服務
type Service struct {
	opts Options

	mu     sync.RWMutex
	refs   *enrichment.References
	latest *Result
}

// NewService 創建批次服務
func NewService(opts Options) *Service {
	return &Service{opts: opts}
}

// catalogues 兩份原始參考紀錄
type catalogues struct {
	compounds []enrichment.ReferenceRecord
	vitamins  []enrichment.ReferenceRecord
}

func (s *Service) loadCatalogues(ctx context.Context) (catalogues, error) {
	compounds, err := s.opts.Compounds.Load(ctx)
	if err != nil {
		return catalogues{}, fmt.Errorf("failed to load compound catalogue: %w", err)
	}
	vitamins, err := s.opts.Vitamins.Load(ctx)
	if err != nil {
		return catalogues{}, fmt.Errorf("failed to load vitamin catalogue: %w", err)
	}
	return catalogues{compounds: compounds, vitamins: vitamins}, nil
}

func buildReferences(c catalogues) (*enrichment.References, error) {
	refs, err := enrichment.LoadReferences(c.compounds, c.vitamins)
	if err != nil {
		var malformed *enrichment.MalformedReferenceError
		if errors.As(err, &malformed) {
			return nil, common.ErrMalformedReference.Wrap(err)
		}
		return nil, err
	}
	return refs, nil
}

// LoadReferences 重新載入參考字典，供預覽與就緒檢查使用
func (s *Service) LoadReferences(ctx context.Context) (*enrichment.References, error) {
	c, err := s.loadCatalogues(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := buildReferences(c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.refs = refs
	s.mu.Unlock()

	common.LogInfo("參考資料已載入",
		zap.Int("compounds", refs.CompoundCount()),
		zap.Int("vitamins", refs.VitaminCount()),
	)
	return refs, nil
}

// Run 執行一次完整批次：載入參考與食材、補全、寫檔並快取
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	batchID := common.GenerateUUID()

	common.LogInfo("批次開始", zap.String("batch_id", batchID))

	c, err := s.loadCatalogues(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := buildReferences(c)
	if err != nil {
		return nil, err
	}

	ingredients, err := s.opts.Ingredients.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}

	fingerprint, err := fingerprintInputs(ingredients, c)
	if err != nil {
		return nil, err
	}

	pipelineResult, cacheHit := s.cachedResult(ctx, fingerprint)
	if !cacheHit {
		pipelineResult = enrichment.NewPipeline(refs, s.opts.Workers).Run(ingredients)
		s.storeResult(ctx, fingerprint, pipelineResult)
	}

	result := &Result{
		BatchID:     batchID,
		GeneratedAt: time.Now().UTC(),
		Fingerprint: fingerprint,
		CacheHit:    cacheHit,
		Records:     pipelineResult.Records,
		Report:      pipelineResult.Report,
	}

	if s.opts.Writer != nil {
		recordsPath, reportPath, err := s.opts.Writer.Write(pipelineResult)
		if err != nil {
			return nil, fmt.Errorf("failed to write outputs: %w", err)
		}
		result.RecordsPath = recordsPath
		result.ReportPath = reportPath
	}

	s.mu.Lock()
	s.refs = refs
	s.latest = result
	s.mu.Unlock()

	common.LogBatch(batchID,
		result.Report.TotalIngredients,
		result.Report.IngredientsWithCompoundGaps,
		result.Report.IngredientsWithVitaminGaps,
		time.Since(start),
	)
	return result, nil
}

// Preview 以目前的參考字典補全指定食材，不讀寫儲存層
func (s *Service) Preview(ctx context.Context, ingredients []enrichment.RawIngredient) (enrichment.Result, error) {
	refs := s.References()
	if refs == nil {
		var err error
		if refs, err = s.LoadReferences(ctx); err != nil {
			return enrichment.Result{}, err
		}
	}
	return enrichment.NewPipeline(refs, s.opts.Workers).Run(ingredients), nil
}

// Latest 最近一次批次結果
func (s *Service) Latest() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// References 目前載入的參考字典，尚未載入時為 nil
func (s *Service) References() *enrichment.References {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refs
}

// CacheStats 快取統計，未啟用時為 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.opts.Cache == nil {
		return nil
	}
	return s.opts.Cache.Stats()
}

func (s *Service) cachedResult(ctx context.Context, fingerprint string) (enrichment.Result, bool) {
	if s.opts.Cache == nil {
		return enrichment.Result{}, false
	}

	raw, err := s.opts.Cache.Get(ctx, cacheKeyPrefix+fingerprint)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
		return enrichment.Result{}, false
	}

	var result enrichment.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		common.LogWarn("快取內容無法解析", zap.Error(err))
		return enrichment.Result{}, false
	}
	return result, true
}

func (s *Service) storeResult(ctx context.Context, fingerprint string, result enrichment.Result) {
	if s.opts.Cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		common.LogWarn("批次結果無法序列化", zap.Error(err))
		return
	}
	if err := s.opts.Cache.Set(ctx, cacheKeyPrefix+fingerprint, string(data)); err != nil {
		common.LogWarn("寫入快取失敗", zap.Error(err))
	}
}

// fingerprintInputs 以食材與兩份目錄的內容計算雜湊，食材先排序故來源順序不影響結果
func fingerprintInputs(ingredients []enrichment.RawIngredient, c catalogues) (string, error) {
	payload := struct {
		Ingredients []enrichment.RawIngredient   `json:"ingredients"`
		Compounds   []enrichment.ReferenceRecord `json:"compounds"`
		Vitamins    []enrichment.ReferenceRecord `json:"vitamins"`
	}{
		Ingredients: enrichment.SortIngredients(ingredients),
		Compounds:   c.compounds,
		Vitamins:    c.vitamins,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint inputs: %w", err)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
