package reference

import (
	"context"
	"fmt"
	"time"

	"flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// HTTPSource 從遠端取得 JSON 參考目錄
type HTTPSource struct {
	url    string
	client *resty.Client
}

// NewHTTPSource 創建 HTTP 來源
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "flavorlab-enrichment")

	return &HTTPSource{url: url, client: client}
}

// Load 下載並解析目錄
func (s *HTTPSource) Load(ctx context.Context) ([]enrichment.ReferenceRecord, error) {
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalogue %s: %w", s.url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalogue %s returned status %d", s.url, resp.StatusCode())
	}

	var records []enrichment.ReferenceRecord
	if err := common.ParseJSONBytes(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue %s: %w", s.url, err)
	}

	common.LogDebug("參考目錄已下載",
		zap.String("url", s.url),
		zap.Int("records", len(records)),
		zap.Duration("耗時", time.Since(start)),
	)
	return records, nil
}
