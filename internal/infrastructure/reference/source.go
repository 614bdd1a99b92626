package reference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flavorlab-enrichment/internal/core/enrichment"
)

// Source 參考目錄來源
type Source interface {
	Load(ctx context.Context) ([]enrichment.ReferenceRecord, error)
}

// NewSource 依位置建立來源：http(s) URL 使用 HTTPSource，其餘視為本地檔案
func NewSource(location string, timeout time.Duration) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("reference source location is empty")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout), nil
	}
	return NewFileSource(location), nil
}
