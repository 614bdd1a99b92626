package storage

import (
	"context"
	"fmt"
	"os"

	"flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/pkg/common"
)

// FileStore 從 JSON 檔案讀取食材陣列
type FileStore struct {
	path string
}

// NewFileStore 創建檔案來源
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// ListIngredients 讀取檔案中的所有食材
func (s *FileStore) ListIngredients(ctx context.Context) ([]enrichment.RawIngredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingredients file: %w", err)
	}
	defer f.Close()

	var ingredients []enrichment.RawIngredient
	if err := common.DecodeJSON(f, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients file %s: %w", s.path, err)
	}
	return ingredients, nil
}

// Close 檔案來源無需釋放資源
func (s *FileStore) Close() error {
	return nil
}
