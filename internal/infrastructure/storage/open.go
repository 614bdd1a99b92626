package storage

import (
	"context"

	"flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/infrastructure/config"
)

// Source 可關閉的食材來源
type Source interface {
	ListIngredients(ctx context.Context) ([]enrichment.RawIngredient, error)
	Close() error
}

// Open 依設定開啟食材來源，ingredients_file 優先於 SQLite
func Open(cfg config.StorageConfig) (Source, error) {
	if cfg.IngredientsFile != "" {
		return NewFileStore(cfg.IngredientsFile), nil
	}
	return OpenSQLite(cfg.DBPath)
}
