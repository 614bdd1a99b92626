package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/pkg/common"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const listIngredientsQuery = `
SELECT id, name, attributes
FROM entities
WHERE primary_classification = 'ingredient'
ORDER BY name`

// SQLiteStore 從 entities 資料表讀取食材
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite 以唯讀模式開啟既有的 SQLite 資料庫，檔案不存在時回傳錯誤
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect database %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// ListIngredients 讀取所有分類為 ingredient 的紀錄
func (s *SQLiteStore) ListIngredients(ctx context.Context) ([]enrichment.RawIngredient, error) {
	rows, err := s.db.QueryContext(ctx, listIngredientsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []enrichment.RawIngredient
	for rows.Next() {
		var (
			id    int64
			name  string
			attrs sql.NullString
		)
		if err := rows.Scan(&id, &name, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}

		parsed, err := enrichment.ParseAttributes([]byte(attrs.String))
		if err != nil {
			common.LogWarn("食材屬性無法解析，視為空屬性",
				zap.Int64("id", id),
				zap.String("name", name),
				zap.Error(err),
			)
			parsed = enrichment.Attributes{}
		}

		ingredients = append(ingredients, enrichment.RawIngredient{
			ID:         id,
			Name:       name,
			Attributes: parsed,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}

	return ingredients, nil
}

// Close 關閉資料庫
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// readOnlyDSN 以 URI 形式加上 mode=ro，避免缺檔時自動建立空資料庫
func readOnlyDSN(path string) string {
	u := url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}
	return u.String()
}
