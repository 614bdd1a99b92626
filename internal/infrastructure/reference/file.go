package reference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/pkg/common"

	"gopkg.in/yaml.v3"
)

// FileSource 本地 JSON 或 YAML 參考目錄
type FileSource struct {
	path string
}

// NewFileSource 創建檔案來源
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load 依副檔名解析目錄檔案
func (s *FileSource) Load(ctx context.Context) ([]enrichment.ReferenceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}

	records, err := decodeRecords(data, filepath.Ext(s.path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalogue %s: %w", s.path, err)
	}
	return records, nil
}

func decodeRecords(data []byte, ext string) ([]enrichment.ReferenceRecord, error) {
	var records []enrichment.ReferenceRecord
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&records); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		if err := common.ParseJSONBytes(data, &records); err != nil {
			return nil, err
		}
	}
	return records, nil
}
