package output

import (
	"fmt"
	"os"
	"path/filepath"

	"flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/pkg/common"
)

const (
	RecordsFileName = "ingredient_enrichment.json"
	ReportFileName  = "ingredient_enrichment_report.json"
)

// Writer 將批次結果寫入輸出目錄
type Writer struct {
	dir string
}

// NewWriter 創建輸出寫入器
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write 寫入補全紀錄與缺漏報告，回傳兩個檔案路徑
func (w *Writer) Write(result enrichment.Result) (string, string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	recordsPath := filepath.Join(w.dir, RecordsFileName)
	if err := writeJSONFile(recordsPath, result.Records); err != nil {
		return "", "", err
	}

	reportPath := filepath.Join(w.dir, ReportFileName)
	if err := writeJSONFile(reportPath, result.Report); err != nil {
		return "", "", err
	}

	return recordsPath, reportPath, nil
}

// writeJSONFile 先寫暫存檔再改名，避免讀到寫一半的內容
func writeJSONFile(path string, v interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := common.WriteIndentedJSON(tmp, v); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
