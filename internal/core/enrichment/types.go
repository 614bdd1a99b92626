package enrichment

import (
	"encoding/json"
	"fmt"
)

// EvidenceLevel 參考資料的證據等級
type EvidenceLevel string

const (
	EvidenceEstablished EvidenceLevel = "Established"
	EvidenceEmerging    EvidenceLevel = "Emerging"
)

// ReferenceDetail 化合物或維生素/礦物質的參考資料
type ReferenceDetail struct {
	Name            string
	Summary         string
	PrimaryActions  []string
	EvidenceLevel   EvidenceLevel
	AmountReference *string // 僅維生素/礦物質
}

// RawIngredient 來源食材紀錄，管線只讀不寫
type RawIngredient struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Attributes Attributes `json:"attributes"`
}

// VitaminRef 食材對維生素/礦物質的引用
type VitaminRef struct {
	Name          string `json:"name"`
	Concentration string `json:"concentration"`
}

// NormalizedView 正規化後的屬性視圖
type NormalizedView struct {
	KeyCompounds           []string
	CompoundConcentrations map[string]string
	VitaminRefs            []VitaminRef
}

// CompoundEntry 已補全的化合物資料
type CompoundEntry struct {
	Name           string        `json:"name"`
	Summary        string        `json:"summary"`
	PrimaryActions []string      `json:"primary_actions"`
	EvidenceLevel  EvidenceLevel `json:"evidence_level"`
	Concentration  string        `json:"concentration"`
}

// VitaminEntry 已補全的維生素/礦物質資料
type VitaminEntry struct {
	Name            string        `json:"name"`
	Summary         string        `json:"summary"`
	PrimaryActions  []string      `json:"primary_actions"`
	EvidenceLevel   EvidenceLevel `json:"evidence_level"`
	AmountReference *string       `json:"amount_reference,omitempty"`
	AmountPer100g   string        `json:"amount_per_100g"`
}

// EnrichedRecord 單一食材的補全結果
type EnrichedRecord struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	KeyCompounds     []CompoundEntry `json:"key_compounds"`
	VitaminsMinerals []VitaminEntry  `json:"vitamins_minerals"`
	MissingCompounds []string        `json:"missing_compounds"`
	MissingVitamins  []string        `json:"missing_vitamins"`
}

// FrequencyEntry 缺漏名稱與出現次數，序列化為 ["name", count]
type FrequencyEntry struct {
	Name  string
	Count int
}

// MarshalJSON 輸出為二元陣列
func (f FrequencyEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{f.Name, f.Count})
}

// UnmarshalJSON 從二元陣列解析
func (f *FrequencyEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("frequency entry: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &f.Name); err != nil {
		return fmt.Errorf("frequency entry name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &f.Count); err != nil {
		return fmt.Errorf("frequency entry count: %w", err)
	}
	return nil
}

// GapReport 批次缺漏報告
type GapReport struct {
	TotalIngredients            int              `json:"total_ingredients"`
	IngredientsWithCompoundGaps int              `json:"ingredients_with_compound_gaps"`
	IngredientsWithVitaminGaps  int              `json:"ingredients_with_vitamin_gaps"`
	MissingCompoundFrequency    []FrequencyEntry `json:"missing_compound_frequency"`
	MissingVitaminFrequency     []FrequencyEntry `json:"missing_vitamin_frequency"`
}
