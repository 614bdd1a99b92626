package enrichment

import (
	"fmt"
	"strings"
)

// CatalogueKind 參考目錄種類
type CatalogueKind string

const (
	CatalogueCompounds CatalogueKind = "compounds"
	CatalogueVitamins  CatalogueKind = "vitamins"
)

// ReferenceRecord 參考目錄中的原始紀錄
type ReferenceRecord struct {
	Name            string   `json:"name" yaml:"name"`
	Summary         string   `json:"summary" yaml:"summary"`
	PrimaryActions  []string `json:"primary_actions,omitempty" yaml:"primary_actions,omitempty"`
	EvidenceLevel   string   `json:"evidence_level,omitempty" yaml:"evidence_level,omitempty"`
	AmountReference *string  `json:"amount_reference,omitempty" yaml:"amount_reference,omitempty"`
}

// MalformedReferenceError 參考紀錄缺少 name，整個批次中止
type MalformedReferenceError struct {
	Catalogue CatalogueKind
	Index     int
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed reference: %s record %d has no name", e.Catalogue, e.Index)
}

// References 批次期間唯讀的兩份參考字典
type References struct {
	compounds map[string]ReferenceDetail
	vitamins  map[string]ReferenceDetail
}

// LoadReferences 將兩份參考紀錄建立成以 name 為鍵的字典。
// 化合物預設證據等級為 Emerging，維生素/礦物質為 Established。
func LoadReferences(compounds, vitamins []ReferenceRecord) (*References, error) {
	compoundMap, err := buildCatalogue(CatalogueCompounds, compounds, EvidenceEmerging)
	if err != nil {
		return nil, err
	}
	vitaminMap, err := buildCatalogue(CatalogueVitamins, vitamins, EvidenceEstablished)
	if err != nil {
		return nil, err
	}
	return &References{compounds: compoundMap, vitamins: vitaminMap}, nil
}

func buildCatalogue(kind CatalogueKind, records []ReferenceRecord, defaultEvidence EvidenceLevel) (map[string]ReferenceDetail, error) {
	details := make(map[string]ReferenceDetail, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			return nil, &MalformedReferenceError{Catalogue: kind, Index: i}
		}

		actions := make([]string, len(rec.PrimaryActions))
		copy(actions, rec.PrimaryActions)

		evidence := EvidenceLevel(rec.EvidenceLevel)
		if evidence == "" {
			evidence = defaultEvidence
		}

		detail := ReferenceDetail{
			Name:           rec.Name,
			Summary:        rec.Summary,
			PrimaryActions: actions,
			EvidenceLevel:  evidence,
		}
		// 化合物不帶建議攝取量
		if kind == CatalogueVitamins && rec.AmountReference != nil {
			amount := *rec.AmountReference
			detail.AmountReference = &amount
		}
		// 同名紀錄以後者為準
		details[rec.Name] = detail
	}
	return details, nil
}

// Compound 以精確名稱查詢化合物
func (r *References) Compound(name string) (ReferenceDetail, bool) {
	d, ok := r.compounds[name]
	return d, ok
}

// Vitamin 以精確名稱查詢維生素/礦物質
func (r *References) Vitamin(name string) (ReferenceDetail, bool) {
	d, ok := r.vitamins[name]
	return d, ok
}

// CompoundCount 化合物字典大小
func (r *References) CompoundCount() int {
	return len(r.compounds)
}

// VitaminCount 維生素/礦物質字典大小
func (r *References) VitaminCount() int {
	return len(r.vitamins)
}
