package enrichment

import (
	"sort"
	"strings"
)

const (
	fieldKeyCompounds           = "key_compounds"
	fieldCompoundConcentrations = "compound_concentrations"
	fieldNutrientReferences     = "nutrient_references"
	fieldWrappedValue           = "value"
)

// 屬於維生素/礦物質的 nutrient_type 關鍵字
var micronutrientTokens = []string{"vitamin", "mineral", "micronutr"}

// Normalize 從屬性包抽取三種標準視圖，無法辨識的形狀一律視為空
func Normalize(attrs Attributes) NormalizedView {
	return NormalizedView{
		KeyCompounds:           extractKeyCompounds(attrs),
		CompoundConcentrations: extractCompoundConcentrations(attrs),
		VitaminRefs:            extractVitaminRefs(attrs),
	}
}

// unwrapSequence 接受裸序列或 {value: [...]} 包裝，其餘回傳 nil
func unwrapSequence(v Value) Sequence {
	switch val := v.(type) {
	case Sequence:
		return val
	case Mapping:
		if seq, ok := val.Field(fieldWrappedValue).(Sequence); ok {
			return seq
		}
		return nil
	default:
		return nil
	}
}

// unwrapMapping 接受裸映射或 {value: {...}} 包裝；帶 value 鍵但內容不是映射時視為空
func unwrapMapping(v Value) Mapping {
	m, ok := v.(Mapping)
	if !ok {
		return nil
	}
	wrapped, hasValue := m[fieldWrappedValue]
	if !hasValue {
		return m
	}
	if inner, ok := wrapped.(Mapping); ok {
		return inner
	}
	return nil
}

func extractKeyCompounds(attrs Attributes) []string {
	entries := unwrapSequence(attrs.Field(fieldKeyCompounds))
	compounds := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(render(entry))
		if name == "" {
			continue
		}
		compounds = append(compounds, name)
	}
	return compounds
}

func extractCompoundConcentrations(attrs Attributes) map[string]string {
	raw := unwrapMapping(attrs.Field(fieldCompoundConcentrations))
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// 多個鍵修剪後同名時：未帶空白的鍵優先，其餘依排序取第一個
	concentrations := make(map[string]string, len(raw))
	for _, key := range keys {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if _, taken := concentrations[name]; taken && key != name {
			continue
		}
		concentrations[name] = strings.TrimSpace(render(raw[key]))
	}
	return concentrations
}

func extractVitaminRefs(attrs Attributes) []VitaminRef {
	entries := unwrapSequence(attrs.Field(fieldNutrientReferences))
	refs := make([]VitaminRef, 0, len(entries))
	for _, entry := range entries {
		item, ok := entry.(Mapping)
		if !ok {
			continue
		}
		if !isMicronutrient(render(item.Field("nutrient_type"))) {
			continue
		}

		// name 缺漏、null 或空白時改用 nutrient_name
		name := strings.TrimSpace(render(item.Field("name")))
		if name == "" {
			name = strings.TrimSpace(render(item.Field("nutrient_name")))
		}
		if name == "" {
			continue
		}

		refs = append(refs, VitaminRef{
			Name:          name,
			Concentration: strings.TrimSpace(render(item.Field("concentration"))),
		})
	}
	return refs
}

func isMicronutrient(nutrientType string) bool {
	lowered := strings.ToLower(nutrientType)
	for _, token := range micronutrientTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}
