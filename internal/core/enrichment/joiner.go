package enrichment

// Join 將正規化視圖與參考字典結合，產生不含 id/name 的補全結果。
// 查詢僅接受大小寫完全一致的名稱。
func Join(view NormalizedView, refs *References) EnrichedRecord {
	record := EnrichedRecord{
		KeyCompounds:     make([]CompoundEntry, 0, len(view.KeyCompounds)),
		VitaminsMinerals: make([]VitaminEntry, 0, len(view.VitaminRefs)),
		MissingCompounds: []string{},
		MissingVitamins:  []string{},
	}

	// 化合物不去重，重複名稱照原樣計入
	for _, name := range view.KeyCompounds {
		detail, ok := refs.Compound(name)
		if !ok {
			record.MissingCompounds = append(record.MissingCompounds, name)
			continue
		}
		record.KeyCompounds = append(record.KeyCompounds, CompoundEntry{
			Name:           detail.Name,
			Summary:        detail.Summary,
			PrimaryActions: cloneStrings(detail.PrimaryActions),
			EvidenceLevel:  detail.EvidenceLevel,
			Concentration:  view.CompoundConcentrations[detail.Name],
		})
	}

	seen := make(map[string]struct{}, len(view.VitaminRefs))
	for _, ref := range view.VitaminRefs {
		if _, dup := seen[ref.Name]; dup {
			continue
		}
		seen[ref.Name] = struct{}{}

		detail, ok := refs.Vitamin(ref.Name)
		if !ok {
			record.MissingVitamins = append(record.MissingVitamins, ref.Name)
			continue
		}
		entry := VitaminEntry{
			Name:           detail.Name,
			Summary:        detail.Summary,
			PrimaryActions: cloneStrings(detail.PrimaryActions),
			EvidenceLevel:  detail.EvidenceLevel,
			AmountPer100g:  ref.Concentration,
		}
		if detail.AmountReference != nil {
			amount := *detail.AmountReference
			entry.AmountReference = &amount
		}
		record.VitaminsMinerals = append(record.VitaminsMinerals, entry)
	}

	return record
}

// Enrich 對單一食材執行正規化與結合
func Enrich(ingredient RawIngredient, refs *References) EnrichedRecord {
	record := Join(Normalize(ingredient.Attributes), refs)
	record.ID = ingredient.ID
	record.Name = ingredient.Name
	return record
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
