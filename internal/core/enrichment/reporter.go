package enrichment

import (
	"sort"
)

// gapTally 缺漏統計，可在多個 worker 間各自累計後合併
type gapTally struct {
	total         int
	compoundGaps  int
	vitaminGaps   int
	compoundFreqs map[string]int
	vitaminFreqs  map[string]int
}

func newGapTally() *gapTally {
	return &gapTally{
		compoundFreqs: make(map[string]int),
		vitaminFreqs:  make(map[string]int),
	}
}

func (t *gapTally) add(record EnrichedRecord) {
	t.total++
	if len(record.MissingCompounds) > 0 {
		t.compoundGaps++
	}
	if len(record.MissingVitamins) > 0 {
		t.vitaminGaps++
	}
	for _, name := range record.MissingCompounds {
		t.compoundFreqs[name]++
	}
	for _, name := range record.MissingVitamins {
		t.vitaminFreqs[name]++
	}
}

func (t *gapTally) merge(other *gapTally) {
	t.total += other.total
	t.compoundGaps += other.compoundGaps
	t.vitaminGaps += other.vitaminGaps
	for name, count := range other.compoundFreqs {
		t.compoundFreqs[name] += count
	}
	for name, count := range other.vitaminFreqs {
		t.vitaminFreqs[name] += count
	}
}

func (t *gapTally) report() GapReport {
	return GapReport{
		TotalIngredients:            t.total,
		IngredientsWithCompoundGaps: t.compoundGaps,
		IngredientsWithVitaminGaps:  t.vitaminGaps,
		MissingCompoundFrequency:    sortedFrequency(t.compoundFreqs),
		MissingVitaminFrequency:     sortedFrequency(t.vitaminFreqs),
	}
}

// BuildReport 彙整整批補全結果的缺漏報告
func BuildReport(records []EnrichedRecord) GapReport {
	tally := newGapTally()
	for _, record := range records {
		tally.add(record)
	}
	return tally.report()
}

// sortedFrequency 依次數遞減、名稱遞增排序
func sortedFrequency(counts map[string]int) []FrequencyEntry {
	entries := make([]FrequencyEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, FrequencyEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
