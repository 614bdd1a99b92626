package enrichment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport_Counts(t *testing.T) {
	records := []EnrichedRecord{
		{Name: "Basil", MissingCompounds: []string{"Eugenol", "Linalool"}, MissingVitamins: []string{}},
		{Name: "Garlic", MissingCompounds: []string{"Ajoene", "Eugenol", "Eugenol"}, MissingVitamins: []string{"Vitamin B6"}},
		{Name: "Kale", MissingCompounds: []string{}, MissingVitamins: []string{"Vitamin K", "Vitamin B6"}},
		{Name: "Salt", MissingCompounds: []string{}, MissingVitamins: []string{}},
	}

	report := BuildReport(records)

	assert.Equal(t, 4, report.TotalIngredients)
	assert.Equal(t, 2, report.IngredientsWithCompoundGaps)
	assert.Equal(t, 2, report.IngredientsWithVitaminGaps)
	assert.Equal(t, []FrequencyEntry{
		{Name: "Eugenol", Count: 3},
		{Name: "Ajoene", Count: 1},
		{Name: "Linalool", Count: 1},
	}, report.MissingCompoundFrequency)
	assert.Equal(t, []FrequencyEntry{
		{Name: "Vitamin B6", Count: 2},
		{Name: "Vitamin K", Count: 1},
	}, report.MissingVitaminFrequency)
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil)

	assert.Equal(t, 0, report.TotalIngredients)
	assert.NotNil(t, report.MissingCompoundFrequency)
	assert.NotNil(t, report.MissingVitaminFrequency)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"total_ingredients": 0,
		"ingredients_with_compound_gaps": 0,
		"ingredients_with_vitamin_gaps": 0,
		"missing_compound_frequency": [],
		"missing_vitamin_frequency": []
	}`, string(data))
}

func TestBuildReport_VitaminFrequencyBoundedByIngredients(t *testing.T) {
	refs := testReferences(t)
	var records []EnrichedRecord
	for i := 0; i < 5; i++ {
		view := NormalizedView{VitaminRefs: []VitaminRef{{Name: "Vitamin K"}, {Name: "Vitamin K"}, {Name: "Vitamin K"}}}
		records = append(records, Join(view, refs))
	}

	report := BuildReport(records)

	require.Len(t, report.MissingVitaminFrequency, 1)
	assert.Equal(t, report.IngredientsWithVitaminGaps, report.MissingVitaminFrequency[0].Count)
	assert.LessOrEqual(t, report.MissingVitaminFrequency[0].Count, report.TotalIngredients)
}

func TestFrequencyEntry_JSON(t *testing.T) {
	data, err := json.Marshal([]FrequencyEntry{{Name: "Eugenol", Count: 3}})
	require.NoError(t, err)
	assert.Equal(t, `[["Eugenol",3]]`, string(data))

	var entry FrequencyEntry
	require.NoError(t, json.Unmarshal([]byte(`["Linalool", 2]`), &entry))
	assert.Equal(t, FrequencyEntry{Name: "Linalool", Count: 2}, entry)

	assert.Error(t, json.Unmarshal([]byte(`["Linalool"]`), &entry))
	assert.Error(t, json.Unmarshal([]byte(`{"name": "Linalool"}`), &entry))
}

func TestGapTally_MergeMatchesSinglePass(t *testing.T) {
	records := []EnrichedRecord{
		{MissingCompounds: []string{"A", "B"}, MissingVitamins: []string{}},
		{MissingCompounds: []string{"B"}, MissingVitamins: []string{"Iron"}},
		{MissingCompounds: []string{}, MissingVitamins: []string{"Iron", "Zinc"}},
	}

	left, right := newGapTally(), newGapTally()
	left.add(records[0])
	right.add(records[1])
	right.add(records[2])
	left.merge(right)

	assert.Equal(t, BuildReport(records), left.report())
}
