package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAttrs(t *testing.T, raw string) Attributes {
	t.Helper()
	attrs, err := ParseAttributes([]byte(raw))
	require.NoError(t, err)
	return attrs
}

func TestNormalize_EmptyAttributes(t *testing.T) {
	for _, raw := range []string{``, `{}`, `null`, `[]`, `"text"`} {
		view := Normalize(mustAttrs(t, raw))
		assert.Empty(t, view.KeyCompounds, raw)
		assert.Empty(t, view.CompoundConcentrations, raw)
		assert.Empty(t, view.VitaminRefs, raw)
	}

	view := Normalize(nil)
	assert.Empty(t, view.KeyCompounds)
	assert.Empty(t, view.CompoundConcentrations)
	assert.Empty(t, view.VitaminRefs)
}

func TestNormalize_KeyCompoundShapes(t *testing.T) {
	bare := Normalize(mustAttrs(t, `{"key_compounds": ["Gingerol", "Zingiberene"]}`))
	wrapped := Normalize(mustAttrs(t, `{"key_compounds": {"value": ["Gingerol", "Zingiberene"], "source": "usda"}}`))
	absent := Normalize(mustAttrs(t, `{"other": 1}`))

	assert.Equal(t, []string{"Gingerol", "Zingiberene"}, bare.KeyCompounds)
	assert.Equal(t, bare.KeyCompounds, wrapped.KeyCompounds)
	assert.Equal(t, []string{}, absent.KeyCompounds)
}

func TestNormalize_KeyCompoundsTrimAndDrop(t *testing.T) {
	view := Normalize(mustAttrs(t, `{"key_compounds": ["  Allicin ", "", "   ", null, 42, "Quercetin"]}`))
	assert.Equal(t, []string{"Allicin", "42", "Quercetin"}, view.KeyCompounds)
}

func TestNormalize_KeyCompoundsUnrecognisedShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"string", `{"key_compounds": "Gingerol"}`},
		{"number", `{"key_compounds": 3}`},
		{"null", `{"key_compounds": null}`},
		{"wrapper with string", `{"key_compounds": {"value": "Gingerol"}}`},
		{"wrapper without value", `{"key_compounds": {"items": ["Gingerol"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Normalize(mustAttrs(t, tt.raw))
			assert.Empty(t, view.KeyCompounds)
		})
	}
}

func TestNormalize_CompoundConcentrations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "bare mapping",
			raw:  `{"compound_concentrations": {" Gingerol ": " 1.5 mg/g ", "Shogaol": 0.3}}`,
			want: map[string]string{"Gingerol": "1.5 mg/g", "Shogaol": "0.3"},
		},
		{
			name: "wrapper",
			raw:  `{"compound_concentrations": {"value": {"Gingerol": "1.5 mg/g"}}}`,
			want: map[string]string{"Gingerol": "1.5 mg/g"},
		},
		{
			name: "wrapper with non-mapping value",
			raw:  `{"compound_concentrations": {"value": ["Gingerol"]}}`,
			want: map[string]string{},
		},
		{
			name: "empty key dropped",
			raw:  `{"compound_concentrations": {"  ": "1 mg", "Allicin": "2 mg"}}`,
			want: map[string]string{"Allicin": "2 mg"},
		},
		{
			name: "sequence is not a mapping",
			raw:  `{"compound_concentrations": [{"Allicin": "2 mg"}]}`,
			want: map[string]string{},
		},
		{
			name: "absent",
			raw:  `{}`,
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Normalize(mustAttrs(t, tt.raw))
			assert.Equal(t, tt.want, view.CompoundConcentrations)
		})
	}
}

func TestNormalize_CompoundConcentrationsTrimCollision(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "exact key wins",
			raw:  `{"compound_concentrations": {"Gingerol": "1 mg", " Gingerol": "2 mg", "Gingerol ": "3 mg"}}`,
			want: "1 mg",
		},
		{
			name: "first sorted padded key wins",
			raw:  `{"compound_concentrations": {"Gingerol  ": "3 mg", " Gingerol": "2 mg", "Gingerol ": "4 mg"}}`,
			want: "2 mg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := mustAttrs(t, tt.raw)
			for i := 0; i < 100; i++ {
				view := Normalize(attrs)
				require.Equal(t, map[string]string{"Gingerol": tt.want}, view.CompoundConcentrations, "run %d", i)
			}
		})
	}
}

func TestNormalize_VitaminRefs(t *testing.T) {
	attrs := mustAttrs(t, `{"nutrient_references": [
		{"nutrient_name": "Vitamin C", "nutrient_type": "Vitamin", "concentration": " 12 mg "},
		{"name": "Iron", "nutrient_type": "MINERAL"},
		{"name": "Protein", "nutrient_type": "macronutrient", "concentration": "20 g"},
		{"name": "Zinc", "nutrient_type": "trace micronutrient", "concentration": 1.1},
		{"name": "Fiber"},
		{"nutrient_type": "vitamin"},
		"Vitamin D",
		{"name": "Vitamin C", "nutrient_type": "vitamin", "concentration": "99 mg"}
	]}`)

	view := Normalize(attrs)
	assert.Equal(t, []VitaminRef{
		{Name: "Vitamin C", Concentration: "12 mg"},
		{Name: "Iron", Concentration: ""},
		{Name: "Zinc", Concentration: "1.1"},
		{Name: "Vitamin C", Concentration: "99 mg"},
	}, view.VitaminRefs)
}

func TestNormalize_VitaminRefsNamePrecedence(t *testing.T) {
	view := Normalize(mustAttrs(t, `{"nutrient_references": [
		{"name": "Vitamin A", "nutrient_name": "Retinol", "nutrient_type": "vitamin"},
		{"name": null, "nutrient_name": "Retinol", "nutrient_type": "vitamin"}
	]}`))
	require.Len(t, view.VitaminRefs, 2)
	assert.Equal(t, "Vitamin A", view.VitaminRefs[0].Name)
	assert.Equal(t, "Retinol", view.VitaminRefs[1].Name)
}

func TestNormalize_VitaminRefsWrapper(t *testing.T) {
	bare := Normalize(mustAttrs(t, `{"nutrient_references": [{"name": "Iron", "nutrient_type": "mineral", "concentration": "2 mg"}]}`))
	wrapped := Normalize(mustAttrs(t, `{"nutrient_references": {"value": [{"name": "Iron", "nutrient_type": "mineral", "concentration": "2 mg"}]}}`))
	broken := Normalize(mustAttrs(t, `{"nutrient_references": {"value": {"name": "Iron"}}}`))

	assert.Equal(t, bare.VitaminRefs, wrapped.VitaminRefs)
	assert.Empty(t, broken.VitaminRefs)
}
