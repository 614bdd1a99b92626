package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	prevWD, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	t.Setenv("LOG_MODE", "concise")

	ingredients := writeFixture(t, dir, "ingredients.json", `[
		{"id": 2, "name": "Orange", "attributes": {"nutrient_references": [
			{"nutrient_name": "Vitamin C", "nutrient_type": "vitamin", "concentration": "53 mg"},
			{"nutrient_name": "Folate", "nutrient_type": "vitamin"}
		]}},
		{"id": 1, "name": "Ginger", "attributes": {"key_compounds": ["Gingerol", "Shogaol"]}}
	]`)
	compounds := writeFixture(t, dir, "compounds.json", `[{"name": "Gingerol", "summary": "Pungent phenol."}]`)
	vitamins := writeFixture(t, dir, "vitamins.yaml", "- name: Vitamin C\n  summary: Antioxidant.\n")
	outDir := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"run",
		"--ingredients", ingredients,
		"--compounds", compounds,
		"--vitamins", vitamins,
		"--out", outDir,
		"--workers", "2",
	})

	require.NoError(t, root.Execute())
	assert.Equal(t, "Generated ingredient enrichment for 2 items. Compound gaps: 1 | Vitamin gaps: 1\n", stdout.String())

	assert.FileExists(t, filepath.Join(outDir, "ingredient_enrichment.json"))
	report, err := os.ReadFile(filepath.Join(outDir, "ingredient_enrichment_report.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"total_ingredients": 2,
		"ingredients_with_compound_gaps": 1,
		"ingredients_with_vitamin_gaps": 1,
		"missing_compound_frequency": [["Shogaol", 1]],
		"missing_vitamin_frequency": [["Folate", 1]]
	}`, string(report))
}

func TestRunCommand_MalformedCatalogue(t *testing.T) {
	dir := t.TempDir()
	prevWD, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	ingredients := writeFixture(t, dir, "ingredients.json", `[]`)
	compounds := writeFixture(t, dir, "compounds.json", `[{"summary": "nameless"}]`)
	vitamins := writeFixture(t, dir, "vitamins.json", `[]`)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run",
		"--ingredients", ingredients,
		"--compounds", compounds,
		"--vitamins", vitamins,
		"--out", filepath.Join(dir, "out"),
	})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed reference")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}
