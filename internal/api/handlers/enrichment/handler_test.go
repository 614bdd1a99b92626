package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flavorlab-enrichment/internal/core/batch"
	core "flavorlab-enrichment/internal/core/enrichment"
	"flavorlab-enrichment/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIngredients []core.RawIngredient

func (s stubIngredients) ListIngredients(ctx context.Context) ([]core.RawIngredient, error) {
	return s, nil
}

type stubCatalogue []core.ReferenceRecord

func (s stubCatalogue) Load(ctx context.Context) ([]core.ReferenceRecord, error) {
	return s, nil
}

func newTestRouter(t *testing.T, compounds stubCatalogue) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	attrs, err := core.ParseAttributes([]byte(`{"key_compounds": ["Gingerol", "Shogaol"]}`))
	require.NoError(t, err)

	service := batch.NewService(batch.Options{
		Ingredients: stubIngredients{{ID: 1, Name: "Ginger", Attributes: attrs}},
		Compounds:   compounds,
		Vitamins:    stubCatalogue{{Name: "Vitamin C"}},
		Workers:     1,
	})
	handler := NewHandler(service, true)

	router := gin.New()
	router.Use(requestid.New())
	group := router.Group("/api/v1/enrichment")
	group.POST("/run", handler.HandleRun)
	group.GET("/records", handler.HandleRecords)
	group.GET("/report", handler.HandleReport)
	group.POST("/preview", handler.HandlePreview)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_RecordsBeforeRun(t *testing.T) {
	router := newTestRouter(t, stubCatalogue{{Name: "Gingerol"}})

	for _, path := range []string{"/api/v1/enrichment/records", "/api/v1/enrichment/report"} {
		w := serve(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)

		var resp common.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, common.ErrCodeNotFound, resp.Code)
	}
}

func TestHandler_RunThenRead(t *testing.T) {
	router := newTestRouter(t, stubCatalogue{{Name: "Gingerol"}})

	w := serve(router, http.MethodPost, "/api/v1/enrichment/run", "")
	require.Equal(t, http.StatusOK, w.Code)

	var run RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.NotEmpty(t, run.BatchID)
	assert.Equal(t, 1, run.Report.TotalIngredients)
	assert.Equal(t, 1, run.Report.IngredientsWithCompoundGaps)
	assert.Equal(t, []core.FrequencyEntry{{Name: "Shogaol", Count: 1}}, run.Report.MissingCompoundFrequency)

	w = serve(router, http.MethodGet, "/api/v1/enrichment/records", "")
	require.Equal(t, http.StatusOK, w.Code)
	var records struct {
		BatchID string                `json:"batch_id"`
		Records []core.EnrichedRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Equal(t, run.BatchID, records.BatchID)
	require.Len(t, records.Records, 1)
	assert.Equal(t, []string{"Shogaol"}, records.Records[0].MissingCompounds)

	w = serve(router, http.MethodGet, "/api/v1/enrichment/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"missing_compound_frequency":[["Shogaol",1]]`)
}

func TestHandler_RunMalformedReference(t *testing.T) {
	router := newTestRouter(t, stubCatalogue{{Summary: "nameless"}})

	w := serve(router, http.MethodPost, "/api/v1/enrichment/run", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, common.ErrCodeMalformedReference, resp.Code)
	assert.Contains(t, resp.Details, "compounds record 0")
}

func TestHandler_Preview(t *testing.T) {
	router := newTestRouter(t, stubCatalogue{{Name: "Gingerol"}})

	body := `{"ingredients": [
		{"id": 9, "name": "Turmeric", "attributes": {"key_compounds": {"value": ["Curcumin"]}}},
		{"id": 4, "name": "Ginger", "attributes": {"key_compounds": ["Gingerol"]}}
	]}`
	w := serve(router, http.MethodPost, "/api/v1/enrichment/preview", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result core.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Ginger", result.Records[0].Name)
	assert.Equal(t, []string{"Curcumin"}, result.Records[1].MissingCompounds)
	assert.Equal(t, 1, result.Report.IngredientsWithCompoundGaps)

	// 預覽不會成為最近一次批次
	w = serve(router, http.MethodGet, "/api/v1/enrichment/records", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_PreviewInvalid(t *testing.T) {
	router := newTestRouter(t, stubCatalogue{{Name: "Gingerol"}})

	var many strings.Builder
	many.WriteString(`{"ingredients": [`)
	for i := 0; i <= maxPreviewIngredients; i++ {
		if i > 0 {
			many.WriteString(",")
		}
		fmt.Fprintf(&many, `{"id": %d, "name": "item"}`, i)
	}
	many.WriteString(`]}`)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"missing ingredients", `{}`},
		{"too many", many.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodPost, "/api/v1/enrichment/preview", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)
		})
	}
}
