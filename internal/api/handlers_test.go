package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aas-risk-engine/internal/coefficient"
	"github.com/aas-risk-engine/internal/config"
	"github.com/aas-risk-engine/internal/domain"
	"github.com/aas-risk-engine/internal/plugin"
	"github.com/aas-risk-engine/internal/scenario"
	"github.com/aas-risk-engine/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.PanicLevel)

	store, err := coefficient.NewStore(filepath.Join("..", "..", "config", "presets"), logger)
	require.NoError(t, err)
	engine := service.NewEngine(store, plugin.NewDefaultRegistry(logger), logger)

	cfg := &config.Config{}
	cfg.Server.RateLimitRPS = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Logging.Level = "error"

	return NewServer(cfg, engine, scenario.NewMemoryStore(), nil, logger)
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandleCalculate(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/calculate", service.HighRiskReferenceInput())
	require.Equal(t, http.StatusOK, w.Code)

	var record domain.RiskRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, domain.CategoryHighRisk, record.Category)
	assert.Equal(t, "moderate", record.Preset)
	assert.Len(t, record.Domains, len(domain.AllDomains))
}

func TestHandleCalculateErrors(t *testing.T) {
	server := newTestServer(t)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown compound", func(t *testing.T) {
		input := &domain.InputRecord{
			Regimen: domain.Regimen{Compounds: []domain.CompoundDose{
				{Compound: "mystery", WeeklyMg: 100, DurationWeeks: 10},
			}},
		}
		w := doJSON(t, server, http.MethodPost, "/api/v1/calculate", input)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unknown compound")
	})

	t.Run("unknown preset", func(t *testing.T) {
		input := &domain.InputRecord{Preset: "imaginary"}
		w := doJSON(t, server, http.MethodPost, "/api/v1/calculate", input)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleCompare(t *testing.T) {
	server := newTestServer(t)

	variant := service.HighRiskReferenceInput()
	variant.Interventions.StatinIntensity = domain.StatinHigh
	body := compareRequest{Base: service.HighRiskReferenceInput(), Variant: variant}

	w := doJSON(t, server, http.MethodPost, "/api/v1/compare", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Impact map[domain.Domain]domain.DomainImpact `json:"impact"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Greater(t, resp.Impact[domain.DomainASCVD].AbsoluteRiskReduction, 0.0)
}

func TestHandleListPresets(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "moderate")
	assert.Contains(t, w.Body.String(), "conservative")
	assert.Contains(t, w.Body.String(), "aggressive")
}

func TestScenarioLifecycle(t *testing.T) {
	server := newTestServer(t)

	sc := &scenario.Scenario{
		Name:  "api-test",
		Input: service.PhysiologicReferenceInput(),
	}

	w := doJSON(t, server, http.MethodPost, "/api/v1/scenarios", sc)
	require.Equal(t, http.StatusOK, w.Code)
	var saved scenario.Scenario
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)

	w = doJSON(t, server, http.MethodGet, "/api/v1/scenarios/"+saved.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/scenarios/"+saved.ID+"/calculate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var record domain.RiskRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, domain.CategoryPhysiologic, record.Category)

	w = doJSON(t, server, http.MethodGet, "/api/v1/scenarios/"+saved.ID+"/risk.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "ascvd,ASCVD,")

	w = doJSON(t, server, http.MethodPost, "/api/v1/scenarios/"+saved.ID+"/clone", cloneRequest{Name: "api-test-copy"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/scenarios?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(2), list.Total)

	w = doJSON(t, server, http.MethodDelete, "/api/v1/scenarios/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/scenarios/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenarioExportImport(t *testing.T) {
	server := newTestServer(t)

	sc := &scenario.Scenario{Name: "exported", Input: service.PhysiologicReferenceInput()}
	w := doJSON(t, server, http.MethodPost, "/api/v1/scenarios", sc)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/scenarios-export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	fresh := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scenarios-import", bytes.NewBuffer(exported))
	rec := httptest.NewRecorder()
	fresh.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":1`)
}

func TestRateLimit(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.PanicLevel)

	store, err := coefficient.NewStore(filepath.Join("..", "..", "config", "presets"), logger)
	require.NoError(t, err)
	engine := service.NewEngine(store, plugin.NewDefaultRegistry(logger), logger)

	cfg := &config.Config{}
	cfg.Server.RateLimitRPS = 1
	cfg.Server.RateLimitBurst = 2
	server := NewServer(cfg, engine, scenario.NewMemoryStore(), nil, logger)

	var limited bool
	for i := 0; i < 5; i++ {
		w := doJSON(t, server, http.MethodGet, "/health", nil)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "expected at least one 429 after burst")
}
