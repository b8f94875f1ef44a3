package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aas-risk-engine/internal/domain"
	"github.com/aas-risk-engine/internal/scenario"
)

// compareRequest is the body of POST /api/v1/compare.
type compareRequest struct {
	Base    *domain.InputRecord `json:"base" binding:"required"`
	Variant *domain.InputRecord `json:"variant" binding:"required"`
}

// cloneRequest is the body of POST /api/v1/scenarios/:id/clone.
type cloneRequest struct {
	Name string `json:"name" binding:"required"`
}

// handleCalculate runs one risk calculation.
func (s *Server) handleCalculate(c *gin.Context) {
	var input domain.InputRecord
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if s.results != nil {
		if record, hit, err := s.results.Get(ctx, &input); err == nil && hit {
			c.JSON(http.StatusOK, record)
			return
		}
	}

	record, err := s.engine.Calculate(ctx, &input)
	if err != nil {
		s.renderError(c, err)
		return
	}

	if s.results != nil {
		if err := s.results.Set(ctx, &input, record); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"error":      err.Error(),
			}).Warn("Failed to cache risk record")
		}
	}

	c.JSON(http.StatusOK, record)
}

// handleCompare computes the per-domain impact of moving from a base
// input to a variant.
func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	impact, err := s.engine.CompareImpact(c.Request.Context(), req.Base, req.Variant)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"impact": impact})
}

// handleListPresets lists the available coefficient presets.
func (s *Server) handleListPresets(c *gin.Context) {
	names, err := s.engine.Presets()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": names})
}

// handleSaveScenario creates or updates a named scenario.
func (s *Server) handleSaveScenario(c *gin.Context) {
	var sc scenario.Scenario
	if err := c.ShouldBindJSON(&sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := s.scenarios.Save(c.Request.Context(), &sc); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// handleListScenarios lists scenarios with pagination.
func (s *Server) handleListScenarios(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ctx := c.Request.Context()
	list, err := s.scenarios.List(ctx, limit, offset)
	if err != nil {
		s.renderError(c, err)
		return
	}
	count, err := s.scenarios.Count(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scenarios": list,
		"total":     count,
	})
}

// handleGetScenario fetches one scenario by id.
func (s *Server) handleGetScenario(c *gin.Context) {
	sc, err := s.scenarios.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if sc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}
	c.JSON(http.StatusOK, sc)
}

// handleDeleteScenario removes a scenario by id.
func (s *Server) handleDeleteScenario(c *gin.Context) {
	if err := s.scenarios.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleCloneScenario copies a scenario under a new name.
func (s *Server) handleCloneScenario(c *gin.Context) {
	var req cloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	clone, err := scenario.Clone(c.Request.Context(), s.scenarios, c.Param("id"), req.Name)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, clone)
}

// handleCalculateScenario runs the engine over a stored scenario.
func (s *Server) handleCalculateScenario(c *gin.Context) {
	ctx := c.Request.Context()
	sc, err := s.scenarios.Get(ctx, c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if sc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}

	record, err := s.engine.Calculate(ctx, sc.Input)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleScenarioRiskCSV runs the engine over a stored scenario and
// renders the per-domain risk table as CSV.
func (s *Server) handleScenarioRiskCSV(c *gin.Context) {
	ctx := c.Request.Context()
	sc, err := s.scenarios.Get(ctx, c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if sc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}

	record, err := s.engine.Calculate(ctx, sc.Input)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="risk_table.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"domain", "name", "baseline", "absolute_risk", "relative_risk", "event_free_years", "category", "saturated"})
	for _, d := range domain.AllDomains {
		dr, ok := record.Domains[d]
		if !ok {
			continue
		}
		_ = w.Write([]string{
			d.String(),
			d.DisplayName(),
			strconv.FormatFloat(dr.Baseline, 'f', 4, 64),
			strconv.FormatFloat(dr.AbsoluteRisk, 'f', 4, 64),
			strconv.FormatFloat(dr.RelativeRisk, 'f', 4, 64),
			strconv.FormatFloat(dr.EventFreeYears, 'f', 2, 64),
			dr.Category.String(),
			strconv.FormatBool(dr.Saturated),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.WithField("error", err.Error()).Error("CSV export failed")
	}
}

// handleExportScenarios streams all scenarios as a JSON envelope.
func (s *Server) handleExportScenarios(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="scenarios.json"`)
	if err := s.scenarios.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		s.log.WithField("error", err.Error()).Error("Scenario export failed")
	}
}

// handleImportScenarios reads a JSON envelope, skipping name clashes.
func (s *Server) handleImportScenarios(c *gin.Context) {
	imported, skipped, err := s.scenarios.ImportJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"skipped":  skipped,
	})
}

// renderError maps engine errors onto HTTP statuses.
func (s *Server) renderError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, domain.ErrUnknownCompound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownPreset):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCoefficient):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		s.log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
