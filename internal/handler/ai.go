package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/ai"
	"github.com/floodwatch/flood-alert/internal/model"
)

// AIReportSource feeds report data into the prompt builders.
type AIReportSource interface {
	Recent(ctx context.Context, limit int) ([]model.FloodReport, error)
	Today(ctx context.Context) ([]model.FloodReport, error)
}

// AIHandler serves the text generation endpoints. Provider may be nil, in
// which case every endpoint answers with its placeholder text instead of
// failing, so the admin UI works on deployments without an API key.
type AIHandler struct {
	Reports  AIReportSource
	Provider ai.Provider
}

func NewAIHandler(rep AIReportSource, p ai.Provider) *AIHandler {
	return &AIHandler{Reports: rep, Provider: p}
}

type warningReq struct {
	Area            string `json:"area" validate:"required,max=150"`
	Severity        string `json:"severity" validate:"required,max=50"`
	SpecificDetails string `json:"specificDetails"`
}

type emergencyReq struct {
	Area     string `json:"area" validate:"required,max=150"`
	Severity string `json:"severity" validate:"required,max=50"`
	Language string `json:"language"`
}

// generate runs the provider or falls back to the given placeholder.
func (h *AIHandler) generate(ctx context.Context, prompt string, maxTokens int, placeholder string) (string, error) {
	if h.Provider == nil {
		return placeholder, nil
	}
	return h.Provider.Generate(ctx, prompt, maxTokens)
}

// Summary analyzes the 50 most recent reports.
func (h *AIHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	reports, err := h.Reports.Recent(ctx, 50)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load reports failed")
	}
	if len(reports) == 0 {
		return respondOK(c, http.StatusOK, echo.Map{
			"summary": "No flood reports available for analysis.",
		})
	}

	text, err := h.generate(ctx, ai.BuildSummaryPrompt(reports), 500, ai.NotConfiguredMessage)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "failed to generate summary")
	}
	return respondOK(c, http.StatusOK, echo.Map{
		"summary":         text,
		"reportsAnalyzed": len(reports),
		"generatedAt":     time.Now().UTC(),
	})
}

// WarningMessage drafts a public broadcast warning for one area.
func (h *AIHandler) WarningMessage(c echo.Context) error {
	var req warningReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "area and severity are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	text, err := h.generate(ctx, ai.BuildWarningPrompt(req.Area, req.Severity, req.SpecificDetails), 300, ai.NotConfiguredMessage)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "failed to generate warning message")
	}
	return respondOK(c, http.StatusOK, echo.Map{
		"message":     text,
		"generatedAt": time.Now().UTC(),
	})
}

// DailySummary assesses today's reports, with severity statistics and the
// list of high-risk areas computed locally so they are exact even when the
// generated text is a placeholder.
func (h *AIHandler) DailySummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	reports, err := h.Reports.Today(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load reports failed")
	}
	if len(reports) == 0 {
		return respondOK(c, http.StatusOK, echo.Map{
			"summary":         "No flood reports recorded today.",
			"reportsCount":    0,
			"highRiskAreas":   []string{},
			"overallSeverity": "None",
		})
	}

	counts := map[string]int{}
	seen := map[string]bool{}
	highRiskAreas := []string{}
	for _, r := range reports {
		counts[r.WaterLevel]++
		if r.WaterLevel == model.WaterHigh || r.WaterLevel == model.WaterSevere {
			if !seen[r.Location.Address] {
				seen[r.Location.Address] = true
				highRiskAreas = append(highRiskAreas, r.Location.Address)
			}
		}
	}

	prompt := ai.BuildDailySummaryPrompt(len(reports), counts, highRiskAreas, reports)
	text, err := h.generate(ctx, prompt, 600, ai.DailySummaryPlaceholder(len(reports), highRiskAreas))
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "failed to generate daily summary")
	}

	overall := "Low"
	switch {
	case counts[model.WaterSevere] > 0:
		overall = "Severe"
	case counts[model.WaterHigh] > 0:
		overall = "High"
	case counts[model.WaterMedium] > 0:
		overall = "Medium"
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"summary":         text,
		"statistics":      counts,
		"highRiskAreas":   highRiskAreas,
		"reportsCount":    len(reports),
		"overallSeverity": overall,
		"generatedAt":     time.Now().UTC(),
	})
}

// EmergencyMessage drafts a message fitting in a single SMS.
func (h *AIHandler) EmergencyMessage(c echo.Context) error {
	var req emergencyReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "area and severity are required")
	}
	if req.Language == "" {
		req.Language = "english"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	prompt := ai.BuildEmergencySMSPrompt(req.Area, req.Severity, req.Language)
	text, err := h.generate(ctx, prompt, 100, ai.EmergencySMSPlaceholder(req.Area, req.Severity))
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "failed to generate emergency message")
	}
	return respondOK(c, http.StatusOK, echo.Map{
		"message":        text,
		"characterCount": len(text),
		"area":           req.Area,
		"severity":       req.Severity,
		"generatedAt":    time.Now().UTC(),
	})
}
