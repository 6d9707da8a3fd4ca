package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/floodwatch/flood-alert/internal/ai"
	"github.com/floodwatch/flood-alert/internal/model"
)

type fakeAIReports struct {
	recent []model.FloodReport
	today  []model.FloodReport
}

func (f *fakeAIReports) Recent(_ context.Context, limit int) ([]model.FloodReport, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeAIReports) Today(_ context.Context) ([]model.FloodReport, error) {
	return f.today, nil
}

type staticProvider struct{ text string }

func (s staticProvider) Generate(_ context.Context, _ string, _ int) (string, error) {
	return s.text, nil
}

func TestAISummaryPlaceholderWhenUnconfigured(t *testing.T) {
	e := newEcho()
	h := &AIHandler{Reports: &fakeAIReports{recent: []model.FloodReport{
		{Location: model.Location{Address: "Kelaniya"}, WaterLevel: model.WaterHigh, Description: "x"},
	}}}

	c, rec := newContext(t, e, http.MethodPost, "/api/ai/summary", "", 1, model.RoleAdmin)
	if err := h.Summary(c); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Summary         string `json:"summary"`
			ReportsAnalyzed int    `json:"reportsAnalyzed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Summary != ai.NotConfiguredMessage {
		t.Fatalf("summary = %q, want placeholder", env.Data.Summary)
	}
	if env.Data.ReportsAnalyzed != 1 {
		t.Fatalf("reportsAnalyzed = %d, want 1", env.Data.ReportsAnalyzed)
	}
}

func TestAISummaryNoReports(t *testing.T) {
	e := newEcho()
	h := &AIHandler{Reports: &fakeAIReports{}, Provider: staticProvider{text: "should not be used"}}

	c, rec := newContext(t, e, http.MethodPost, "/api/ai/summary", "", 1, model.RoleAdmin)
	if err := h.Summary(c); err != nil {
		t.Fatalf("summary: %v", err)
	}
	var env struct {
		Data struct {
			Summary string `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Summary != "No flood reports available for analysis." {
		t.Fatalf("summary = %q", env.Data.Summary)
	}
}

func TestAIDailySummaryStatistics(t *testing.T) {
	e := newEcho()
	h := &AIHandler{
		Reports: &fakeAIReports{today: []model.FloodReport{
			{Location: model.Location{Address: "Gampaha"}, WaterLevel: model.WaterSevere, Description: "a"},
			{Location: model.Location{Address: "Gampaha"}, WaterLevel: model.WaterHigh, Description: "b"},
			{Location: model.Location{Address: "Matara"}, WaterLevel: model.WaterLow, Description: "c"},
		}},
		Provider: staticProvider{text: "generated assessment"},
	}

	c, rec := newContext(t, e, http.MethodGet, "/api/ai/daily-summary", "", 1, model.RoleAdmin)
	if err := h.DailySummary(c); err != nil {
		t.Fatalf("daily summary: %v", err)
	}

	var env struct {
		Data struct {
			Summary         string         `json:"summary"`
			Statistics      map[string]int `json:"statistics"`
			HighRiskAreas   []string       `json:"highRiskAreas"`
			ReportsCount    int            `json:"reportsCount"`
			OverallSeverity string         `json:"overallSeverity"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Summary != "generated assessment" {
		t.Fatalf("summary = %q", env.Data.Summary)
	}
	if env.Data.ReportsCount != 3 || env.Data.OverallSeverity != "Severe" {
		t.Fatalf("counts: %+v", env.Data)
	}
	if len(env.Data.HighRiskAreas) != 1 || env.Data.HighRiskAreas[0] != "Gampaha" {
		t.Fatalf("high risk areas = %v, want [Gampaha] deduplicated", env.Data.HighRiskAreas)
	}
	if env.Data.Statistics[model.WaterSevere] != 1 || env.Data.Statistics[model.WaterLow] != 1 {
		t.Fatalf("statistics = %v", env.Data.Statistics)
	}
}

func TestAIEmergencyMessageValidation(t *testing.T) {
	e := newEcho()
	h := &AIHandler{Reports: &fakeAIReports{}}

	c, rec := newContext(t, e, http.MethodPost, "/api/ai/emergency-message", `{"area":"Galle"}`, 1, model.RoleAdmin)
	if err := h.EmergencyMessage(c); err != nil {
		t.Fatalf("emergency message: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing severity status = %d, want 400", rec.Code)
	}

	c, rec = newContext(t, e, http.MethodPost, "/api/ai/emergency-message", `{"area":"Galle","severity":"high"}`, 1, model.RoleAdmin)
	if err := h.EmergencyMessage(c); err != nil {
		t.Fatalf("emergency message: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var env struct {
		Data struct {
			Message        string `json:"message"`
			CharacterCount int    `json:"characterCount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Message == "" || env.Data.CharacterCount != len(env.Data.Message) {
		t.Fatalf("placeholder message: %+v", env.Data)
	}
}
