package ai

import (
	"strings"
	"testing"

	"github.com/floodwatch/flood-alert/internal/config"
	"github.com/floodwatch/flood-alert/internal/model"
)

func TestBuildSummaryPromptIncludesReportData(t *testing.T) {
	reports := []model.FloodReport{
		{
			Location:    model.Location{Lat: 6.9, Lng: 79.8, Address: "Kelaniya"},
			WaterLevel:  model.WaterSevere,
			Description: "houses under water",
		},
	}
	p := BuildSummaryPrompt(reports)
	for _, want := range []string{"Kelaniya", "severe", "houses under water", "emergency management"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildDailySummaryPromptCounts(t *testing.T) {
	counts := map[string]int{
		model.WaterLow: 2, model.WaterHigh: 1,
	}
	reports := []model.FloodReport{
		{Location: model.Location{Address: "Gampaha"}, WaterLevel: model.WaterHigh, Description: "rising fast"},
	}
	p := BuildDailySummaryPrompt(3, counts, []string{"Gampaha"}, reports)
	for _, want := range []string{"Total Reports: 3", "Low: 2", "High: 1", "Severe: 0", "High-Risk Areas: Gampaha", "- Gampaha: high level - rising fast"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildEmergencySMSPrompt(t *testing.T) {
	p := BuildEmergencySMSPrompt("Ratnapura", "severe", "english")
	for _, want := range []string{"Ratnapura", "severe", "160 characters"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	got := EmergencySMSPlaceholder("Galle", "high")
	if got != "FLOOD ALERT: HIGH flood in Galle. Evacuate immediately. Call 119." {
		t.Fatalf("unexpected sms placeholder: %q", got)
	}
	if len(got) > 160 {
		t.Fatalf("placeholder exceeds SMS length: %d", len(got))
	}

	daily := DailySummaryPlaceholder(4, nil)
	if !strings.Contains(daily, "Total reports: 4") || !strings.Contains(daily, "High-risk areas: None") {
		t.Fatalf("unexpected daily placeholder: %q", daily)
	}
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(config.Config{})
	if err != nil || p != nil {
		t.Fatalf("unconfigured: want nil provider, got %v, %v", p, err)
	}

	p, err = FromConfig(config.Config{AIProvider: "openai", AIAPIKey: "k"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := p.(*OpenAI); !ok {
		t.Fatalf("expected *OpenAI, got %T", p)
	}

	p, err = FromConfig(config.Config{AIProvider: "google", AIAPIKey: "k"})
	if err != nil {
		t.Fatalf("google: %v", err)
	}
	if _, ok := p.(*Gemini); !ok {
		t.Fatalf("expected *Gemini, got %T", p)
	}

	if _, err := FromConfig(config.Config{AIProvider: "skynet", AIAPIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
