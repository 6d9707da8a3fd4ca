package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/floodwatch/flood-alert/internal/model"
)

// reportBrief is the per-report slice of fields handed to the model. Full
// rows carry user IDs and image paths the prompt has no use for.
type reportBrief struct {
	Location    string    `json:"location"`
	WaterLevel  string    `json:"waterLevel"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// BuildSummaryPrompt asks for a management-level overview of recent reports.
func BuildSummaryPrompt(reports []model.FloodReport) string {
	briefs := make([]reportBrief, 0, len(reports))
	for _, r := range reports {
		briefs = append(briefs, reportBrief{
			Location:    r.Location.Address,
			WaterLevel:  r.WaterLevel,
			Description: r.Description,
			Timestamp:   r.CreatedAt,
		})
	}
	data, _ := json.MarshalIndent(briefs, "", "  ")
	return fmt.Sprintf(`Analyze the following flood situation reports from Sri Lanka and provide a comprehensive summary including:
1. Overall severity assessment
2. Most affected areas
3. Recommended actions and warnings
4. Key patterns or trends

Reports data:
%s

Please provide a concise but informative summary suitable for emergency management.`, data)
}

// BuildWarningPrompt asks for a public broadcast warning for one area.
func BuildWarningPrompt(area, severity, details string) string {
	if details == "" {
		details = "None provided"
	}
	return fmt.Sprintf(`Generate a clear and urgent warning message for residents of %s regarding a %s flood situation.
Additional context: %s

The message should:
1. Be in English and suitable for public broadcast
2. Include safety instructions
3. Mention evacuation if necessary
4. Provide emergency contact information template
5. Be concise (under 200 words)`, area, severity, details)
}

// BuildDailySummaryPrompt asks for an assessment of today's reports given
// precomputed severity counts and the high-risk area list.
func BuildDailySummaryPrompt(total int, counts map[string]int, highRiskAreas []string, recent []model.FloodReport) string {
	areas := strings.Join(highRiskAreas, ", ")
	if areas == "" {
		areas = "None"
	}
	var details strings.Builder
	for i, r := range recent {
		if i == 10 {
			break
		}
		fmt.Fprintf(&details, "- %s: %s level - %s\n", r.Location.Address, r.WaterLevel, r.Description)
	}
	return fmt.Sprintf(`You are a disaster management AI analyzing today's flood situation in Sri Lanka.

Today's Flood Report Statistics:
- Total Reports: %d
- Low: %d
- Medium: %d
- High: %d
- Severe: %d

High-Risk Areas: %s

Recent Report Details:
%s
Please provide:
1. Overall flood condition assessment (one sentence)
2. High-risk areas and warnings (bullet points)
3. Recommended immediate actions for authorities
4. Safety advice for residents

Keep it concise and actionable.`,
		total,
		counts[model.WaterLow], counts[model.WaterMedium], counts[model.WaterHigh], counts[model.WaterSevere],
		areas, details.String())
}

// BuildEmergencySMSPrompt asks for a message fitting in a single SMS.
func BuildEmergencySMSPrompt(area, severity, language string) string {
	return fmt.Sprintf(`Generate a SHORT emergency SMS message (max 160 characters) for:
Area: %s
Flood Severity: %s
Language: %s

Requirements:
- Must be under 160 characters (SMS limit)
- Clear and urgent
- Include safety action
- No special formatting

Example format: "FLOOD ALERT: High water in [area]. Evacuate to higher ground. Call 119 for help."`, area, severity, language)
}

// DailySummaryPlaceholder is the fallback body when no provider is set up.
func DailySummaryPlaceholder(total int, highRiskAreas []string) string {
	areas := strings.Join(highRiskAreas, ", ")
	if areas == "" {
		areas = "None"
	}
	return fmt.Sprintf("Daily Summary (AI not configured):\nTotal reports: %d\nHigh-risk areas: %s", total, areas)
}

// EmergencySMSPlaceholder is the fallback SMS when no provider is set up.
func EmergencySMSPlaceholder(area, severity string) string {
	return fmt.Sprintf("FLOOD ALERT: %s flood in %s. Evacuate immediately. Call 119.", strings.ToUpper(severity), area)
}
