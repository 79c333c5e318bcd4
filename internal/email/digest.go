package email

import (
	"fmt"
	"html/template"

	"revenue_radar_backend/internal/engine/domain"
)

const maxDigestLeaks = 10

type digestLeak struct {
	Severity string
	Title    string
	Action   string
	Revenue  string
}

type digestData struct {
	HealthScore    int
	TotalLeaks     int
	CriticalLeaks  int
	TotalRevenue   string
	NextBestAction string
	Leaks          []digestLeak
	AINarrative    string
}

func newDigestData(report domain.FullReport) digestData {
	data := digestData{
		HealthScore:    report.HealthScore,
		TotalLeaks:     report.Leaks.Summary.Total,
		CriticalLeaks:  report.Leaks.Summary.BySeverity[domain.SeverityCritical],
		TotalRevenue:   fmt.Sprintf("$%.0f", report.Leaks.Summary.TotalEstimatedRevenue),
		NextBestAction: report.Actions.NextBestAction.Title,
		AINarrative:    report.Leaks.AINarrative,
	}
	for i, leak := range report.Leaks.Leaks {
		if i >= maxDigestLeaks {
			break
		}
		data.Leaks = append(data.Leaks, digestLeak{
			Severity: string(leak.Severity),
			Title:    leak.Title,
			Action:   leak.RecommendedAction,
			Revenue:  fmt.Sprintf("$%.0f", leak.EstimatedRevenue),
		})
	}
	return data
}

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1a1a2e; max-width: 640px; margin: 0 auto;">
  <h1 style="font-size: 20px;">Pipeline health: {{.HealthScore}}/100</h1>
  <p>
    {{.TotalLeaks}} leaks detected ({{.CriticalLeaks}} critical),
    an estimated {{.TotalRevenue}} of revenue exposed.
  </p>
  {{if .AINarrative}}<p style="font-style: italic;">{{.AINarrative}}</p>{{end}}
  {{if .NextBestAction}}<p><strong>Next best action:</strong> {{.NextBestAction}}</p>{{end}}
  {{if .Leaks}}
  <table style="width: 100%; border-collapse: collapse;">
    <tr style="text-align: left; border-bottom: 2px solid #ccc;">
      <th style="padding: 6px;">Severity</th>
      <th style="padding: 6px;">Finding</th>
      <th style="padding: 6px;">At stake</th>
    </tr>
    {{range .Leaks}}
    <tr style="border-bottom: 1px solid #eee;">
      <td style="padding: 6px;">{{.Severity}}</td>
      <td style="padding: 6px;">{{.Title}}<br><small>{{.Action}}</small></td>
      <td style="padding: 6px;">{{.Revenue}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>`))
