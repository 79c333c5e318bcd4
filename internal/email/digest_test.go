package email

import (
	"strings"
	"testing"

	"revenue_radar_backend/internal/engine/domain"
)

func TestRenderDigest(t *testing.T) {
	report := domain.FullReport{
		HealthScore: 45,
		Leaks: domain.LeakResult{
			Leaks: []domain.Leak{{
				Severity:          domain.SeverityCritical,
				Title:             `Deal "Acme rollout" has gone quiet`,
				RecommendedAction: "Re-engage the buyer",
				EstimatedRevenue:  50000,
			}},
			Summary: domain.LeakSummary{
				Total:                 1,
				BySeverity:            map[domain.Severity]int{domain.SeverityCritical: 1},
				TotalEstimatedRevenue: 50000,
			},
		},
		Actions: domain.ActionResult{
			NextBestAction: domain.Action{Title: "Call Jordan Vega"},
		},
	}

	html, err := renderDigest(report)
	if err != nil {
		t.Fatalf("renderDigest: %v", err)
	}

	for _, want := range []string{"45/100", "CRITICAL", "$50000", "Call Jordan Vega", "Re-engage the buyer"} {
		if !strings.Contains(html, want) {
			t.Fatalf("digest missing %q", want)
		}
	}
}

func TestRenderDigestCapsLeakRows(t *testing.T) {
	report := domain.FullReport{HealthScore: 80}
	for i := 0; i < 25; i++ {
		report.Leaks.Leaks = append(report.Leaks.Leaks, domain.Leak{
			Severity: domain.SeverityMedium, Title: "leak", EstimatedRevenue: 100,
		})
	}
	report.Leaks.Summary.Total = 25

	html, err := renderDigest(report)
	if err != nil {
		t.Fatalf("renderDigest: %v", err)
	}
	if got := strings.Count(html, "<td style"); got != maxDigestLeaks*3 {
		t.Fatalf("rendered %d cells, want %d rows of 3", got, maxDigestLeaks)
	}
}

func TestSenderDisabledWhenEmailOff(t *testing.T) {
	if s := NewSender(disabledEmailConfig{}); s != nil {
		t.Fatal("sender must be nil when email is disabled")
	}
}

type disabledEmailConfig struct{}

func (disabledEmailConfig) GetEmailEnabled() bool       { return false }
func (disabledEmailConfig) GetSMTPHost() string         { return "" }
func (disabledEmailConfig) GetSMTPPort() int            { return 0 }
func (disabledEmailConfig) GetSMTPUsername() string     { return "" }
func (disabledEmailConfig) GetSMTPPassword() string     { return "" }
func (disabledEmailConfig) GetEmailFromName() string    { return "" }
func (disabledEmailConfig) GetEmailFromAddress() string { return "" }
