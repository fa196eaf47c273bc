package services

import (
	"testing"
	"time"

	"univida-claims/internal/core/domain"
)

func newAlertService() *AlertService {
	return NewAlertService(NewDeadlineService())
}

func findAlert(alerts []domain.Alert, kind domain.AlertKind) *domain.Alert {
	for i := range alerts {
		if alerts[i].Kind == kind {
			return &alerts[i]
		}
	}
	return nil
}

func TestSixtyDaySeverityThresholds(t *testing.T) {
	svc := newAlertService()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		daysElapsed  int
		wantAlert    bool
		wantSeverity domain.AlertSeverity
	}{
		{name: "quiet above the warning window", daysElapsed: 40, wantAlert: false},
		{name: "warning at fifteen days remaining", daysElapsed: 45, wantAlert: true, wantSeverity: domain.SeverityWarning},
		{name: "warning inside the window", daysElapsed: 50, wantAlert: true, wantSeverity: domain.SeverityWarning},
		{name: "critical at five days remaining", daysElapsed: 55, wantAlert: true, wantSeverity: domain.SeverityCritical},
		{name: "critical after expiry", daysElapsed: 61, wantAlert: true, wantSeverity: domain.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := domain.Claim{
				CaseCode:  "SIN-2025-0001",
				DeathDate: now.AddDate(0, 0, -tt.daysElapsed),
			}
			got := findAlert(svc.Refresh(claim, now, nil), domain.AlertDeadline60D)
			if !tt.wantAlert {
				if got != nil {
					t.Fatalf("unexpected alert: %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected an alert")
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSeverity)
			}
			if !got.AnchorAt.Equal(claim.DeathDate) {
				t.Errorf("anchor = %v, want %v", got.AnchorAt, claim.DeathDate)
			}
		})
	}
}

func TestSeventyTwoHourSeverityThreshold(t *testing.T) {
	svc := newAlertService()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		remaining time.Duration
		wantAlert bool
	}{
		{name: "quiet just above one day remaining", remaining: 24*time.Hour + time.Minute, wantAlert: false},
		{name: "critical just under one day remaining", remaining: 23*time.Hour + 59*time.Minute, wantAlert: true},
		{name: "critical after expiry", remaining: -time.Hour, wantAlert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signedAt := now.Add(tt.remaining - 72*time.Hour)
			claim := domain.Claim{CaseCode: "SIN-2025-0001", SignaturesReceivedAt: &signedAt}

			got := findAlert(svc.Refresh(claim, now, nil), domain.AlertDeadline72H)
			if tt.wantAlert != (got != nil) {
				t.Fatalf("alert = %+v, wantAlert %v", got, tt.wantAlert)
			}
			if got != nil && got.Severity != domain.SeverityCritical {
				t.Errorf("severity = %s, want %s", got.Severity, domain.SeverityCritical)
			}
		})
	}
}

func TestFifteenBusinessDayWarning(t *testing.T) {
	svc := newAlertService()
	sentAt := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC) // Monday, due Monday 2025-06-23

	t.Run("quiet with more than five business days left", func(t *testing.T) {
		claim := domain.Claim{CaseCode: "SIN-2025-0001", DeathDate: sentAt, SentToInsurerAt: &sentAt}
		now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
		if got := findAlert(svc.Refresh(claim, now, nil), domain.AlertDeadline15BD); got != nil {
			t.Fatalf("unexpected alert: %+v", got)
		}
	})

	t.Run("warning inside five business days", func(t *testing.T) {
		claim := domain.Claim{CaseCode: "SIN-2025-0001", DeathDate: sentAt, SentToInsurerAt: &sentAt}
		now := time.Date(2025, time.June, 17, 9, 0, 0, 0, time.UTC)
		got := findAlert(svc.Refresh(claim, now, nil), domain.AlertDeadline15BD)
		if got == nil {
			t.Fatal("expected an alert")
		}
		if got.Severity != domain.SeverityWarning {
			t.Errorf("severity = %s, want %s", got.Severity, domain.SeverityWarning)
		}
	})

	t.Run("warning after expiry without a liquidation", func(t *testing.T) {
		claim := domain.Claim{CaseCode: "SIN-2025-0001", DeathDate: sentAt, SentToInsurerAt: &sentAt}
		now := time.Date(2025, time.June, 25, 9, 0, 0, 0, time.UTC)
		got := findAlert(svc.Refresh(claim, now, nil), domain.AlertDeadline15BD)
		if got == nil || got.Severity != domain.SeverityWarning {
			t.Fatalf("alert = %+v, want a warning", got)
		}
	})
}

func TestRefreshIsIdempotent(t *testing.T) {
	svc := newAlertService()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	claim := domain.Claim{
		CaseCode:  "SIN-2025-0001",
		DeathDate: now.AddDate(0, 0, -50),
	}

	first := svc.Refresh(claim, now, nil)
	if len(first) != 1 {
		t.Fatalf("first refresh produced %d alerts, want 1", len(first))
	}

	second := svc.Refresh(claim, now, first)
	if len(second) != 1 {
		t.Fatalf("second refresh produced %d alerts, want 1", len(second))
	}
	if second[0].Kind != first[0].Kind || second[0].Severity != first[0].Severity {
		t.Errorf("second refresh changed the alert: %+v vs %+v", second[0], first[0])
	}
}

func TestRefreshUpdatesSeverityInPlace(t *testing.T) {
	svc := newAlertService()
	anchor := time.Date(2025, time.April, 13, 12, 0, 0, 0, time.UTC)
	claim := domain.Claim{CaseCode: "SIN-2025-0001", DeathDate: anchor}

	warningTime := anchor.AddDate(0, 0, 50)
	previous := svc.Refresh(claim, warningTime, nil)
	if previous[0].Severity != domain.SeverityWarning {
		t.Fatalf("setup: severity = %s, want WARNING", previous[0].Severity)
	}

	criticalTime := anchor.AddDate(0, 0, 56)
	got := svc.Refresh(claim, criticalTime, previous)
	if len(got) != 1 {
		t.Fatalf("got %d alerts, want 1", len(got))
	}
	if got[0].Severity != domain.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", got[0].Severity)
	}
	if got[0].Resolved {
		t.Error("in-place update resolved the alert")
	}
}

func TestResolvedAlertIsNotRecreated(t *testing.T) {
	svc := newAlertService()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	claim := domain.Claim{CaseCode: "SIN-2025-0001", DeathDate: now.AddDate(0, 0, -50)}

	previous := []domain.Alert{{
		CaseCode: claim.CaseCode,
		Kind:     domain.AlertDeadline60D,
		Severity: domain.SeverityWarning,
		AnchorAt: claim.DeathDate,
		Resolved: true,
	}}

	if got := svc.Refresh(claim, now, previous); len(got) != 0 {
		t.Errorf("resolved alert recreated: %+v", got)
	}
}

func TestResolvedAlertRecreatedOnAnchorReset(t *testing.T) {
	svc := newAlertService()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	claim := domain.Claim{CaseCode: "SIN-2025-0001", DeathDate: now.AddDate(0, 0, -50)}

	// The dismissal belongs to an earlier anchor, so it no longer applies
	previous := []domain.Alert{{
		CaseCode: claim.CaseCode,
		Kind:     domain.AlertDeadline60D,
		Severity: domain.SeverityWarning,
		AnchorAt: claim.DeathDate.AddDate(0, 0, -7),
		Resolved: true,
	}}

	got := svc.Refresh(claim, now, previous)
	if len(got) != 1 {
		t.Fatalf("got %d alerts, want 1", len(got))
	}
	if got[0].Resolved {
		t.Error("recreated alert came back resolved")
	}
	if !got[0].AnchorAt.Equal(claim.DeathDate) {
		t.Errorf("anchor = %v, want %v", got[0].AnchorAt, claim.DeathDate)
	}
}

func TestCompletedDeadlineRetiresAlert(t *testing.T) {
	svc := newAlertService()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	sentAt := now.Add(-time.Hour)
	claim := domain.Claim{
		CaseCode:        "SIN-2025-0001",
		DeathDate:       now.AddDate(0, 0, -50),
		SentToInsurerAt: &sentAt,
	}

	previous := []domain.Alert{{
		CaseCode: claim.CaseCode,
		Kind:     domain.AlertDeadline60D,
		Severity: domain.SeverityWarning,
		AnchorAt: claim.DeathDate,
	}}

	got := svc.Refresh(claim, now, previous)
	retired := findAlert(got, domain.AlertDeadline60D)
	if retired == nil {
		t.Fatal("expected a retirement instruction")
	}
	if !retired.Resolved {
		t.Error("leftover alert not resolved")
	}
}
