package services

import (
	"testing"
	"time"

	"univida-claims/internal/core/domain"
)

func TestNewEvent(t *testing.T) {
	svc := NewAuditService()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	actor := domain.Actor{Name: "ana.quispe", Role: domain.RoleOperator}

	event := svc.NewEvent("SIN-2025-0001", domain.ActionStateChanged, actor, "RECEIVED -> VALIDATING", now)

	if event.ID == "" {
		t.Error("event has no id")
	}
	if event.CaseCode != "SIN-2025-0001" {
		t.Errorf("case code = %s", event.CaseCode)
	}
	if event.Actor != "ana.quispe" {
		t.Errorf("actor = %s", event.Actor)
	}
	if event.Action != domain.ActionStateChanged {
		t.Errorf("action = %s", event.Action)
	}
	if !event.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", event.Timestamp, now)
	}

	second := svc.NewEvent("SIN-2025-0001", domain.ActionStateChanged, actor, "RECEIVED -> VALIDATING", now)
	if second.ID == event.ID {
		t.Error("two events share an id")
	}
}
