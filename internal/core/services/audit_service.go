package services

import (
	"time"

	"univida-claims/internal/core/domain"

	"github.com/google/uuid"
)

// AuditService builds immutable audit events. One event is produced per
// accepted mutation; events are never edited or deleted once appended, and
// the persistence layer reads them back in append order.
type AuditService struct{}

// NewAuditService creates a new audit service
func NewAuditService() *AuditService {
	return &AuditService{}
}

// NewEvent builds the audit record for an accepted mutation
func (s *AuditService) NewEvent(caseCode, action string, actor domain.Actor, detail string, now time.Time) domain.AuditEvent {
	return domain.AuditEvent{
		ID:        uuid.NewString(),
		CaseCode:  caseCode,
		Actor:     actor.Name,
		Action:    action,
		Detail:    detail,
		Timestamp: now,
	}
}
