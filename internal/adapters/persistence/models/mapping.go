package models

import (
	"univida-claims/internal/core/domain"
)

// ToDomain converts a persisted claim (with relations preloaded) into the
// immutable snapshot the core operates on
func (m *Claim) ToDomain() domain.Claim {
	claim := domain.Claim{
		CaseCode:             m.CaseCode,
		Type:                 domain.ClaimType(m.ClaimType),
		State:                domain.ClaimState(m.State),
		DeathDate:            m.DeathDate,
		ReportDate:           m.ReportDate,
		SentToInsurerAt:      m.SentToInsurerAt,
		SignaturesReceivedAt: m.SignaturesReceivedAt,
		LiquidationDate:      m.LiquidationDate,
		PaymentDate:          m.PaymentDate,
		ClosedAt:             m.ClosedAt,
		SixtyDayDeadlineMet:  m.SixtyDayDeadlineMet,
		Version:              m.Version,
	}
	if m.InvalidReason != nil {
		claim.InvalidReason = *m.InvalidReason
	}

	claim.Documents = make([]domain.Document, 0, len(m.Documents))
	for _, d := range m.Documents {
		doc := domain.Document{
			Type:     domain.DocumentType(d.DocType),
			Required: d.Required,
			Status:   domain.DocumentStatus(d.Status),
		}
		if d.RejectReason != nil {
			doc.RejectReason = *d.RejectReason
		}
		claim.Documents = append(claim.Documents, doc)
	}

	claim.Beneficiaries = make([]domain.Beneficiary, 0, len(m.Beneficiaries))
	for _, b := range m.Beneficiaries {
		claim.Beneficiaries = append(claim.Beneficiaries, domain.Beneficiary{
			FullName:        b.FullName,
			PercentageShare: b.PercentageShare,
			SignatureStatus: domain.SignatureStatus(b.SignatureStatus),
		})
	}

	if m.Liquidation != nil {
		liq := domain.Liquidation{
			Status: domain.LiquidationStatus(m.Liquidation.Status),
			Amount: m.Liquidation.Amount,
		}
		if m.Liquidation.InsurerNotes != nil {
			liq.InsurerNotes = *m.Liquidation.InsurerNotes
		}
		claim.Liquidation = &liq
	}

	if m.Payment != nil {
		claim.Payment = &domain.Payment{Status: domain.PaymentStatus(m.Payment.Status)}
	}

	return claim
}

// ApplyDomain writes a core snapshot back onto the persisted row. Relation
// rows are rebuilt by the repository; only claim-level fields are set here.
func (m *Claim) ApplyDomain(claim domain.Claim) {
	m.CaseCode = claim.CaseCode
	m.ClaimType = string(claim.Type)
	m.State = string(claim.State)
	m.DeathDate = claim.DeathDate
	m.ReportDate = claim.ReportDate
	m.SentToInsurerAt = claim.SentToInsurerAt
	m.SignaturesReceivedAt = claim.SignaturesReceivedAt
	m.LiquidationDate = claim.LiquidationDate
	m.PaymentDate = claim.PaymentDate
	m.ClosedAt = claim.ClosedAt
	m.SixtyDayDeadlineMet = claim.SixtyDayDeadlineMet
	if claim.InvalidReason != "" {
		reason := claim.InvalidReason
		m.InvalidReason = &reason
	}
}

// DocumentRows builds relation rows for a snapshot's documents
func DocumentRows(claimID uint, claim domain.Claim) []ClaimDocument {
	rows := make([]ClaimDocument, 0, len(claim.Documents))
	for _, d := range claim.Documents {
		row := ClaimDocument{
			ClaimID:  claimID,
			DocType:  string(d.Type),
			Required: d.Required,
			Status:   string(d.Status),
		}
		if d.RejectReason != "" {
			reason := d.RejectReason
			row.RejectReason = &reason
		}
		rows = append(rows, row)
	}
	return rows
}

// BeneficiaryRows builds relation rows for a snapshot's beneficiaries
func BeneficiaryRows(claimID uint, claim domain.Claim) []ClaimBeneficiary {
	rows := make([]ClaimBeneficiary, 0, len(claim.Beneficiaries))
	for _, b := range claim.Beneficiaries {
		rows = append(rows, ClaimBeneficiary{
			ClaimID:         claimID,
			FullName:        b.FullName,
			PercentageShare: b.PercentageShare,
			SignatureStatus: string(b.SignatureStatus),
		})
	}
	return rows
}

// AlertToRow converts a core alert instruction to its persisted form
func AlertToRow(a domain.Alert) ClaimAlert {
	return ClaimAlert{
		CaseCode: a.CaseCode,
		Kind:     string(a.Kind),
		Severity: string(a.Severity),
		Message:  a.Message,
		DueAt:    a.DueAt,
		AnchorAt: a.AnchorAt,
		Resolved: a.Resolved,
	}
}

// AlertToDomain converts a persisted alert to the core value object
func (a *ClaimAlert) ToDomain() domain.Alert {
	return domain.Alert{
		CaseCode: a.CaseCode,
		Kind:     domain.AlertKind(a.Kind),
		Severity: domain.AlertSeverity(a.Severity),
		Message:  a.Message,
		DueAt:    a.DueAt,
		AnchorAt: a.AnchorAt,
		Resolved: a.Resolved,
	}
}

// AlertsToDomain converts persisted alert rows to core value objects
func AlertsToDomain(rows []ClaimAlert) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(rows))
	for i := range rows {
		alerts = append(alerts, rows[i].ToDomain())
	}
	return alerts
}

// AuditToRow converts a core audit event to its persisted form
func AuditToRow(e domain.AuditEvent) AuditEvent {
	return AuditEvent{
		EventID:   e.ID,
		CaseCode:  e.CaseCode,
		Actor:     e.Actor,
		Action:    e.Action,
		Detail:    e.Detail,
		Timestamp: e.Timestamp,
	}
}

// ToDomain converts a persisted audit event back to the core value object
func (e *AuditEvent) ToDomain() domain.AuditEvent {
	return domain.AuditEvent{
		ID:        e.EventID,
		CaseCode:  e.CaseCode,
		Actor:     e.Actor,
		Action:    e.Action,
		Detail:    e.Detail,
		Timestamp: e.Timestamp,
	}
}
