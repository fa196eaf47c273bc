package services

import (
	"fmt"
	"time"

	"univida-claims/internal/core/domain"
)

// Severity thresholds, per the regulatory alerting rules
const (
	sixtyDayWarningDays  = 15
	sixtyDayCriticalDays = 5
	fifteenBDWarningDays = 5
	paymentCriticalUnder = 24 * time.Hour
)

// AlertService maps remaining deadline time to alert severities and produces
// upsert instructions keyed by (case code, kind). Refresh is idempotent: the
// same snapshot and now always yield the same instructions, and an unresolved
// alert of a kind is updated in place, never duplicated.
type AlertService struct {
	deadlines *DeadlineService
}

// NewAlertService creates a new alert service
func NewAlertService(deadlines *DeadlineService) *AlertService {
	return &AlertService{deadlines: deadlines}
}

// Refresh derives the current deadline alerts for a claim and merges them
// with the previously persisted ones. The returned alerts are upsert
// instructions for the caller; alerts of non-deadline kinds are untouched.
//
// A resolved alert of a kind is never recreated unless the deadline anchor
// it was derived from has changed. An unresolved alert whose deadline has
// completed is returned resolved so the caller can retire it.
func (s *AlertService) Refresh(claim domain.Claim, now time.Time, previous []domain.Alert) []domain.Alert {
	set := s.deadlines.Compute(claim, now)

	prevByKind := make(map[domain.AlertKind]domain.Alert, len(previous))
	for _, a := range previous {
		prevByKind[a.Kind] = a
	}

	var out []domain.Alert
	out = appendAlert(out, prevByKind, s.sixtyDayAlert(claim, set.SixtyDay), domain.AlertDeadline60D)
	out = appendAlert(out, prevByKind, s.fifteenBDAlert(claim, set.FifteenBusinessDay), domain.AlertDeadline15BD)
	out = appendAlert(out, prevByKind, s.seventyTwoHourAlert(claim, set.SeventyTwoHour), domain.AlertDeadline72H)
	return out
}

// appendAlert merges one desired alert with the previous record of its kind
func appendAlert(out []domain.Alert, prev map[domain.AlertKind]domain.Alert, desired *domain.Alert, kind domain.AlertKind) []domain.Alert {
	existing, had := prev[kind]

	if desired == nil {
		// Deadline quiet or completed: retire a leftover unresolved alert
		if had && !existing.Resolved {
			existing.Resolved = true
			out = append(out, existing)
		}
		return out
	}

	if had {
		if existing.Resolved {
			// User dismissal is terminal unless the anchor was reset
			if existing.AnchorAt.Equal(desired.AnchorAt) {
				return out
			}
			return append(out, *desired)
		}
		// Update in place: same (claim, kind) identity, new urgency
		existing.Severity = desired.Severity
		existing.Message = desired.Message
		existing.DueAt = desired.DueAt
		existing.AnchorAt = desired.AnchorAt
		return append(out, existing)
	}
	return append(out, *desired)
}

// sixtyDayAlert: >15 days remaining is below the noise floor; no alert
func (s *AlertService) sixtyDayAlert(claim domain.Claim, st DeadlineStatus) *domain.Alert {
	switch st.State {
	case DeadlineExpired:
		return &domain.Alert{
			CaseCode: claim.CaseCode,
			Kind:     domain.AlertDeadline60D,
			Severity: domain.SeverityCritical,
			Message:  "60-day report deadline expired; claim is locked pending reopening",
			DueAt:    st.DueAt,
			AnchorAt: claim.DeathDate,
		}
	case DeadlineRunning:
		var severity domain.AlertSeverity
		switch {
		case st.RemainingDays <= sixtyDayCriticalDays:
			severity = domain.SeverityCritical
		case st.RemainingDays <= sixtyDayWarningDays:
			severity = domain.SeverityWarning
		default:
			return nil
		}
		return &domain.Alert{
			CaseCode: claim.CaseCode,
			Kind:     domain.AlertDeadline60D,
			Severity: severity,
			Message:  fmt.Sprintf("%d day(s) left to send the expedient to the insurer", st.RemainingDays),
			DueAt:    st.DueAt,
			AnchorAt: claim.DeathDate,
		}
	}
	return nil
}

// fifteenBDAlert: WARNING within 5 business days; no stricter tier defined
func (s *AlertService) fifteenBDAlert(claim domain.Claim, st DeadlineStatus) *domain.Alert {
	switch st.State {
	case DeadlineExpired:
		return &domain.Alert{
			CaseCode: claim.CaseCode,
			Kind:     domain.AlertDeadline15BD,
			Severity: domain.SeverityWarning,
			Message:  "insurer response deadline passed without a liquidation",
			DueAt:    st.DueAt,
			AnchorAt: *claim.SentToInsurerAt,
		}
	case DeadlineRunning:
		if st.RemainingBusinessDays > fifteenBDWarningDays {
			return nil
		}
		return &domain.Alert{
			CaseCode: claim.CaseCode,
			Kind:     domain.AlertDeadline15BD,
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("%d business day(s) left for the insurer response", st.RemainingBusinessDays),
			DueAt:    st.DueAt,
			AnchorAt: *claim.SentToInsurerAt,
		}
	}
	return nil
}

// seventyTwoHourAlert: CRITICAL inside the final 24 hours
func (s *AlertService) seventyTwoHourAlert(claim domain.Claim, st DeadlineStatus) *domain.Alert {
	switch st.State {
	case DeadlineExpired:
		return &domain.Alert{
			CaseCode: claim.CaseCode,
			Kind:     domain.AlertDeadline72H,
			Severity: domain.SeverityCritical,
			Message:  "72-hour payment deadline passed without an executed payment",
			DueAt:    st.DueAt,
			AnchorAt: *claim.SignaturesReceivedAt,
		}
	case DeadlineRunning:
		if st.Remaining >= paymentCriticalUnder {
			return nil
		}
		return &domain.Alert{
			CaseCode: claim.CaseCode,
			Kind:     domain.AlertDeadline72H,
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("less than %d hour(s) left to execute the payment", int(st.Remaining.Hours())+1),
			DueAt:    st.DueAt,
			AnchorAt: *claim.SignaturesReceivedAt,
		}
	}
	return nil
}
