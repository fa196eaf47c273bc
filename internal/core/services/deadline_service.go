package services

import (
	"math"
	"time"

	"univida-claims/internal/core/domain"
)

// DeadlineState represents where a regulatory clock stands
type DeadlineState string

const (
	DeadlineNotStarted DeadlineState = "NOT_STARTED"
	DeadlineRunning    DeadlineState = "RUNNING"
	DeadlineCompleted  DeadlineState = "COMPLETED"
	DeadlineExpired    DeadlineState = "EXPIRED"
)

// DeadlineStatus is the computed position of one clock at a given instant
type DeadlineStatus struct {
	State     DeadlineState `json:"state"`
	DueAt     time.Time     `json:"due_at,omitempty"`
	Remaining time.Duration `json:"-"`
	// RemainingDays is the wall-clock remainder floored to whole days
	// (meaningful for the 60-day clock)
	RemainingDays int `json:"remaining_days"`
	// RemainingBusinessDays counts Mon-Fri days left (15-business-day clock)
	RemainingBusinessDays int `json:"remaining_business_days,omitempty"`
}

// DeadlineSet groups the three independent regulatory clocks of a claim
type DeadlineSet struct {
	SixtyDay           DeadlineStatus `json:"sixty_day"`
	FifteenBusinessDay DeadlineStatus `json:"fifteen_business_day"`
	SeventyTwoHour     DeadlineStatus `json:"seventy_two_hour"`
}

// DeadlineService computes the three regulatory deadlines. Pure functions:
// identical snapshot and now always produce identical results, so the lazy
// on-read path and the cron sweep share these methods with no duplicate logic.
type DeadlineService struct{}

// NewDeadlineService creates a new deadline service
func NewDeadlineService() *DeadlineService {
	return &DeadlineService{}
}

// Compute evaluates all three clocks against the same instant
func (s *DeadlineService) Compute(claim domain.Claim, now time.Time) DeadlineSet {
	return DeadlineSet{
		SixtyDay:           s.SixtyDay(claim, now),
		FifteenBusinessDay: s.FifteenBusinessDay(claim, now),
		SeventyTwoHour:     s.SeventyTwoHour(claim, now),
	}
}

// SixtyDay is the 60-calendar-day report deadline anchored on the death date.
// Completed once the expedient is sent to the insurer; until then the claim
// expires when the remaining whole days reach zero.
func (s *DeadlineService) SixtyDay(claim domain.Claim, now time.Time) DeadlineStatus {
	due := claim.DeathDate.AddDate(0, 0, 60)

	if claim.SixtyDayDeadlineMet || claim.SentToInsurerAt != nil {
		return DeadlineStatus{State: DeadlineCompleted, DueAt: due}
	}

	remaining := due.Sub(now)
	days := int(math.Floor(remaining.Hours() / 24))
	if days <= 0 {
		return DeadlineStatus{State: DeadlineExpired, DueAt: due, Remaining: remaining, RemainingDays: days}
	}
	return DeadlineStatus{State: DeadlineRunning, DueAt: due, Remaining: remaining, RemainingDays: days}
}

// FifteenBusinessDay is the insurer response deadline: 15 business days from
// the send-to-insurer stamp. Completed once the insurer produces a
// liquidation. Alerting only; it never blocks transitions.
func (s *DeadlineService) FifteenBusinessDay(claim domain.Claim, now time.Time) DeadlineStatus {
	if claim.SentToInsurerAt == nil {
		return DeadlineStatus{State: DeadlineNotStarted}
	}
	due := addBusinessDays(*claim.SentToInsurerAt, 15)

	if claim.Liquidation != nil {
		return DeadlineStatus{State: DeadlineCompleted, DueAt: due}
	}

	remaining := due.Sub(now)
	if remaining <= 0 {
		return DeadlineStatus{State: DeadlineExpired, DueAt: due, Remaining: remaining}
	}
	return DeadlineStatus{
		State:                 DeadlineRunning,
		DueAt:                 due,
		Remaining:             remaining,
		RemainingBusinessDays: businessDaysBetween(now, due),
	}
}

// SeventyTwoHour is the payment deadline: 72 wall-clock hours from the last
// beneficiary signature. Completed once the payment is executed. Alerting only.
func (s *DeadlineService) SeventyTwoHour(claim domain.Claim, now time.Time) DeadlineStatus {
	if claim.SignaturesReceivedAt == nil {
		return DeadlineStatus{State: DeadlineNotStarted}
	}
	due := claim.SignaturesReceivedAt.Add(72 * time.Hour)

	if claim.PaymentDate != nil {
		return DeadlineStatus{State: DeadlineCompleted, DueAt: due}
	}

	remaining := due.Sub(now)
	if remaining <= 0 {
		return DeadlineStatus{State: DeadlineExpired, DueAt: due, Remaining: remaining}
	}
	return DeadlineStatus{State: DeadlineRunning, DueAt: due, Remaining: remaining}
}

// addBusinessDays steps forward one calendar day at a time, counting only
// Monday-Friday. Weekend days are skipped individually rather than through a
// week-multiplier shortcut, since partial weeks at the boundary change the
// result. No holiday calendar.
func addBusinessDays(t time.Time, days int) time.Time {
	result := t
	for added := 0; added < days; {
		result = result.AddDate(0, 0, 1)
		if wd := result.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return result
}

// businessDaysBetween counts the business days in (from, to]
func businessDaysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
