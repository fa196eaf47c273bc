package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"univida-claims/internal/core/domain"
)

// LifecycleService is the claim state machine. Every operation takes a claim
// snapshot by value plus an explicit now, and returns the updated snapshot
// with an audit event instruction. A rejected operation returns the snapshot
// unchanged; nothing here touches storage.
type LifecycleService struct {
	gates     *GateService
	deadlines *DeadlineService
	audit     *AuditService
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(gates *GateService, deadlines *DeadlineService, audit *AuditService) *LifecycleService {
	return &LifecycleService{
		gates:     gates,
		deadlines: deadlines,
		audit:     audit,
	}
}

// TransitionResult carries the updated snapshot plus the audit instruction
// the caller must persist alongside it
type TransitionResult struct {
	Claim domain.Claim      `json:"claim"`
	Event domain.AuditEvent `json:"event"`
}

// ============================================================
// Claim creation
// ============================================================

// NewClaimInput represents a claim report, public or manual
type NewClaimInput struct {
	CaseCode  string           `json:"case_code" validate:"required"`
	Type      domain.ClaimType `json:"type" validate:"required"`
	DeathDate time.Time        `json:"death_date" validate:"required"`
}

// Create builds a claim in RECEIVED with its document checklist initialized
// from the mandatory set for the claim type
func (s *LifecycleService) Create(input NewClaimInput, actor domain.Actor, now time.Time) (TransitionResult, error) {
	if strings.TrimSpace(input.CaseCode) == "" {
		return TransitionResult{}, &domain.ValidationError{Field: "case_code", Reason: "must not be empty"}
	}
	switch input.Type {
	case domain.ClaimTypeNatural, domain.ClaimTypeAccident, domain.ClaimTypeUnknown:
	default:
		return TransitionResult{}, &domain.ValidationError{Field: "type", Reason: "unknown claim type"}
	}
	if input.DeathDate.IsZero() {
		return TransitionResult{}, &domain.ValidationError{Field: "death_date", Reason: "must be set"}
	}
	if input.DeathDate.After(now) {
		return TransitionResult{}, &domain.ValidationError{Field: "death_date", Reason: "must not be in the future"}
	}

	required := domain.RequiredDocumentTypes(input.Type)
	docs := make([]domain.Document, 0, len(required))
	for _, t := range required {
		docs = append(docs, domain.Document{Type: t, Required: true, Status: domain.DocumentPending})
	}

	claim := domain.Claim{
		CaseCode:   input.CaseCode,
		Type:       input.Type,
		State:      domain.StateReceived,
		DeathDate:  input.DeathDate,
		ReportDate: now,
		Documents:  docs,
	}

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionClaimCreated, actor,
		fmt.Sprintf("claim reported, type %s", input.Type), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// ============================================================
// State transitions
// ============================================================

// AttemptTransition validates and applies a single-step state change.
// Forward moves require the destination gate to be open and the 60-day
// deadline to be alive; the INVALID side branch requires a reason.
func (s *LifecycleService) AttemptTransition(claim domain.Claim, target domain.ClaimState, actor domain.Actor, reason string, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	if !target.IsValid() {
		return TransitionResult{}, &domain.ValidationError{Field: "target_state", Reason: "unknown state"}
	}

	if target == domain.StateInvalid {
		return s.Invalidate(claim, actor, reason, now)
	}

	if target != claim.State.Successor() {
		return TransitionResult{}, domain.ErrIllegalTransition
	}

	// An expired 60-day clock freezes all forward movement until an
	// authorized reopening waives it
	if s.deadlines.SixtyDay(claim, now).State == DeadlineExpired {
		return TransitionResult{}, domain.ErrDeadlineExpired
	}

	if unmet := s.gates.GateFor(claim, target); len(unmet) > 0 {
		return TransitionResult{}, &domain.GateError{Stage: target, Unmet: unmet}
	}

	if target == domain.StatePayment {
		if err := beneficiarySharesTotal(claim); err != nil {
			return TransitionResult{}, err
		}
	}

	from := claim.State
	claim.State = target
	if target == domain.StateClosed && claim.ClosedAt == nil {
		closedAt := now
		claim.ClosedAt = &closedAt
	}

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionStateChanged, actor,
		fmt.Sprintf("%s -> %s", from, target), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// Invalidate moves a claim to INVALID. Only reachable from RECEIVED or
// VALIDATING, and every invalidation must carry an explainable reason.
func (s *LifecycleService) Invalidate(claim domain.Claim, actor domain.Actor, reason string, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	if !claim.State.CanInvalidate() {
		return TransitionResult{}, domain.ErrIllegalTransition
	}
	if strings.TrimSpace(reason) == "" {
		return TransitionResult{}, &domain.ValidationError{Field: "reason", Reason: "invalidation requires a non-empty reason"}
	}

	from := claim.State
	claim.State = domain.StateInvalid
	claim.InvalidReason = reason
	closedAt := now
	claim.ClosedAt = &closedAt

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionClaimInvalidated, actor,
		fmt.Sprintf("%s -> INVALID: %s", from, reason), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// MarkSentToInsurer stamps the send-to-insurer anchor and completes the
// 60-day clock. Kept separate from the LIQUIDATION transition on purpose:
// only this stamp, never the bare state change, starts the insurer response
// clock, so re-entering the stage cannot restart it.
func (s *LifecycleService) MarkSentToInsurer(claim domain.Claim, actor domain.Actor, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	if claim.SentToInsurerAt != nil {
		return TransitionResult{}, &domain.ValidationError{Field: "sent_to_insurer_at", Reason: "expedient already sent"}
	}
	// Completing the clock after expiry would bypass the reopen path
	if s.deadlines.SixtyDay(claim, now).State == DeadlineExpired {
		return TransitionResult{}, domain.ErrDeadlineExpired
	}

	sentAt := now
	claim.SentToInsurerAt = &sentAt
	claim.SixtyDayDeadlineMet = true

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionSentToInsurer, actor,
		"expedient sent to insurer", now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// ============================================================
// Fact recording
// ============================================================

// DocumentInput represents a document status update
type DocumentInput struct {
	Type         domain.DocumentType   `json:"type" validate:"required"`
	Status       domain.DocumentStatus `json:"status" validate:"required"`
	RejectReason string                `json:"reject_reason,omitempty"`
}

// RecordDocument upserts one document of the expedient by type
func (s *LifecycleService) RecordDocument(claim domain.Claim, input DocumentInput, actor domain.Actor, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	switch input.Status {
	case domain.DocumentPending, domain.DocumentReceived, domain.DocumentRejected:
	default:
		return TransitionResult{}, &domain.ValidationError{Field: "status", Reason: "unknown document status"}
	}
	if input.Status == domain.DocumentRejected && strings.TrimSpace(input.RejectReason) == "" {
		return TransitionResult{}, &domain.ValidationError{Field: "reject_reason", Reason: "rejection requires a reason"}
	}

	docs := make([]domain.Document, len(claim.Documents))
	copy(docs, claim.Documents)

	found := false
	for i := range docs {
		if docs[i].Type == input.Type {
			docs[i].Status = input.Status
			docs[i].RejectReason = input.RejectReason
			found = true
			break
		}
	}
	if !found {
		docs = append(docs, domain.Document{
			Type:         input.Type,
			Required:     isRequiredType(claim.Type, input.Type),
			Status:       input.Status,
			RejectReason: input.RejectReason,
		})
	}
	claim.Documents = docs

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionDocumentRecorded, actor,
		fmt.Sprintf("%s %s", input.Type, input.Status), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// BeneficiaryInput represents a beneficiary upsert
type BeneficiaryInput struct {
	FullName        string  `json:"full_name" validate:"required"`
	PercentageShare float64 `json:"percentage_share" validate:"required"`
}

// RecordBeneficiary adds or updates a beneficiary by name. Shares are held
// at two-decimal precision; the 100% total is checked at payment time, not
// silently fixed here.
func (s *LifecycleService) RecordBeneficiary(claim domain.Claim, input BeneficiaryInput, actor domain.Actor, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	if strings.TrimSpace(input.FullName) == "" {
		return TransitionResult{}, &domain.ValidationError{Field: "full_name", Reason: "must not be empty"}
	}
	share := math.Round(input.PercentageShare*100) / 100
	if share <= 0 || share > 100 {
		return TransitionResult{}, &domain.ValidationError{Field: "percentage_share", Reason: "must be within (0, 100]"}
	}

	bens := make([]domain.Beneficiary, len(claim.Beneficiaries))
	copy(bens, claim.Beneficiaries)

	found := false
	for i := range bens {
		if bens[i].FullName == input.FullName {
			bens[i].PercentageShare = share
			found = true
			break
		}
	}
	if !found {
		bens = append(bens, domain.Beneficiary{
			FullName:        input.FullName,
			PercentageShare: share,
			SignatureStatus: domain.SignaturePending,
		})
	}
	claim.Beneficiaries = bens

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionBeneficiaryRecorded, actor,
		fmt.Sprintf("%s, %.2f%%", input.FullName, share), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// RecordSignature marks one beneficiary's signature as received. When the
// last pending signature arrives, the signatures anchor is stamped and the
// 72-hour payment clock starts.
func (s *LifecycleService) RecordSignature(claim domain.Claim, beneficiaryName string, actor domain.Actor, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}

	bens := make([]domain.Beneficiary, len(claim.Beneficiaries))
	copy(bens, claim.Beneficiaries)

	found := false
	for i := range bens {
		if bens[i].FullName == beneficiaryName {
			bens[i].SignatureStatus = domain.SignatureReceived
			found = true
			break
		}
	}
	if !found {
		return TransitionResult{}, &domain.ValidationError{Field: "beneficiary", Reason: "no beneficiary with that name"}
	}
	claim.Beneficiaries = bens

	if claim.SignaturesReceivedAt == nil && allSigned(bens) {
		receivedAt := now
		claim.SignaturesReceivedAt = &receivedAt
	}

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionSignatureRecorded, actor,
		fmt.Sprintf("signature received from %s", beneficiaryName), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// LiquidationInput represents the insurer's liquidation response
type LiquidationInput struct {
	Status       domain.LiquidationStatus `json:"status" validate:"required"`
	Amount       float64                  `json:"amount" validate:"required,gt=0"`
	InsurerNotes string                   `json:"insurer_notes,omitempty"`
}

// RecordLiquidation upserts the single liquidation of a claim. The first
// record stamps the liquidation anchor and completes the insurer response
// clock.
func (s *LifecycleService) RecordLiquidation(claim domain.Claim, input LiquidationInput, actor domain.Actor, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	switch input.Status {
	case domain.LiquidationSent, domain.LiquidationObserved, domain.LiquidationApproved:
	default:
		return TransitionResult{}, &domain.ValidationError{Field: "status", Reason: "unknown liquidation status"}
	}
	if input.Amount <= 0 {
		return TransitionResult{}, &domain.ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}

	claim.Liquidation = &domain.Liquidation{
		Status:       input.Status,
		Amount:       math.Round(input.Amount*100) / 100,
		InsurerNotes: input.InsurerNotes,
	}
	if claim.LiquidationDate == nil {
		liquidatedAt := now
		claim.LiquidationDate = &liquidatedAt
	}

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionLiquidationRecorded, actor,
		fmt.Sprintf("liquidation %s, amount %.2f", input.Status, input.Amount), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// PaymentInput represents a payout execution update
type PaymentInput struct {
	Status domain.PaymentStatus `json:"status" validate:"required"`
}

// RecordPayment upserts the single payment of a claim. Executing it requires
// an approved liquidation and beneficiary shares totalling 100%, and stamps
// the payment anchor.
func (s *LifecycleService) RecordPayment(claim domain.Claim, input PaymentInput, actor domain.Actor, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	switch input.Status {
	case domain.PaymentPending, domain.PaymentExecuted:
	default:
		return TransitionResult{}, &domain.ValidationError{Field: "status", Reason: "unknown payment status"}
	}

	if input.Status == domain.PaymentExecuted {
		if claim.Liquidation == nil || claim.Liquidation.Status != domain.LiquidationApproved {
			return TransitionResult{}, &domain.ValidationError{Field: "payment", Reason: "liquidation must be approved before executing the payment"}
		}
		if err := beneficiarySharesTotal(claim); err != nil {
			return TransitionResult{}, err
		}
	}

	claim.Payment = &domain.Payment{Status: input.Status}
	if input.Status == domain.PaymentExecuted && claim.PaymentDate == nil {
		paidAt := now
		claim.PaymentDate = &paidAt
	}

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionPaymentRecorded, actor,
		fmt.Sprintf("payment %s", input.Status), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// ============================================================
// Reopening after 60-day expiry
// ============================================================

// Reopen waives an expired 60-day deadline. Admin only, reason required.
// The claim resumes in the state where it stalled; the death-date anchor is
// never rewritten, and the expired alert retires on the next refresh because
// the clock now reads completed.
func (s *LifecycleService) Reopen(claim domain.Claim, actor domain.Actor, reason string, now time.Time) (TransitionResult, error) {
	if claim.State.IsTerminal() {
		return TransitionResult{}, domain.ErrClaimLocked
	}
	if actor.Role != domain.RoleAdmin {
		return TransitionResult{}, domain.ErrNotAuthorized
	}
	if strings.TrimSpace(reason) == "" {
		return TransitionResult{}, &domain.ValidationError{Field: "reason", Reason: "reopening requires a non-empty reason"}
	}
	if s.deadlines.SixtyDay(claim, now).State != DeadlineExpired {
		return TransitionResult{}, &domain.ValidationError{Field: "claim", Reason: "claim is not expired"}
	}

	claim.SixtyDayDeadlineMet = true

	event := s.audit.NewEvent(claim.CaseCode, domain.ActionClaimReopened, actor,
		fmt.Sprintf("expired deadline waived: %s", reason), now)
	return TransitionResult{Claim: claim, Event: event}, nil
}

// ============================================================
// Helpers
// ============================================================

// beneficiarySharesTotal checks the 100% invariant at two-decimal precision
func beneficiarySharesTotal(claim domain.Claim) error {
	if len(claim.Beneficiaries) == 0 {
		return &domain.ValidationError{Field: "beneficiaries", Reason: "claim has no beneficiaries"}
	}
	var sum float64
	for _, b := range claim.Beneficiaries {
		sum += b.PercentageShare
	}
	if math.Round(sum*100) != 10000 {
		return &domain.ValidationError{
			Field:  "beneficiaries",
			Reason: fmt.Sprintf("percentage shares total %.2f, must be 100.00", sum),
		}
	}
	return nil
}

func allSigned(bens []domain.Beneficiary) bool {
	if len(bens) == 0 {
		return false
	}
	for _, b := range bens {
		if b.SignatureStatus != domain.SignatureReceived {
			return false
		}
	}
	return true
}

func isRequiredType(claimType domain.ClaimType, docType domain.DocumentType) bool {
	for _, t := range domain.RequiredDocumentTypes(claimType) {
		if t == docType {
			return true
		}
	}
	return false
}
