package domain

import "time"

// ClaimState represents the lifecycle stage of a claim
type ClaimState string

const (
	StateReceived      ClaimState = "RECEIVED"
	StateValidating    ClaimState = "VALIDATING"
	StateBeneficiaries ClaimState = "BENEFICIARIES"
	StateLiquidation   ClaimState = "LIQUIDATION"
	StatePayment       ClaimState = "PAYMENT"
	StateClosed        ClaimState = "CLOSED"
	StateInvalid       ClaimState = "INVALID"
)

// successor maps each state to the next stage in process order.
// INVALID is reachable only as a side branch, never as a successor.
var successor = map[ClaimState]ClaimState{
	StateReceived:      StateValidating,
	StateValidating:    StateBeneficiaries,
	StateBeneficiaries: StateLiquidation,
	StateLiquidation:   StatePayment,
	StatePayment:       StateClosed,
}

// Successor returns the next state in process order, or "" for terminal states
func (s ClaimState) Successor() ClaimState {
	return successor[s]
}

// IsTerminal reports whether no further mutation is allowed from this state
func (s ClaimState) IsTerminal() bool {
	return s == StateClosed || s == StateInvalid
}

// CanInvalidate reports whether the INVALID side branch is reachable from this state
func (s ClaimState) CanInvalidate() bool {
	return s == StateReceived || s == StateValidating
}

// IsValid reports whether s is a known claim state
func (s ClaimState) IsValid() bool {
	switch s {
	case StateReceived, StateValidating, StateBeneficiaries,
		StateLiquidation, StatePayment, StateClosed, StateInvalid:
		return true
	}
	return false
}

// ClaimType represents the cause-of-death classification of a claim
type ClaimType string

const (
	ClaimTypeNatural  ClaimType = "NATURAL"
	ClaimTypeAccident ClaimType = "ACCIDENT"
	ClaimTypeUnknown  ClaimType = "UNKNOWN"
)

// DocumentStatus represents the review status of a claim document
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentReceived DocumentStatus = "RECEIVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// DocumentType identifies a document in the expedient
type DocumentType string

const (
	DocDeathCertificate DocumentType = "DEATH_CERTIFICATE"
	DocIdentity         DocumentType = "IDENTITY_DOCUMENT"
	DocEnrollmentProof  DocumentType = "ENROLLMENT_PROOF"
	DocClaimForm        DocumentType = "CLAIM_FORM"
	DocMedicalHistory   DocumentType = "MEDICAL_HISTORY"

	// Additional mandatory set for accident claims
	DocPoliceReport     DocumentType = "POLICE_REPORT"
	DocAutopsyReport    DocumentType = "AUTOPSY_REPORT"
	DocToxicologyReport DocumentType = "TOXICOLOGY_REPORT"
	DocAccidentReport   DocumentType = "ACCIDENT_REPORT"
)

var baseRequiredDocs = []DocumentType{
	DocDeathCertificate,
	DocIdentity,
	DocEnrollmentProof,
	DocClaimForm,
	DocMedicalHistory,
}

var accidentRequiredDocs = []DocumentType{
	DocPoliceReport,
	DocAutopsyReport,
	DocToxicologyReport,
	DocAccidentReport,
}

// RequiredDocumentTypes returns the mandatory document set for a claim type.
// Accident claims carry four additional mandatory types; UNKNOWN is treated
// like NATURAL until the cause of death is classified.
func RequiredDocumentTypes(t ClaimType) []DocumentType {
	docs := make([]DocumentType, 0, len(baseRequiredDocs)+len(accidentRequiredDocs))
	docs = append(docs, baseRequiredDocs...)
	if t == ClaimTypeAccident {
		docs = append(docs, accidentRequiredDocs...)
	}
	return docs
}

// SignatureStatus represents a beneficiary's signature collection status
type SignatureStatus string

const (
	SignaturePending  SignatureStatus = "PENDING"
	SignatureReceived SignatureStatus = "RECEIVED"
)

// LiquidationStatus represents the insurer's liquidation review status
type LiquidationStatus string

const (
	LiquidationSent     LiquidationStatus = "SENT"
	LiquidationObserved LiquidationStatus = "OBSERVED"
	LiquidationApproved LiquidationStatus = "APPROVED"
)

// PaymentStatus represents the payout execution status
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentExecuted PaymentStatus = "EXECUTED"
)

// Document represents one file in the claim expedient
type Document struct {
	Type         DocumentType   `json:"type"`
	Required     bool           `json:"required"`
	Status       DocumentStatus `json:"status"`
	RejectReason string         `json:"reject_reason,omitempty"`
}

// Beneficiary represents one payout recipient on a claim
type Beneficiary struct {
	FullName        string          `json:"full_name"`
	PercentageShare float64         `json:"percentage_share"` // 0-100, two-decimal precision
	SignatureStatus SignatureStatus `json:"signature_status"`
}

// Liquidation represents the insurer's settlement proposal (at most one per claim)
type Liquidation struct {
	Status       LiquidationStatus `json:"status"`
	Amount       float64           `json:"amount"`
	InsurerNotes string            `json:"insurer_notes,omitempty"`
}

// Payment represents the payout execution record (at most one per claim)
type Payment struct {
	Status PaymentStatus `json:"status"`
}

// Claim is the aggregate snapshot every core operation works on.
// Operations take it by value and return an updated copy; a rejected
// operation leaves the caller's snapshot untouched.
type Claim struct {
	CaseCode string     `json:"case_code"`
	Type     ClaimType  `json:"type"`
	State    ClaimState `json:"state"`

	// Anchor timestamps for the regulatory deadlines
	DeathDate            time.Time  `json:"death_date"`
	ReportDate           time.Time  `json:"report_date"`
	SentToInsurerAt      *time.Time `json:"sent_to_insurer_at,omitempty"`
	SignaturesReceivedAt *time.Time `json:"signatures_received_at,omitempty"`
	LiquidationDate      *time.Time `json:"liquidation_date,omitempty"`
	PaymentDate          *time.Time `json:"payment_date,omitempty"`
	ClosedAt             *time.Time `json:"closed_at,omitempty"`

	SixtyDayDeadlineMet bool   `json:"sixty_day_deadline_met"`
	InvalidReason       string `json:"invalid_reason,omitempty"`

	Documents     []Document    `json:"documents"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	Liquidation   *Liquidation  `json:"liquidation,omitempty"`
	Payment       *Payment      `json:"payment,omitempty"`

	// Version is the optimistic-lock counter managed by the persistence layer
	Version uint `json:"version"`
}

// Actor identifies who performs an operation, for audit attribution
type Actor struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Actor roles
const (
	RoleOperator = "OPERATOR"
	RoleAdmin    = "ADMIN"
)

// AlertKind identifies which clock or policy event an alert tracks
type AlertKind string

const (
	AlertDeadline60D  AlertKind = "DEADLINE_60D"
	AlertDeadline15BD AlertKind = "DEADLINE_15BD"
	AlertDeadline72H  AlertKind = "DEADLINE_72H"

	// Policy-level kinds emitted by the surrounding policy module,
	// carried here so alerts share one vocabulary and one store
	AlertPolicyExpiry  AlertKind = "POLICY_EXPIRY"
	AlertPolicyPayment AlertKind = "POLICY_PAYMENT"
)

// IsValid reports whether k is a known alert kind
func (k AlertKind) IsValid() bool {
	switch k {
	case AlertDeadline60D, AlertDeadline15BD, AlertDeadline72H, AlertPolicyExpiry, AlertPolicyPayment:
		return true
	}
	return false
}

// AlertSeverity represents alert urgency
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is a derived urgency record; it can always be recomputed from the
// claim snapshot, so it is never authoritative.
type Alert struct {
	CaseCode string        `json:"case_code"`
	Kind     AlertKind     `json:"kind"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
	DueAt    time.Time     `json:"due_at"`
	// AnchorAt snapshots the deadline anchor the alert was derived from,
	// so a resolved alert is only recreated when the anchor changes
	AnchorAt time.Time `json:"anchor_at"`
	Resolved bool      `json:"resolved"`
}

// AuditEvent is one immutable entry in a claim's audit trail
type AuditEvent struct {
	ID        string    `json:"id"`
	CaseCode  string    `json:"case_code"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Audit actions
const (
	ActionClaimCreated        = "CLAIM_CREATED"
	ActionStateChanged        = "STATE_CHANGED"
	ActionSentToInsurer       = "SENT_TO_INSURER"
	ActionDocumentRecorded    = "DOCUMENT_RECORDED"
	ActionBeneficiaryRecorded = "BENEFICIARY_RECORDED"
	ActionSignatureRecorded   = "SIGNATURE_RECORDED"
	ActionLiquidationRecorded = "LIQUIDATION_RECORDED"
	ActionPaymentRecorded     = "PAYMENT_RECORDED"
	ActionClaimInvalidated    = "CLAIM_INVALIDATED"
	ActionClaimReopened       = "CLAIM_REOPENED"
	ActionAlertResolved       = "ALERT_RESOLVED"
)
