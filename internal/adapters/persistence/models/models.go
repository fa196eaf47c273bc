package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Claim lifecycle tables
// ============================================================

type Claim struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CaseCode  string `gorm:"size:30;uniqueIndex;not null" json:"case_code"`
	ClaimType string `gorm:"size:10;not null;default:'UNKNOWN'" json:"claim_type"`
	State     string `gorm:"size:15;not null;default:'RECEIVED';index" json:"state"`

	DeathDate            time.Time  `gorm:"type:date;not null" json:"death_date"`
	ReportDate           time.Time  `gorm:"not null" json:"report_date"`
	SentToInsurerAt      *time.Time `json:"sent_to_insurer_at"`
	SignaturesReceivedAt *time.Time `json:"signatures_received_at"`
	LiquidationDate      *time.Time `json:"liquidation_date"`
	PaymentDate          *time.Time `json:"payment_date"`
	ClosedAt             *time.Time `json:"closed_at"`

	SixtyDayDeadlineMet bool    `gorm:"default:false" json:"sixty_day_deadline_met"`
	InvalidReason       *string `gorm:"size:500" json:"invalid_reason"`

	// Version backs the optimistic concurrency check on every save
	Version uint `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Documents     []ClaimDocument    `gorm:"foreignKey:ClaimID" json:"documents,omitempty"`
	Beneficiaries []ClaimBeneficiary `gorm:"foreignKey:ClaimID" json:"beneficiaries,omitempty"`
	Liquidation   *ClaimLiquidation  `gorm:"foreignKey:ClaimID" json:"liquidation,omitempty"`
	Payment       *ClaimPayment      `gorm:"foreignKey:ClaimID" json:"payment,omitempty"`
}

func (Claim) TableName() string {
	return "claims"
}

type ClaimDocument struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ClaimID      uint   `gorm:"not null;index:idx_claim_doc,unique" json:"claim_id"`
	DocType      string `gorm:"size:30;not null;index:idx_claim_doc,unique" json:"doc_type"`
	Required     bool   `gorm:"default:false" json:"required"`
	Status       string `gorm:"size:10;not null;default:'PENDING'" json:"status"`
	RejectReason *string `gorm:"size:255" json:"reject_reason"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClaimDocument) TableName() string {
	return "claim_documents"
}

type ClaimBeneficiary struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	ClaimID         uint    `gorm:"not null;index:idx_claim_ben,unique" json:"claim_id"`
	FullName        string  `gorm:"size:150;not null;index:idx_claim_ben,unique" json:"full_name"`
	PercentageShare float64 `gorm:"type:decimal(5,2);not null" json:"percentage_share"`
	SignatureStatus string  `gorm:"size:10;not null;default:'PENDING'" json:"signature_status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClaimBeneficiary) TableName() string {
	return "claim_beneficiaries"
}

type ClaimLiquidation struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	ClaimID      uint    `gorm:"not null;uniqueIndex" json:"claim_id"`
	Status       string  `gorm:"size:10;not null;default:'SENT'" json:"status"`
	Amount       float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	InsurerNotes *string `gorm:"size:500" json:"insurer_notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClaimLiquidation) TableName() string {
	return "claim_liquidations"
}

type ClaimPayment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ClaimID uint   `gorm:"not null;uniqueIndex" json:"claim_id"`
	Status  string `gorm:"size:10;not null;default:'PENDING'" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClaimPayment) TableName() string {
	return "claim_payments"
}

// ============================================================
// Alerts (derived, upserted by (claim, kind))
// ============================================================

type ClaimAlert struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CaseCode string    `gorm:"size:30;not null;index:idx_alert_kind,unique" json:"case_code"`
	Kind     string    `gorm:"size:20;not null;index:idx_alert_kind,unique" json:"kind"`
	Severity string    `gorm:"size:10;not null" json:"severity"`
	Message  string    `gorm:"size:255;not null" json:"message"`
	DueAt    time.Time `gorm:"not null" json:"due_at"`
	AnchorAt time.Time `gorm:"not null" json:"anchor_at"`
	Resolved bool      `gorm:"default:false;index" json:"resolved"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClaimAlert) TableName() string {
	return "claim_alerts"
}

// ============================================================
// Audit trail (append-only; rows are never updated or deleted)
// ============================================================

type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	CaseCode  string    `gorm:"size:30;not null;index" json:"case_code"`
	Actor     string    `gorm:"size:100;not null" json:"actor"`
	Action    string    `gorm:"size:30;not null" json:"action"`
	Detail    string    `gorm:"size:500" json:"detail"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// AutoMigrate creates or updates all claim lifecycle tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Claim{},
		&ClaimDocument{},
		&ClaimBeneficiary{},
		&ClaimLiquidation{},
		&ClaimPayment{},
		&ClaimAlert{},
		&AuditEvent{},
	)
}
