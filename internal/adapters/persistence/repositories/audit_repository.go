package repositories

import (
	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/core/domain"

	"gorm.io/gorm"
)

// AuditRepository handles the append-only audit trail. Rows are only ever
// inserted; there is no update or delete path, and reads preserve append
// order.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append persists one audit event
func (r *AuditRepository) Append(event domain.AuditEvent) error {
	row := models.AuditToRow(event)
	return r.db.Create(&row).Error
}

// GetByCaseCode returns a claim's audit trail in append order
func (r *AuditRepository) GetByCaseCode(caseCode string, offset, limit int) ([]models.AuditEvent, int64, error) {
	query := r.db.Model(&models.AuditEvent{}).Where("case_code = ?", caseCode)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.AuditEvent
	err := query.
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	return events, total, err
}
