package repositories

import (
	"errors"

	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/core/domain"

	"gorm.io/gorm"
)

// AlertRepository handles alert persistence. Alerts are derived records
// keyed by (case code, kind); Upsert keeps exactly one row per key.
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// GetByCaseCode returns all alerts of a claim
func (r *AlertRepository) GetByCaseCode(caseCode string) ([]models.ClaimAlert, error) {
	var alerts []models.ClaimAlert
	err := r.db.Where("case_code = ?", caseCode).Order("id ASC").Find(&alerts).Error
	return alerts, err
}

// GetUnresolved returns all unresolved alerts, most urgent first
func (r *AlertRepository) GetUnresolved(offset, limit int) ([]models.ClaimAlert, int64, error) {
	query := r.db.Model(&models.ClaimAlert{}).Where("resolved = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.ClaimAlert
	err := query.
		Order("due_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&alerts).Error
	return alerts, total, err
}

// Upsert applies one refresh instruction: update the existing
// (case code, kind) row or create it
func (r *AlertRepository) Upsert(alert domain.Alert) error {
	updates := map[string]interface{}{
		"severity":  string(alert.Severity),
		"message":   alert.Message,
		"due_at":    alert.DueAt,
		"anchor_at": alert.AnchorAt,
		"resolved":  alert.Resolved,
	}

	res := r.db.Model(&models.ClaimAlert{}).
		Where("case_code = ? AND kind = ?", alert.CaseCode, string(alert.Kind)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		row := models.AlertToRow(alert)
		return r.db.Create(&row).Error
	}
	return nil
}

// UpsertMany applies a batch of refresh instructions
func (r *AlertRepository) UpsertMany(alerts []domain.Alert) error {
	for _, a := range alerts {
		if err := r.Upsert(a); err != nil {
			return err
		}
	}
	return nil
}

// Resolve marks one alert dismissed. Dismissal is terminal: the refresh
// logic never recreates a resolved kind unless its anchor changes.
func (r *AlertRepository) Resolve(caseCode string, kind string) error {
	res := r.db.Model(&models.ClaimAlert{}).
		Where("case_code = ? AND kind = ?", caseCode, kind).
		Update("resolved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// GetByKey returns one alert by its (case code, kind) key
func (r *AlertRepository) GetByKey(caseCode string, kind string) (*models.ClaimAlert, error) {
	var alert models.ClaimAlert
	err := r.db.Where("case_code = ? AND kind = ?", caseCode, kind).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, err
	}
	return &alert, nil
}
