package repositories

import (
	"errors"

	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/core/domain"

	"gorm.io/gorm"
)

// ClaimRepository handles claim aggregate persistence
type ClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create persists a freshly reported claim with its document checklist
func (r *ClaimRepository) Create(claim domain.Claim) (*models.Claim, error) {
	var row models.Claim
	row.ApplyDomain(claim)
	row.Version = 1

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		docs := models.DocumentRows(row.ID, claim)
		if len(docs) > 0 {
			if err := tx.Create(&docs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByCaseCode(claim.CaseCode)
}

// GetByCaseCode returns a claim with all relations preloaded
func (r *ClaimRepository) GetByCaseCode(caseCode string) (*models.Claim, error) {
	var claim models.Claim
	err := r.db.
		Preload("Documents").
		Preload("Beneficiaries").
		Preload("Liquidation").
		Preload("Payment").
		Where("case_code = ?", caseCode).
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// List returns claims filtered by state, newest first
func (r *ClaimRepository) List(state string, offset, limit int) ([]models.Claim, int64, error) {
	query := r.db.Model(&models.Claim{})
	if state != "" {
		query = query.Where("state = ?", state)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []models.Claim
	err := query.
		Preload("Documents").
		Preload("Beneficiaries").
		Preload("Liquidation").
		Preload("Payment").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&claims).Error
	return claims, total, err
}

// GetOpenClaims returns every claim still in a non-terminal state, for the
// periodic alert sweep
func (r *ClaimRepository) GetOpenClaims() ([]models.Claim, error) {
	var claims []models.Claim
	err := r.db.
		Preload("Documents").
		Preload("Beneficiaries").
		Preload("Liquidation").
		Preload("Payment").
		Where("state NOT IN ?", []string{string(domain.StateClosed), string(domain.StateInvalid)}).
		Order("id ASC").
		Find(&claims).Error
	return claims, err
}

// Save writes an updated snapshot back using an optimistic version check.
// The snapshot must have been produced from the given row; a concurrent
// writer bumps the version and this save fails with ErrVersionConflict.
func (r *ClaimRepository) Save(row *models.Claim, updated domain.Claim) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		oldVersion := row.Version
		row.ApplyDomain(updated)
		row.Version = oldVersion + 1

		res := tx.Model(&models.Claim{}).
			Where("id = ? AND version = ?", row.ID, oldVersion).
			Updates(map[string]interface{}{
				"claim_type":              row.ClaimType,
				"state":                   row.State,
				"death_date":              row.DeathDate,
				"report_date":             row.ReportDate,
				"sent_to_insurer_at":      row.SentToInsurerAt,
				"signatures_received_at":  row.SignaturesReceivedAt,
				"liquidation_date":        row.LiquidationDate,
				"payment_date":            row.PaymentDate,
				"closed_at":               row.ClosedAt,
				"sixty_day_deadline_met":  row.SixtyDayDeadlineMet,
				"invalid_reason":          row.InvalidReason,
				"version":                 row.Version,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrVersionConflict
		}

		// Relation rows are rebuilt from the snapshot
		if err := tx.Where("claim_id = ?", row.ID).Delete(&models.ClaimDocument{}).Error; err != nil {
			return err
		}
		if docs := models.DocumentRows(row.ID, updated); len(docs) > 0 {
			if err := tx.Create(&docs).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("claim_id = ?", row.ID).Delete(&models.ClaimBeneficiary{}).Error; err != nil {
			return err
		}
		if bens := models.BeneficiaryRows(row.ID, updated); len(bens) > 0 {
			if err := tx.Create(&bens).Error; err != nil {
				return err
			}
		}

		if updated.Liquidation != nil {
			liq := models.ClaimLiquidation{
				ClaimID: row.ID,
				Status:  string(updated.Liquidation.Status),
				Amount:  updated.Liquidation.Amount,
			}
			if updated.Liquidation.InsurerNotes != "" {
				notes := updated.Liquidation.InsurerNotes
				liq.InsurerNotes = &notes
			}
			if err := upsertByClaimID(tx, &models.ClaimLiquidation{}, row.ID, map[string]interface{}{
				"status":        liq.Status,
				"amount":        liq.Amount,
				"insurer_notes": liq.InsurerNotes,
			}, &liq); err != nil {
				return err
			}
		}

		if updated.Payment != nil {
			pay := models.ClaimPayment{ClaimID: row.ID, Status: string(updated.Payment.Status)}
			if err := upsertByClaimID(tx, &models.ClaimPayment{}, row.ID, map[string]interface{}{
				"status": pay.Status,
			}, &pay); err != nil {
				return err
			}
		}

		return nil
	})
}

// upsertByClaimID updates the single child row of a claim or creates it
func upsertByClaimID(tx *gorm.DB, model interface{}, claimID uint, updates map[string]interface{}, create interface{}) error {
	res := tx.Model(model).Where("claim_id = ?", claimID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(create).Error
	}
	return nil
}
