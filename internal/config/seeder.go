package config

import (
	"log"
	"time"

	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/core/domain"

	"gorm.io/gorm"
)

// SeedDemoClaims inserts a couple of demo claims in dev mode so the UI has
// something to show. Skipped when claims already exist.
func SeedDemoClaims(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Claim{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	demos := []models.Claim{
		{
			CaseCode:   "SIN-2025-0001",
			ClaimType:  string(domain.ClaimTypeNatural),
			State:      string(domain.StateReceived),
			DeathDate:  now.AddDate(0, 0, -10),
			ReportDate: now.AddDate(0, 0, -7),
			Version:    1,
		},
		{
			CaseCode:   "SIN-2025-0002",
			ClaimType:  string(domain.ClaimTypeAccident),
			State:      string(domain.StateValidating),
			DeathDate:  now.AddDate(0, 0, -50),
			ReportDate: now.AddDate(0, 0, -45),
			Version:    1,
		},
	}

	for i := range demos {
		if err := db.Create(&demos[i]).Error; err != nil {
			return err
		}
		for _, t := range domain.RequiredDocumentTypes(domain.ClaimType(demos[i].ClaimType)) {
			doc := models.ClaimDocument{
				ClaimID:  demos[i].ID,
				DocType:  string(t),
				Required: true,
				Status:   string(domain.DocumentPending),
			}
			if err := db.Create(&doc).Error; err != nil {
				return err
			}
		}
	}

	log.Printf("🌱 Seeded %d demo claims", len(demos))
	return nil
}
