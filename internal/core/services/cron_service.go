package services

import (
	"log"
	"time"

	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ============================================================
// Periodic alert sweep over all open claims
// ============================================================

// CronService runs the batch recompute path: the same pure alert refresh the
// read path uses, swept over every open claim on a schedule.
type CronService struct {
	claimRepo *repositories.ClaimRepository
	alertRepo *repositories.AlertRepository
	alerts    *AlertService
	cron      *cron.Cron
	schedule  string
}

// NewCronService creates the alert sweep service
func NewCronService(db *gorm.DB, schedule string) *CronService {
	if schedule == "" {
		schedule = "@every 15m"
	}
	return &CronService{
		claimRepo: repositories.NewClaimRepository(db),
		alertRepo: repositories.NewAlertRepository(db),
		alerts:    NewAlertService(NewDeadlineService()),
		cron:      cron.New(),
		schedule:  schedule,
	}
}

// Start schedules the sweep and runs one pass immediately
func (s *CronService) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		log.Printf("❌ Failed to schedule alert sweep: %v", err)
		return
	}
	s.cron.Start()
	log.Printf("🚀 Alert sweep started [%s]", s.schedule)

	go s.sweep()
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Alert sweep stopped")
}

// sweep refreshes deadline alerts for every open claim
func (s *CronService) sweep() {
	now := time.Now()

	claims, err := s.claimRepo.GetOpenClaims()
	if err != nil {
		log.Printf("❌ Alert sweep query error: %v", err)
		return
	}

	var updated int
	for _, row := range claims {
		previous, err := s.alertRepo.GetByCaseCode(row.CaseCode)
		if err != nil {
			log.Printf("❌ Alert sweep: load alerts for %s: %v", row.CaseCode, err)
			continue
		}

		instructions := s.alerts.Refresh(row.ToDomain(), now, models.AlertsToDomain(previous))
		if len(instructions) == 0 {
			continue
		}
		if err := s.alertRepo.UpsertMany(instructions); err != nil {
			log.Printf("❌ Alert sweep: upsert for %s: %v", row.CaseCode, err)
			continue
		}
		updated += len(instructions)
	}

	if updated > 0 {
		log.Printf("🔔 Alert sweep refreshed %d alert(s) across %d open claim(s)", updated, len(claims))
	}
}