package handlers

import (
	"log"
	"time"

	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/adapters/persistence/repositories"
	"univida-claims/internal/core/domain"
	"univida-claims/internal/core/services"
	"univida-claims/internal/pkg/pagination"
	"univida-claims/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AlertHandler handles deadline alert endpoints
type AlertHandler struct {
	alerts    *services.AlertService
	alertRepo *repositories.AlertRepository
	claimRepo *repositories.ClaimRepository
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts *services.AlertService, alertRepo *repositories.AlertRepository, claimRepo *repositories.ClaimRepository) *AlertHandler {
	return &AlertHandler{
		alerts:    alerts,
		alertRepo: alertRepo,
		claimRepo: claimRepo,
	}
}

// ListUnresolved lists unresolved alerts across all claims
// @Summary List unresolved alerts
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /alerts [get]
func (h *AlertHandler) ListUnresolved(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	rows, total, err := h.alertRepo.GetUnresolved(params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list alerts")
	}

	return response.Success(c, "Alerts retrieved successfully", pagination.NewResponse(models.AlertsToDomain(rows), params, total))
}

// ListByClaim recomputes and returns the alerts of one claim
// @Summary List claim alerts
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/alerts [get]
func (h *AlertHandler) ListByClaim(c *fiber.Ctx) error {
	caseCode := c.Params("caseCode")
	row, err := h.claimRepo.GetByCaseCode(caseCode)
	if err != nil {
		return mapDomainError(c, err)
	}

	previous, err := h.alertRepo.GetByCaseCode(caseCode)
	if err != nil {
		return response.InternalServerError(c, "Failed to load alerts")
	}

	// Recompute on read so the caller always sees current severities,
	// not the state the last sweep left behind.
	instructions := h.alerts.Refresh(row.ToDomain(), time.Now(), models.AlertsToDomain(previous))
	if err := h.alertRepo.UpsertMany(instructions); err != nil {
		log.Printf("❌ Failed to refresh alerts for %s: %v", caseCode, err)
	}

	rows, err := h.alertRepo.GetByCaseCode(caseCode)
	if err != nil {
		return response.InternalServerError(c, "Failed to load alerts")
	}
	return response.Success(c, "Alerts retrieved successfully", fiber.Map{
		"alerts": models.AlertsToDomain(rows),
	})
}

// ResolveRequest identifies the alert to acknowledge
type ResolveRequest struct {
	Kind string `json:"kind"`
}

// Resolve marks an alert as acknowledged by an operator
// @Summary Resolve alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body ResolveRequest true "Alert kind"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /claims/{caseCode}/alerts/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !domain.AlertKind(req.Kind).IsValid() {
		return response.BadRequest(c, "Unknown alert kind")
	}

	caseCode := c.Params("caseCode")
	if err := h.alertRepo.Resolve(caseCode, req.Kind); err != nil {
		return mapDomainError(c, err)
	}

	log.Printf("🔔 Alert %s resolved for claim %s", req.Kind, caseCode)
	return response.Success(c, "Alert resolved", nil)
}
