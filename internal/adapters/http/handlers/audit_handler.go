package handlers

import (
	"univida-claims/internal/adapters/persistence/repositories"
	"univida-claims/internal/core/domain"
	"univida-claims/internal/pkg/pagination"
	"univida-claims/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler exposes the append-only audit trail
type AuditHandler struct {
	auditRepo *repositories.AuditRepository
	claimRepo *repositories.ClaimRepository
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditRepo *repositories.AuditRepository, claimRepo *repositories.ClaimRepository) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
		claimRepo: claimRepo,
	}
}

// ListByClaim returns a claim's audit trail in append order
// @Summary Get claim audit trail
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /claims/{caseCode}/audit [get]
func (h *AuditHandler) ListByClaim(c *fiber.Ctx) error {
	caseCode := c.Params("caseCode")
	if _, err := h.claimRepo.GetByCaseCode(caseCode); err != nil {
		return mapDomainError(c, err)
	}

	params := pagination.GetParams(c)
	rows, total, err := h.auditRepo.GetByCaseCode(caseCode, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load audit trail")
	}

	events := make([]domain.AuditEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].ToDomain())
	}
	return response.Success(c, "Audit trail retrieved successfully", pagination.NewResponse(events, params, total))
}
