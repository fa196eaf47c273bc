package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"univida-claims/internal/adapters/http/middleware"
	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/adapters/persistence/repositories"
	"univida-claims/internal/core/domain"
	"univida-claims/internal/core/services"
	"univida-claims/internal/pkg/pagination"
	"univida-claims/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ClaimHandler handles claim lifecycle endpoints. It plays the CRUD-layer
// role the core expects: load a snapshot, run the pure operation, persist
// the result, append the audit event and refresh alerts.
type ClaimHandler struct {
	lifecycle *services.LifecycleService
	gates     *services.GateService
	deadlines *services.DeadlineService
	alerts    *services.AlertService
	claimRepo *repositories.ClaimRepository
	alertRepo *repositories.AlertRepository
	auditRepo *repositories.AuditRepository
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(
	lifecycle *services.LifecycleService,
	gates *services.GateService,
	deadlines *services.DeadlineService,
	alerts *services.AlertService,
	claimRepo *repositories.ClaimRepository,
	alertRepo *repositories.AlertRepository,
	auditRepo *repositories.AuditRepository,
) *ClaimHandler {
	return &ClaimHandler{
		lifecycle: lifecycle,
		gates:     gates,
		deadlines: deadlines,
		alerts:    alerts,
		claimRepo: claimRepo,
		alertRepo: alertRepo,
		auditRepo: auditRepo,
	}
}

// mapDomainError translates core errors into HTTP responses. Gate errors
// always carry their unmet conditions so the frontend can say exactly what
// blocks the move.
func mapDomainError(c *fiber.Ctx, err error) error {
	var gateErr *domain.GateError
	var valErr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrClaimNotFound):
		return response.NotFound(c, "Claim not found")
	case errors.Is(err, domain.ErrClaimLocked):
		return response.Locked(c, "Claim is in a terminal state and cannot be modified")
	case errors.Is(err, domain.ErrDeadlineExpired):
		return response.Locked(c, "60-day report deadline expired; request a reopening")
	case errors.Is(err, domain.ErrIllegalTransition):
		return response.Conflict(c, "Target state is not a valid successor of the current state")
	case errors.As(err, &gateErr):
		return response.ErrorWithDetails(c, fiber.StatusConflict,
			fmt.Sprintf("Gate for %s is not satisfied", gateErr.Stage),
			fiber.Map{"unmet_conditions": gateErr.Unmet})
	case errors.As(err, &valErr):
		return response.UnprocessableEntity(c, valErr.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		return response.Conflict(c, "Claim was modified concurrently, reload and retry")
	case errors.Is(err, domain.ErrNotAuthorized):
		return response.Forbidden(c, "Operation requires an administrator")
	case errors.Is(err, domain.ErrAlertNotFound):
		return response.NotFound(c, "Alert not found")
	default:
		return response.InternalServerError(c, "Operation failed")
	}
}

// applyOp runs one core operation against the stored claim and persists
// the outcome: updated snapshot (optimistic version check), audit event,
// refreshed alerts.
func (h *ClaimHandler) applyOp(c *fiber.Ctx, message string, op func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error)) error {
	caseCode := c.Params("caseCode")
	row, err := h.claimRepo.GetByCaseCode(caseCode)
	if err != nil {
		return mapDomainError(c, err)
	}

	now := time.Now()
	result, err := op(row.ToDomain(), middleware.Actor(c), now)
	if err != nil {
		return mapDomainError(c, err)
	}

	if err := h.claimRepo.Save(row, result.Claim); err != nil {
		return mapDomainError(c, err)
	}
	if err := h.auditRepo.Append(result.Event); err != nil {
		log.Printf("❌ Failed to append audit event for %s: %v", caseCode, err)
	}
	h.refreshAlerts(result.Claim, now)

	return response.Success(c, message, fiber.Map{
		"claim": result.Claim,
		"event": result.Event,
	})
}

// refreshAlerts runs the lazy recompute path after a mutation so anchor
// changes surface without waiting for the sweep
func (h *ClaimHandler) refreshAlerts(claim domain.Claim, now time.Time) {
	previous, err := h.alertRepo.GetByCaseCode(claim.CaseCode)
	if err != nil {
		log.Printf("❌ Failed to load alerts for %s: %v", claim.CaseCode, err)
		return
	}
	instructions := h.alerts.Refresh(claim, now, models.AlertsToDomain(previous))
	if err := h.alertRepo.UpsertMany(instructions); err != nil {
		log.Printf("❌ Failed to refresh alerts for %s: %v", claim.CaseCode, err)
	}
}

// ============================================================
// Creation & reads
// ============================================================

// CreateClaimRequest represents a claim report
type CreateClaimRequest struct {
	CaseCode  string `json:"case_code,omitempty"`
	Type      string `json:"type"`
	DeathDate string `json:"death_date"` // YYYY-MM-DD
}

// Create registers a claim from a manual entry
// @Summary Report a claim
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateClaimRequest true "Claim data"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /claims [post]
func (h *ClaimHandler) Create(c *fiber.Ctx) error {
	return h.create(c, middleware.Actor(c))
}

// CreatePublic registers a claim from the public report form
// @Summary Report a claim (public)
// @Tags Claims
// @Accept json
// @Produce json
// @Param body body CreateClaimRequest true "Claim data"
// @Success 201 {object} response.Response
// @Router /public/claims [post]
func (h *ClaimHandler) CreatePublic(c *fiber.Ctx) error {
	return h.create(c, domain.Actor{Name: "PUBLIC_REPORT", Role: domain.RoleOperator})
}

func (h *ClaimHandler) create(c *fiber.Ctx, actor domain.Actor) error {
	var req CreateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	deathDate, err := time.Parse("2006-01-02", req.DeathDate)
	if err != nil {
		return response.BadRequest(c, "Invalid death_date, use YYYY-MM-DD")
	}

	caseCode := strings.TrimSpace(req.CaseCode)
	if caseCode == "" {
		caseCode = generateCaseCode()
	}

	result, err := h.lifecycle.Create(services.NewClaimInput{
		CaseCode:  caseCode,
		Type:      domain.ClaimType(req.Type),
		DeathDate: deathDate,
	}, actor, time.Now())
	if err != nil {
		return mapDomainError(c, err)
	}

	if _, err := h.claimRepo.Create(result.Claim); err != nil {
		return response.Conflict(c, "A claim with that case code already exists")
	}
	if err := h.auditRepo.Append(result.Event); err != nil {
		log.Printf("❌ Failed to append audit event for %s: %v", caseCode, err)
	}

	log.Printf("✅ Claim %s registered (type: %s, actor: %s)", caseCode, req.Type, actor.Name)
	return response.Created(c, "Claim registered successfully", fiber.Map{
		"claim": result.Claim,
	})
}

// generateCaseCode builds a case code like SIN-2025-3F41A2C8
func generateCaseCode() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("SIN-%d-%s", time.Now().Year(), short)
}

// Get returns one claim with the lazily recomputed deadline view
// @Summary Get claim
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode} [get]
func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	row, err := h.claimRepo.GetByCaseCode(c.Params("caseCode"))
	if err != nil {
		return mapDomainError(c, err)
	}

	claim := row.ToDomain()
	now := time.Now()
	return response.Success(c, "Claim retrieved successfully", fiber.Map{
		"claim":     claim,
		"gates":     h.gates.Evaluate(claim),
		"deadlines": h.deadlines.Compute(claim, now),
	})
}

// List lists claims, optionally filtered by state
// @Summary List claims
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param state query string false "Filter by state"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /claims [get]
func (h *ClaimHandler) List(c *fiber.Ctx) error {
	state := c.Query("state")
	if state != "" && !domain.ClaimState(state).IsValid() {
		return response.BadRequest(c, "Unknown state filter")
	}

	params := pagination.GetParams(c)
	rows, total, err := h.claimRepo.List(state, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list claims")
	}

	claims := make([]domain.Claim, 0, len(rows))
	for i := range rows {
		claims = append(claims, rows[i].ToDomain())
	}
	return response.Success(c, "Claims retrieved successfully", pagination.NewResponse(claims, params, total))
}

// ============================================================
// Lifecycle operations
// ============================================================

// TransitionRequest represents a state change request
type TransitionRequest struct {
	TargetState string `json:"target_state"`
	Reason      string `json:"reason,omitempty"`
}

// Transition attempts a single-step state change
// @Summary Transition claim state
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body TransitionRequest true "Target state"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 423 {object} response.Response
// @Router /claims/{caseCode}/transition [post]
func (h *ClaimHandler) Transition(c *fiber.Ctx) error {
	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Claim state updated", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.AttemptTransition(claim, domain.ClaimState(req.TargetState), actor, req.Reason, now)
	})
}

// SendToInsurer stamps the send-to-insurer anchor
// @Summary Mark expedient sent to insurer
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/send-to-insurer [post]
func (h *ClaimHandler) SendToInsurer(c *fiber.Ctx) error {
	return h.applyOp(c, "Expedient marked as sent to insurer", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.MarkSentToInsurer(claim, actor, now)
	})
}

// DocumentRequest represents a document status update
type DocumentRequest struct {
	Type         string `json:"type"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason,omitempty"`
}

// RecordDocument upserts a document of the expedient
// @Summary Record document status
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body DocumentRequest true "Document update"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/documents [put]
func (h *ClaimHandler) RecordDocument(c *fiber.Ctx) error {
	var req DocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Document recorded", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.RecordDocument(claim, services.DocumentInput{
			Type:         domain.DocumentType(req.Type),
			Status:       domain.DocumentStatus(req.Status),
			RejectReason: req.RejectReason,
		}, actor, now)
	})
}

// BeneficiaryRequest represents a beneficiary upsert
type BeneficiaryRequest struct {
	FullName        string  `json:"full_name"`
	PercentageShare float64 `json:"percentage_share"`
}

// RecordBeneficiary adds or updates a beneficiary
// @Summary Record beneficiary
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body BeneficiaryRequest true "Beneficiary data"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/beneficiaries [put]
func (h *ClaimHandler) RecordBeneficiary(c *fiber.Ctx) error {
	var req BeneficiaryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Beneficiary recorded", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.RecordBeneficiary(claim, services.BeneficiaryInput{
			FullName:        req.FullName,
			PercentageShare: req.PercentageShare,
		}, actor, now)
	})
}

// SignatureRequest represents a signature receipt
type SignatureRequest struct {
	FullName string `json:"full_name"`
}

// RecordSignature marks a beneficiary signature as received
// @Summary Record beneficiary signature
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body SignatureRequest true "Beneficiary name"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/signatures [post]
func (h *ClaimHandler) RecordSignature(c *fiber.Ctx) error {
	var req SignatureRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Signature recorded", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.RecordSignature(claim, req.FullName, actor, now)
	})
}

// LiquidationRequest represents the insurer's liquidation response
type LiquidationRequest struct {
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	InsurerNotes string  `json:"insurer_notes,omitempty"`
}

// RecordLiquidation upserts the claim's liquidation
// @Summary Record liquidation
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body LiquidationRequest true "Liquidation data"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/liquidation [put]
func (h *ClaimHandler) RecordLiquidation(c *fiber.Ctx) error {
	var req LiquidationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Liquidation recorded", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.RecordLiquidation(claim, services.LiquidationInput{
			Status:       domain.LiquidationStatus(req.Status),
			Amount:       req.Amount,
			InsurerNotes: req.InsurerNotes,
		}, actor, now)
	})
}

// PaymentRequest represents a payment status update
type PaymentRequest struct {
	Status string `json:"status"`
}

// RecordPayment upserts the claim's payment
// @Summary Record payment
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body PaymentRequest true "Payment data"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/payment [put]
func (h *ClaimHandler) RecordPayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Payment recorded", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.RecordPayment(claim, services.PaymentInput{
			Status: domain.PaymentStatus(req.Status),
		}, actor, now)
	})
}

// ReasonRequest carries the mandatory reason of an invalidation or reopening
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// Invalidate moves a claim to INVALID
// @Summary Invalidate claim
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body ReasonRequest true "Invalidation reason"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/invalidate [post]
func (h *ClaimHandler) Invalidate(c *fiber.Ctx) error {
	var req ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Claim invalidated", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.Invalidate(claim, actor, req.Reason, now)
	})
}

// Reopen waives an expired 60-day deadline (admin only)
// @Summary Reopen expired claim
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Param body body ReasonRequest true "Reopening reason"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /claims/{caseCode}/reopen [post]
func (h *ClaimHandler) Reopen(c *fiber.Ctx) error {
	var req ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	return h.applyOp(c, "Claim reopened", func(claim domain.Claim, actor domain.Actor, now time.Time) (services.TransitionResult, error) {
		return h.lifecycle.Reopen(claim, actor, req.Reason, now)
	})
}

// ============================================================
// Read-only evaluations
// ============================================================

// Gates returns the unmet conditions of every gated stage
// @Summary Evaluate stage gates
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/gates [get]
func (h *ClaimHandler) Gates(c *fiber.Ctx) error {
	row, err := h.claimRepo.GetByCaseCode(c.Params("caseCode"))
	if err != nil {
		return mapDomainError(c, err)
	}

	return response.Success(c, "Gates evaluated", fiber.Map{
		"gates": h.gates.Evaluate(row.ToDomain()),
	})
}

// Deadlines returns the three regulatory clocks at this instant
// @Summary Compute deadlines
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param caseCode path string true "Case code"
// @Success 200 {object} response.Response
// @Router /claims/{caseCode}/deadlines [get]
func (h *ClaimHandler) Deadlines(c *fiber.Ctx) error {
	row, err := h.claimRepo.GetByCaseCode(c.Params("caseCode"))
	if err != nil {
		return mapDomainError(c, err)
	}

	return response.Success(c, "Deadlines computed", fiber.Map{
		"deadlines": h.deadlines.Compute(row.ToDomain(), time.Now()),
	})
}
