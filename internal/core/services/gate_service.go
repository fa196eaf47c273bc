package services

import (
	"univida-claims/internal/core/domain"
)

// GateService evaluates stage-entry preconditions. All methods are pure:
// they read the claim snapshot and never touch storage, so callers can
// pre-compute UI affordances without attempting a mutation.
type GateService struct{}

// NewGateService creates a new gate service
func NewGateService() *GateService {
	return &GateService{}
}

// GatedStages lists the stages whose entry is gated, in process order
var GatedStages = []domain.ClaimState{
	domain.StateBeneficiaries,
	domain.StateLiquidation,
	domain.StatePayment,
	domain.StateClosed,
}

// GateFor returns the unmet conditions blocking entry into stage.
// An empty result means the gate is open. Ungated stages are always open.
func (s *GateService) GateFor(claim domain.Claim, stage domain.ClaimState) []domain.UnmetCondition {
	switch stage {
	case domain.StateBeneficiaries:
		return s.beneficiariesGate(claim)
	case domain.StateLiquidation:
		return s.liquidationGate(claim)
	case domain.StatePayment:
		return s.paymentGate(claim)
	case domain.StateClosed:
		return s.closedGate(claim)
	}
	return nil
}

// Evaluate returns the gate result for every gated stage at once
func (s *GateService) Evaluate(claim domain.Claim) map[domain.ClaimState][]domain.UnmetCondition {
	gates := make(map[domain.ClaimState][]domain.UnmetCondition, len(GatedStages))
	for _, stage := range GatedStages {
		gates[stage] = s.GateFor(claim, stage)
	}
	return gates
}

// beneficiariesGate: every mandatory document for the claim type is RECEIVED
func (s *GateService) beneficiariesGate(claim domain.Claim) []domain.UnmetCondition {
	if !documentsComplete(claim) {
		return []domain.UnmetCondition{domain.ConditionDocumentsIncomplete}
	}
	return nil
}

// liquidationGate: documents complete, at least one beneficiary, all signed
func (s *GateService) liquidationGate(claim domain.Claim) []domain.UnmetCondition {
	var unmet []domain.UnmetCondition
	unmet = append(unmet, s.beneficiariesGate(claim)...)

	if len(claim.Beneficiaries) == 0 {
		unmet = append(unmet, domain.ConditionNoBeneficiaries)
		return unmet
	}
	for _, b := range claim.Beneficiaries {
		if b.SignatureStatus != domain.SignatureReceived {
			unmet = append(unmet, domain.ConditionSignaturesIncomplete)
			break
		}
	}
	return unmet
}

// paymentGate: an APPROVED liquidation exists
func (s *GateService) paymentGate(claim domain.Claim) []domain.UnmetCondition {
	if claim.Liquidation == nil {
		return []domain.UnmetCondition{domain.ConditionLiquidationMissing}
	}
	if claim.Liquidation.Status != domain.LiquidationApproved {
		return []domain.UnmetCondition{domain.ConditionLiquidationNotApproved}
	}
	return nil
}

// closedGate: an EXECUTED payment exists
func (s *GateService) closedGate(claim domain.Claim) []domain.UnmetCondition {
	if claim.Payment == nil {
		return []domain.UnmetCondition{domain.ConditionPaymentMissing}
	}
	if claim.Payment.Status != domain.PaymentExecuted {
		return []domain.UnmetCondition{domain.ConditionPaymentNotExecuted}
	}
	return nil
}

// documentsComplete checks that every mandatory document type for the claim
// type is present with status RECEIVED, and that no document flagged required
// is still pending or rejected.
func documentsComplete(claim domain.Claim) bool {
	byType := make(map[domain.DocumentType]domain.Document, len(claim.Documents))
	for _, doc := range claim.Documents {
		byType[doc.Type] = doc
	}

	for _, required := range domain.RequiredDocumentTypes(claim.Type) {
		doc, ok := byType[required]
		if !ok || doc.Status != domain.DocumentReceived {
			return false
		}
	}
	for _, doc := range claim.Documents {
		if doc.Required && doc.Status != domain.DocumentReceived {
			return false
		}
	}
	return true
}
