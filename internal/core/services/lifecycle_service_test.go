package services

import (
	"errors"
	"testing"
	"time"

	"univida-claims/internal/core/domain"
)

var (
	testNow      = time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	testOperator = domain.Actor{Name: "ana.quispe", Role: domain.RoleOperator}
	testAdmin    = domain.Actor{Name: "admin.mamani", Role: domain.RoleAdmin}
)

func newLifecycleService() *LifecycleService {
	return NewLifecycleService(NewGateService(), NewDeadlineService(), NewAuditService())
}

// readyClaim builds a claim whose gates up to the given state are satisfied
// and whose 60-day clock is alive
func readyClaim(state domain.ClaimState) domain.Claim {
	claim := claimWithDocs(domain.ClaimTypeNatural, domain.DocumentReceived)
	claim.State = state
	claim.DeathDate = testNow.AddDate(0, 0, -10)
	claim.ReportDate = testNow.AddDate(0, 0, -9)
	claim.Beneficiaries = []domain.Beneficiary{
		{FullName: "Maria Flores", PercentageShare: 60, SignatureStatus: domain.SignatureReceived},
		{FullName: "Jorge Flores", PercentageShare: 40, SignatureStatus: domain.SignatureReceived},
	}
	return claim
}

func TestCreateClaim(t *testing.T) {
	svc := newLifecycleService()

	t.Run("initializes the checklist for the claim type", func(t *testing.T) {
		result, err := svc.Create(NewClaimInput{
			CaseCode:  "SIN-2025-0100",
			Type:      domain.ClaimTypeAccident,
			DeathDate: testNow.AddDate(0, 0, -3),
		}, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Claim.State != domain.StateReceived {
			t.Errorf("state = %s, want %s", result.Claim.State, domain.StateReceived)
		}
		if got, want := len(result.Claim.Documents), len(domain.RequiredDocumentTypes(domain.ClaimTypeAccident)); got != want {
			t.Errorf("checklist size = %d, want %d", got, want)
		}
		for _, doc := range result.Claim.Documents {
			if !doc.Required || doc.Status != domain.DocumentPending {
				t.Errorf("document %s = %+v, want required and pending", doc.Type, doc)
			}
		}
		if result.Event.Action != domain.ActionClaimCreated {
			t.Errorf("event action = %s, want %s", result.Event.Action, domain.ActionClaimCreated)
		}
	})

	tests := []struct {
		name  string
		input NewClaimInput
	}{
		{
			name:  "rejects an empty case code",
			input: NewClaimInput{CaseCode: "  ", Type: domain.ClaimTypeNatural, DeathDate: testNow.AddDate(0, 0, -1)},
		},
		{
			name:  "rejects an unknown claim type",
			input: NewClaimInput{CaseCode: "SIN-2025-0101", Type: "SUICIDE", DeathDate: testNow.AddDate(0, 0, -1)},
		},
		{
			name:  "rejects a future death date",
			input: NewClaimInput{CaseCode: "SIN-2025-0102", Type: domain.ClaimTypeNatural, DeathDate: testNow.AddDate(0, 0, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.input, testOperator, testNow)
			if !errors.Is(err, domain.ErrValidationFailed) {
				t.Errorf("error = %v, want validation failure", err)
			}
		})
	}
}

func TestAttemptTransitionOrder(t *testing.T) {
	svc := newLifecycleService()

	t.Run("advances one step in process order", func(t *testing.T) {
		claim := readyClaim(domain.StateReceived)
		result, err := svc.AttemptTransition(claim, domain.StateValidating, testOperator, "", testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.State != domain.StateValidating {
			t.Errorf("state = %s, want %s", result.Claim.State, domain.StateValidating)
		}
	})

	t.Run("rejects skipping a stage", func(t *testing.T) {
		claim := readyClaim(domain.StateReceived)
		_, err := svc.AttemptTransition(claim, domain.StateBeneficiaries, testOperator, "", testNow)
		if !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("error = %v, want %v", err, domain.ErrIllegalTransition)
		}
	})

	t.Run("rejects moving backwards", func(t *testing.T) {
		claim := readyClaim(domain.StateBeneficiaries)
		_, err := svc.AttemptTransition(claim, domain.StateValidating, testOperator, "", testNow)
		if !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("error = %v, want %v", err, domain.ErrIllegalTransition)
		}
	})

	t.Run("rejects an unknown target state", func(t *testing.T) {
		claim := readyClaim(domain.StateReceived)
		_, err := svc.AttemptTransition(claim, "ARCHIVED", testOperator, "", testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})

	t.Run("terminal states reject every target", func(t *testing.T) {
		for _, terminal := range []domain.ClaimState{domain.StateClosed, domain.StateInvalid} {
			claim := readyClaim(terminal)
			for _, target := range []domain.ClaimState{
				domain.StateReceived, domain.StateValidating, domain.StateBeneficiaries,
				domain.StateLiquidation, domain.StatePayment, domain.StateClosed, domain.StateInvalid,
			} {
				if _, err := svc.AttemptTransition(claim, target, testOperator, "reason", testNow); !errors.Is(err, domain.ErrClaimLocked) {
					t.Errorf("%s -> %s: error = %v, want %v", terminal, target, err, domain.ErrClaimLocked)
				}
			}
		}
	})
}

func TestAttemptTransitionGates(t *testing.T) {
	svc := newLifecycleService()

	t.Run("gate failure reports the unmet conditions", func(t *testing.T) {
		claim := readyClaim(domain.StateValidating)
		claim.Documents = claimWithDocs(domain.ClaimTypeNatural, domain.DocumentPending).Documents

		_, err := svc.AttemptTransition(claim, domain.StateBeneficiaries, testOperator, "", testNow)
		var gateErr *domain.GateError
		if !errors.As(err, &gateErr) {
			t.Fatalf("error = %v, want gate error", err)
		}
		if gateErr.Stage != domain.StateBeneficiaries {
			t.Errorf("stage = %s, want %s", gateErr.Stage, domain.StateBeneficiaries)
		}
		if !hasCondition(gateErr.Unmet, domain.ConditionDocumentsIncomplete) {
			t.Errorf("unmet = %v, want %s", gateErr.Unmet, domain.ConditionDocumentsIncomplete)
		}
		if !errors.Is(err, domain.ErrGateNotSatisfied) {
			t.Errorf("gate error does not unwrap to %v", domain.ErrGateNotSatisfied)
		}
	})

	t.Run("rejected transition leaves the snapshot untouched", func(t *testing.T) {
		claim := readyClaim(domain.StateValidating)
		claim.Documents = claimWithDocs(domain.ClaimTypeNatural, domain.DocumentPending).Documents

		result, err := svc.AttemptTransition(claim, domain.StateBeneficiaries, testOperator, "", testNow)
		if err == nil {
			t.Fatal("expected an error")
		}
		if result.Claim.State != "" {
			t.Errorf("rejected result carries a claim: %+v", result.Claim)
		}
		if claim.State != domain.StateValidating {
			t.Errorf("input snapshot mutated to %s", claim.State)
		}
	})

	t.Run("payment transition enforces the 100 percent share total", func(t *testing.T) {
		claim := readyClaim(domain.StateLiquidation)
		claim.Liquidation = &domain.Liquidation{Status: domain.LiquidationApproved, Amount: 35000}
		claim.Beneficiaries[1].PercentageShare = 30 // totals 90

		_, err := svc.AttemptTransition(claim, domain.StatePayment, testOperator, "", testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Fatalf("error = %v, want validation failure", err)
		}

		claim.Beneficiaries[1].PercentageShare = 40
		result, err := svc.AttemptTransition(claim, domain.StatePayment, testOperator, "", testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.State != domain.StatePayment {
			t.Errorf("state = %s, want %s", result.Claim.State, domain.StatePayment)
		}
	})

	t.Run("closing stamps the closed timestamp", func(t *testing.T) {
		claim := readyClaim(domain.StatePayment)
		claim.Liquidation = &domain.Liquidation{Status: domain.LiquidationApproved, Amount: 35000}
		claim.Payment = &domain.Payment{Status: domain.PaymentExecuted}

		result, err := svc.AttemptTransition(claim, domain.StateClosed, testOperator, "", testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.ClosedAt == nil || !result.Claim.ClosedAt.Equal(testNow) {
			t.Errorf("closed at = %v, want %v", result.Claim.ClosedAt, testNow)
		}
	})
}

func TestAttemptTransitionExpiredDeadline(t *testing.T) {
	svc := newLifecycleService()

	claim := readyClaim(domain.StateReceived)
	claim.DeathDate = testNow.AddDate(0, 0, -61)

	_, err := svc.AttemptTransition(claim, domain.StateValidating, testOperator, "", testNow)
	if !errors.Is(err, domain.ErrDeadlineExpired) {
		t.Fatalf("error = %v, want %v", err, domain.ErrDeadlineExpired)
	}

	// A waived deadline unfreezes the claim
	claim.SixtyDayDeadlineMet = true
	if _, err := svc.AttemptTransition(claim, domain.StateValidating, testOperator, "", testNow); err != nil {
		t.Errorf("unexpected error after waiver: %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	svc := newLifecycleService()

	t.Run("reachable from received and validating", func(t *testing.T) {
		for _, state := range []domain.ClaimState{domain.StateReceived, domain.StateValidating} {
			claim := readyClaim(state)
			result, err := svc.Invalidate(claim, testOperator, "duplicate report", testNow)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", state, err)
			}
			if result.Claim.State != domain.StateInvalid {
				t.Errorf("state = %s, want %s", result.Claim.State, domain.StateInvalid)
			}
			if result.Claim.InvalidReason != "duplicate report" {
				t.Errorf("reason = %q", result.Claim.InvalidReason)
			}
			if result.Claim.ClosedAt == nil {
				t.Error("closed at not stamped")
			}
		}
	})

	t.Run("unreachable from later stages", func(t *testing.T) {
		claim := readyClaim(domain.StateBeneficiaries)
		_, err := svc.Invalidate(claim, testOperator, "duplicate report", testNow)
		if !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("error = %v, want %v", err, domain.ErrIllegalTransition)
		}
	})

	t.Run("requires a non-empty reason", func(t *testing.T) {
		claim := readyClaim(domain.StateReceived)
		_, err := svc.Invalidate(claim, testOperator, "   ", testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})

	t.Run("reachable through a transition to INVALID", func(t *testing.T) {
		claim := readyClaim(domain.StateValidating)
		result, err := svc.AttemptTransition(claim, domain.StateInvalid, testOperator, "fraudulent report", testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.State != domain.StateInvalid {
			t.Errorf("state = %s, want %s", result.Claim.State, domain.StateInvalid)
		}
	})
}

func TestMarkSentToInsurer(t *testing.T) {
	svc := newLifecycleService()

	t.Run("stamps the anchor and completes the 60-day clock", func(t *testing.T) {
		claim := readyClaim(domain.StateLiquidation)
		result, err := svc.MarkSentToInsurer(claim, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.SentToInsurerAt == nil || !result.Claim.SentToInsurerAt.Equal(testNow) {
			t.Errorf("sent at = %v, want %v", result.Claim.SentToInsurerAt, testNow)
		}
		if !result.Claim.SixtyDayDeadlineMet {
			t.Error("60-day clock not completed")
		}
	})

	t.Run("rejects a second stamp", func(t *testing.T) {
		claim := readyClaim(domain.StateLiquidation)
		sentAt := testNow.AddDate(0, 0, -2)
		claim.SentToInsurerAt = &sentAt

		_, err := svc.MarkSentToInsurer(claim, testOperator, testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})

	t.Run("rejected after expiry", func(t *testing.T) {
		claim := readyClaim(domain.StateLiquidation)
		claim.DeathDate = testNow.AddDate(0, 0, -61)

		_, err := svc.MarkSentToInsurer(claim, testOperator, testNow)
		if !errors.Is(err, domain.ErrDeadlineExpired) {
			t.Errorf("error = %v, want %v", err, domain.ErrDeadlineExpired)
		}
	})
}

func TestRecordDocument(t *testing.T) {
	svc := newLifecycleService()

	t.Run("updates an existing checklist entry without mutating the input", func(t *testing.T) {
		claim := readyClaim(domain.StateValidating)
		claim.Documents = claimWithDocs(domain.ClaimTypeNatural, domain.DocumentPending).Documents

		result, err := svc.RecordDocument(claim, DocumentInput{
			Type:   domain.DocDeathCertificate,
			Status: domain.DocumentReceived,
		}, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Claim.Documents[0].Status != domain.DocumentReceived {
			t.Errorf("updated status = %s, want %s", result.Claim.Documents[0].Status, domain.DocumentReceived)
		}
		if claim.Documents[0].Status != domain.DocumentPending {
			t.Errorf("input snapshot mutated: %s", claim.Documents[0].Status)
		}
	})

	t.Run("appends an extra document outside the mandatory set", func(t *testing.T) {
		claim := readyClaim(domain.StateValidating)
		before := len(claim.Documents)

		result, err := svc.RecordDocument(claim, DocumentInput{
			Type:   domain.DocPoliceReport,
			Status: domain.DocumentReceived,
		}, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Claim.Documents) != before+1 {
			t.Fatalf("documents = %d, want %d", len(result.Claim.Documents), before+1)
		}
		// A police report is optional on a natural-death claim
		extra := result.Claim.Documents[before]
		if extra.Required {
			t.Errorf("document %s flagged required on a %s claim", extra.Type, claim.Type)
		}
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		claim := readyClaim(domain.StateValidating)
		_, err := svc.RecordDocument(claim, DocumentInput{
			Type:   domain.DocClaimForm,
			Status: domain.DocumentRejected,
		}, testOperator, testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})
}

func TestRecordBeneficiary(t *testing.T) {
	svc := newLifecycleService()

	tests := []struct {
		name    string
		input   BeneficiaryInput
		wantErr bool
	}{
		{name: "accepts a valid share", input: BeneficiaryInput{FullName: "Carla Rojas", PercentageShare: 33.33}},
		{name: "rejects a zero share", input: BeneficiaryInput{FullName: "Carla Rojas", PercentageShare: 0}, wantErr: true},
		{name: "rejects a share above 100", input: BeneficiaryInput{FullName: "Carla Rojas", PercentageShare: 100.01}, wantErr: true},
		{name: "rejects an empty name", input: BeneficiaryInput{FullName: " ", PercentageShare: 50}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := readyClaim(domain.StateBeneficiaries)
			_, err := svc.RecordBeneficiary(claim, tt.input, testOperator, testNow)
			if tt.wantErr != (err != nil) {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("updates an existing beneficiary by name", func(t *testing.T) {
		claim := readyClaim(domain.StateBeneficiaries)
		result, err := svc.RecordBeneficiary(claim, BeneficiaryInput{
			FullName:        "Maria Flores",
			PercentageShare: 70,
		}, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Claim.Beneficiaries) != 2 {
			t.Fatalf("beneficiaries = %d, want 2", len(result.Claim.Beneficiaries))
		}
		if result.Claim.Beneficiaries[0].PercentageShare != 70 {
			t.Errorf("share = %v, want 70", result.Claim.Beneficiaries[0].PercentageShare)
		}
		// Updating a share never resets the collected signature
		if result.Claim.Beneficiaries[0].SignatureStatus != domain.SignatureReceived {
			t.Errorf("signature status = %s", result.Claim.Beneficiaries[0].SignatureStatus)
		}
	})
}

func TestRecordSignature(t *testing.T) {
	svc := newLifecycleService()

	t.Run("the last signature stamps the payment clock anchor", func(t *testing.T) {
		claim := readyClaim(domain.StateBeneficiaries)
		claim.Beneficiaries[0].SignatureStatus = domain.SignaturePending
		claim.Beneficiaries[1].SignatureStatus = domain.SignaturePending

		first, err := svc.RecordSignature(claim, "Maria Flores", testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Claim.SignaturesReceivedAt != nil {
			t.Error("anchor stamped before all signatures arrived")
		}

		later := testNow.Add(2 * time.Hour)
		second, err := svc.RecordSignature(first.Claim, "Jorge Flores", testOperator, later)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second.Claim.SignaturesReceivedAt == nil || !second.Claim.SignaturesReceivedAt.Equal(later) {
			t.Errorf("anchor = %v, want %v", second.Claim.SignaturesReceivedAt, later)
		}
	})

	t.Run("rejects an unknown beneficiary", func(t *testing.T) {
		claim := readyClaim(domain.StateBeneficiaries)
		_, err := svc.RecordSignature(claim, "Nadie Perez", testOperator, testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})
}

func TestRecordLiquidation(t *testing.T) {
	svc := newLifecycleService()

	t.Run("first record stamps the liquidation anchor", func(t *testing.T) {
		claim := readyClaim(domain.StateLiquidation)
		result, err := svc.RecordLiquidation(claim, LiquidationInput{
			Status: domain.LiquidationSent,
			Amount: 35000.559,
		}, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.LiquidationDate == nil || !result.Claim.LiquidationDate.Equal(testNow) {
			t.Errorf("anchor = %v, want %v", result.Claim.LiquidationDate, testNow)
		}
		if result.Claim.Liquidation.Amount != 35000.56 {
			t.Errorf("amount = %v, want 35000.56", result.Claim.Liquidation.Amount)
		}

		// An observed-then-approved update keeps the original anchor
		later := testNow.AddDate(0, 0, 3)
		updated, err := svc.RecordLiquidation(result.Claim, LiquidationInput{
			Status: domain.LiquidationApproved,
			Amount: 35000.56,
		}, testOperator, later)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.Claim.LiquidationDate.Equal(testNow) {
			t.Errorf("anchor moved to %v", updated.Claim.LiquidationDate)
		}
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		claim := readyClaim(domain.StateLiquidation)
		_, err := svc.RecordLiquidation(claim, LiquidationInput{
			Status: domain.LiquidationSent,
			Amount: 0,
		}, testOperator, testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})
}

func TestRecordPayment(t *testing.T) {
	svc := newLifecycleService()

	t.Run("execution requires an approved liquidation", func(t *testing.T) {
		claim := readyClaim(domain.StatePayment)
		claim.Liquidation = &domain.Liquidation{Status: domain.LiquidationObserved, Amount: 35000}

		_, err := svc.RecordPayment(claim, PaymentInput{Status: domain.PaymentExecuted}, testOperator, testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})

	t.Run("execution requires shares totalling 100", func(t *testing.T) {
		claim := readyClaim(domain.StatePayment)
		claim.Liquidation = &domain.Liquidation{Status: domain.LiquidationApproved, Amount: 35000}
		claim.Beneficiaries[1].PercentageShare = 39.99

		_, err := svc.RecordPayment(claim, PaymentInput{Status: domain.PaymentExecuted}, testOperator, testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})

	t.Run("execution stamps the payment anchor", func(t *testing.T) {
		claim := readyClaim(domain.StatePayment)
		claim.Liquidation = &domain.Liquidation{Status: domain.LiquidationApproved, Amount: 35000}

		result, err := svc.RecordPayment(claim, PaymentInput{Status: domain.PaymentExecuted}, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.PaymentDate == nil || !result.Claim.PaymentDate.Equal(testNow) {
			t.Errorf("anchor = %v, want %v", result.Claim.PaymentDate, testNow)
		}
	})

	t.Run("a pending payment needs no preconditions", func(t *testing.T) {
		claim := readyClaim(domain.StatePayment)
		result, err := svc.RecordPayment(claim, PaymentInput{Status: domain.PaymentPending}, testOperator, testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Claim.PaymentDate != nil {
			t.Error("pending payment stamped the anchor")
		}
	})
}

func TestReopen(t *testing.T) {
	svc := newLifecycleService()

	expired := func() domain.Claim {
		claim := readyClaim(domain.StateValidating)
		claim.DeathDate = testNow.AddDate(0, 0, -80)
		return claim
	}

	t.Run("admin waives an expired deadline", func(t *testing.T) {
		claim := expired()
		result, err := svc.Reopen(claim, testAdmin, "judicial order 114/2025", testNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Claim.SixtyDayDeadlineMet {
			t.Error("deadline not waived")
		}
		if result.Claim.State != domain.StateValidating {
			t.Errorf("state changed to %s", result.Claim.State)
		}
		if !result.Claim.DeathDate.Equal(claim.DeathDate) {
			t.Error("death date anchor rewritten")
		}
	})

	t.Run("operators are not authorized", func(t *testing.T) {
		_, err := svc.Reopen(expired(), testOperator, "judicial order 114/2025", testNow)
		if !errors.Is(err, domain.ErrNotAuthorized) {
			t.Errorf("error = %v, want %v", err, domain.ErrNotAuthorized)
		}
	})

	t.Run("requires a reason", func(t *testing.T) {
		_, err := svc.Reopen(expired(), testAdmin, "", testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})

	t.Run("rejects a claim that has not expired", func(t *testing.T) {
		_, err := svc.Reopen(readyClaim(domain.StateValidating), testAdmin, "judicial order 114/2025", testNow)
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("error = %v, want validation failure", err)
		}
	})
}
