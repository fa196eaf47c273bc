package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	ErrClaimNotFound     = errors.New("claim not found")
	ErrClaimLocked       = errors.New("claim is terminal and rejects all mutation")
	ErrIllegalTransition = errors.New("target state is not a valid successor")
	ErrGateNotSatisfied  = errors.New("destination gate preconditions not met")
	ErrValidationFailed  = errors.New("validation failed")
	ErrDeadlineExpired   = errors.New("60-day report deadline expired")
	ErrVersionConflict   = errors.New("claim was modified concurrently")
	ErrNotAuthorized     = errors.New("actor is not authorized for this operation")
	ErrAlertNotFound     = errors.New("alert not found")
)

// UnmetCondition tags the specific precondition blocking a stage gate
type UnmetCondition string

const (
	ConditionDocumentsIncomplete    UnmetCondition = "documents_incomplete"
	ConditionNoBeneficiaries        UnmetCondition = "no_beneficiaries"
	ConditionSignaturesIncomplete   UnmetCondition = "signatures_incomplete"
	ConditionLiquidationMissing     UnmetCondition = "liquidation_missing"
	ConditionLiquidationNotApproved UnmetCondition = "liquidation_not_approved"
	ConditionPaymentMissing         UnmetCondition = "payment_missing"
	ConditionPaymentNotExecuted     UnmetCondition = "payment_not_executed"
)

// GateError reports which preconditions block entry into a stage.
// It always enumerates the failing conditions so callers can render
// an actionable message.
type GateError struct {
	Stage ClaimState
	Unmet []UnmetCondition
}

func (e *GateError) Error() string {
	tags := make([]string, len(e.Unmet))
	for i, c := range e.Unmet {
		tags[i] = string(c)
	}
	return fmt.Sprintf("gate for %s not satisfied: %s", e.Stage, strings.Join(tags, ", "))
}

func (e *GateError) Unwrap() error {
	return ErrGateNotSatisfied
}

// ValidationError reports a field-level business rule violation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
