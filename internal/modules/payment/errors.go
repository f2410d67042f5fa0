package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable means the capability probe came back negative.
	// Not user-fatal: the caller falls back to another instrument.
	ErrGatewayUnavailable = errors.New("payment method not available")

	ErrIntentCreation      = errors.New("payment intent creation failed")
	ErrGatewayConfirmation = errors.New("payment gateway confirmation failed")

	// ErrIncompleteIntent covers every confirmed-intent status other than
	// succeeded, including requires_action which this client cannot service.
	ErrIncompleteIntent = errors.New("payment intent did not succeed")

	ErrWalletCancelled = errors.New("wallet payment sheet dismissed")
)

// Error tags an adapter failure with the in-flight intent ref when one
// exists, so the orchestrator can journal it for later re-query.
type Error struct {
	IntentRef     string
	GatewayStatus string
	Err           error
}

func (e *Error) Error() string {
	if e.IntentRef == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (intent %s, status %q)", e.Err, e.IntentRef, e.GatewayStatus)
}

func (e *Error) Unwrap() error { return e.Err }
