package payment

import (
	"context"

	"photodrop/internal/domain"
	"photodrop/internal/session"
)

// Confirmation is the common success result of every instrument.
type Confirmation struct {
	IntentRef     string
	Method        domain.PaymentMethod
	AmountMinor   int64
	GatewayStatus string
}

// Adapter is the capability-polymorphic face of one payment instrument.
// Available is a pure probe with no charge side effect; Confirm drives the
// instrument's sub-protocol to a confirmation or a typed failure. Callers
// must treat Available()==false as "offer something else", never as an
// error.
type Adapter interface {
	Method() domain.PaymentMethod
	Available(ctx context.Context, amountMinor int64, currency string) bool
	Confirm(ctx context.Context, photoIDs []domain.PhotoID, amountMinor int64, sess *session.Session) (*Confirmation, error)
}
