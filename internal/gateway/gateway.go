package gateway

import "context"

type IntentStatus string

const (
	IntentStatusSucceeded      IntentStatus = "succeeded"
	IntentStatusRequiresAction IntentStatus = "requires_action"
)

// Intent is the gateway-side view of an in-flight charge after a
// confirmation round-trip. Ref is borrowed: valid for re-querying the
// outcome, never mutated by the client.
type Intent struct {
	Ref    string
	Status IntentStatus
}

// Gateway is the payment processor contract. WalletAvailable is a pure
// capability probe: a negative answer means the express wallet is not
// offerable, it is not a failure.
type Gateway interface {
	WalletAvailable(ctx context.Context, amountMinor int64, currency string) bool
	ConfirmIntent(ctx context.Context, clientSecret, paymentMethodToken string) (*Intent, error)
}
