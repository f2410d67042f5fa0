package payment

import (
	"context"
	"fmt"

	"photodrop/internal/domain"
	"photodrop/internal/gateway"
	"photodrop/internal/session"
)

// CardTokenSource produces the payment-method token collected by the card
// entry surface.
type CardTokenSource func(ctx context.Context) (string, error)

// CardAdapter is the thin standard-card passthrough: collect a token,
// create an intent, confirm. No capability negotiation is needed.
type CardAdapter struct {
	intents  *IntentClient
	gw       gateway.Gateway
	tokens   CardTokenSource
	currency string
	loggerf  func(format string, args ...interface{})
}

func NewCardAdapter(intents *IntentClient, gw gateway.Gateway, tokens CardTokenSource, currency string, loggerf func(format string, args ...interface{})) *CardAdapter {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &CardAdapter{intents: intents, gw: gw, tokens: tokens, currency: currency, loggerf: loggerf}
}

func (a *CardAdapter) Method() domain.PaymentMethod {
	return domain.PaymentMethodCard
}

func (a *CardAdapter) Available(_ context.Context, amountMinor int64, currency string) bool {
	return a.tokens != nil && amountMinor > 0 && currency != ""
}

func (a *CardAdapter) Confirm(ctx context.Context, photoIDs []domain.PhotoID, amountMinor int64, sess *session.Session) (*Confirmation, error) {
	if len(photoIDs) == 0 {
		return nil, fmt.Errorf("card confirm invoked with empty photo set")
	}

	token, err := a.tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayConfirmation, err)
	}

	clientSecret, err := a.intents.Create(ctx, "card", a.currency, amountMinor, sess)
	if err != nil {
		return nil, err
	}
	intentRef, _ := gateway.RefFromClientSecret(clientSecret)

	intent, err := a.gw.ConfirmIntent(ctx, clientSecret, token)
	if err != nil {
		return nil, &Error{IntentRef: intentRef, Err: fmt.Errorf("%w: %v", ErrGatewayConfirmation, err)}
	}
	if intent.Status != gateway.IntentStatusSucceeded {
		return nil, &Error{IntentRef: intent.Ref, GatewayStatus: string(intent.Status), Err: ErrIncompleteIntent}
	}

	a.loggerf("level=info msg=card payment succeeded intent=%s amount=%d", intent.Ref, amountMinor)
	return &Confirmation{
		IntentRef:     intent.Ref,
		Method:        a.Method(),
		AmountMinor:   amountMinor,
		GatewayStatus: string(intent.Status),
	}, nil
}
