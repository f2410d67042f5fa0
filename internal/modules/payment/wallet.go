package payment

import (
	"context"
	"fmt"

	"photodrop/internal/domain"
	"photodrop/internal/gateway"
	"photodrop/internal/session"
)

// Express wallet charges ride the card rails; the backend sees the same
// instrument tag the original card flow sends.
const walletWireTag = "card"

// WalletEvent is raised by the gateway's payment sheet when the user
// authorizes the charge. It carries the wallet-issued payment-method token
// and nothing else; the amount was fixed when the sheet was presented.
type WalletEvent struct {
	PaymentMethodToken string
}

// PaymentSheet is the wallet surface. Subscribe registers for the
// user-authorization event exactly once; the returned cancel func
// deregisters, so confirm logic can never fire against a stale checkout.
type PaymentSheet interface {
	Subscribe() (<-chan WalletEvent, func())
}

// WalletAdapter runs the express-wallet three-party handshake: probe the
// gateway for wallet capability, wait for the sheet's authorization event,
// create a server-side intent, confirm it with the wallet token.
type WalletAdapter struct {
	intents  *IntentClient
	gw       gateway.Gateway
	sheet    PaymentSheet
	currency string
	loggerf  func(format string, args ...interface{})
}

func NewWalletAdapter(intents *IntentClient, gw gateway.Gateway, sheet PaymentSheet, currency string, loggerf func(format string, args ...interface{})) *WalletAdapter {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &WalletAdapter{intents: intents, gw: gw, sheet: sheet, currency: currency, loggerf: loggerf}
}

func (a *WalletAdapter) Method() domain.PaymentMethod {
	return domain.PaymentMethodExpressWallet
}

func (a *WalletAdapter) Available(ctx context.Context, amountMinor int64, currency string) bool {
	return a.sheet != nil && a.gw.WalletAvailable(ctx, amountMinor, currency)
}

func (a *WalletAdapter) Confirm(ctx context.Context, photoIDs []domain.PhotoID, amountMinor int64, sess *session.Session) (*Confirmation, error) {
	if len(photoIDs) == 0 {
		// Contract violation, not a user-facing failure: callers validate
		// the selection before choosing an instrument.
		return nil, fmt.Errorf("wallet confirm invoked with empty photo set")
	}

	events, cancel := a.sheet.Subscribe()
	defer cancel()

	var event WalletEvent
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ev, ok := <-events:
		if !ok {
			a.loggerf("level=info msg=wallet sheet dismissed before authorization")
			return nil, ErrWalletCancelled
		}
		event = ev
	}

	// The backend derives pricing authority from the account, so the
	// intent call carries instrument, currency and amount but no photo ids.
	clientSecret, err := a.intents.Create(ctx, walletWireTag, a.currency, amountMinor, sess)
	if err != nil {
		a.loggerf("level=error msg=wallet intent creation failed err=%v", err)
		return nil, err
	}
	intentRef, _ := gateway.RefFromClientSecret(clientSecret)

	intent, err := a.gw.ConfirmIntent(ctx, clientSecret, event.PaymentMethodToken)
	if err != nil {
		a.loggerf("level=error msg=wallet gateway confirmation failed intent=%s err=%v", intentRef, err)
		return nil, &Error{IntentRef: intentRef, Err: fmt.Errorf("%w: %v", ErrGatewayConfirmation, err)}
	}

	if intent.Status != gateway.IntentStatusSucceeded {
		// requires_action in particular: this client has no surface to
		// service a next action, so anything short of succeeded fails.
		a.loggerf("level=error msg=wallet intent incomplete intent=%s status=%s", intent.Ref, intent.Status)
		return nil, &Error{IntentRef: intent.Ref, GatewayStatus: string(intent.Status), Err: ErrIncompleteIntent}
	}

	a.loggerf("level=info msg=wallet payment succeeded intent=%s amount=%d", intent.Ref, amountMinor)
	return &Confirmation{
		IntentRef:     intent.Ref,
		Method:        a.Method(),
		AmountMinor:   amountMinor,
		GatewayStatus: string(intent.Status),
	}, nil
}
