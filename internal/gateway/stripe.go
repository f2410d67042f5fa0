package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

type StripeGateway struct {
	sc           *client.API
	walletDomain string
	loggerf      func(format string, args ...interface{})
}

func NewStripeGateway(secretKey, walletDomain string, loggerf func(format string, args ...interface{})) *StripeGateway {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc, walletDomain: walletDomain, loggerf: loggerf}
}

// WalletAvailable checks whether the registered payment-method domain has
// an active Apple Pay registration for this account. Any probe failure is
// reported as unavailable; the caller falls back to another instrument.
func (g *StripeGateway) WalletAvailable(ctx context.Context, amountMinor int64, currency string) bool {
	if amountMinor <= 0 || currency == "" || g.walletDomain == "" {
		return false
	}

	params := &stripe.PaymentMethodDomainListParams{
		DomainName: stripe.String(g.walletDomain),
	}
	params.Context = ctx

	iter := g.sc.PaymentMethodDomains.List(params)
	for iter.Next() {
		d := iter.PaymentMethodDomain()
		if d.ApplePay != nil && d.ApplePay.Status == stripe.PaymentMethodDomainApplePayStatusActive {
			return true
		}
	}
	if err := iter.Err(); err != nil {
		g.loggerf("level=warn msg=wallet capability probe failed domain=%s err=%v", g.walletDomain, err)
	}
	return false
}

// ConfirmIntent confirms the charge referenced by the client secret using
// the provided payment-method token. Automatic next-action handling is
// disabled: this client has no surface to display one, so an intent that
// needs further action comes back as an error rather than a hung flow.
func (g *StripeGateway) ConfirmIntent(ctx context.Context, clientSecret, paymentMethodToken string) (*Intent, error) {
	id, err := RefFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod:         stripe.String(paymentMethodToken),
		ErrorOnRequiresAction: stripe.Bool(true),
	}
	// stripe-go has no ClientSecret field on confirm params; send the same
	// client_secret form field through the extras mechanism instead.
	params.AddExtra("client_secret", clientSecret)
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.Confirm(id, params)
	if err != nil {
		return nil, err
	}
	return &Intent{Ref: pi.ID, Status: IntentStatus(pi.Status)}, nil
}

// RefFromClientSecret extracts the intent ref from a client secret shaped
// like "pi_123_secret_456".
func RefFromClientSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret")
	if !found || id == "" {
		return "", errors.New("malformed client secret")
	}
	return id, nil
}
