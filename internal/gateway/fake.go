package gateway

import (
	"context"
	"sync"
)

// Fake is an in-memory Gateway for tests and local development. Confirm
// outcomes are scripted per client secret.
type Fake struct {
	mu             sync.Mutex
	WalletEnabled  bool
	ConfirmErr     error
	StatusBySecret map[string]IntentStatus
	ConfirmCalls   int
	LastToken      string
}

func NewFake() *Fake {
	return &Fake{WalletEnabled: true, StatusBySecret: map[string]IntentStatus{}}
}

func (f *Fake) WalletAvailable(_ context.Context, amountMinor int64, currency string) bool {
	return f.WalletEnabled && amountMinor > 0 && currency != ""
}

func (f *Fake) ConfirmIntent(_ context.Context, clientSecret, paymentMethodToken string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ConfirmCalls++
	f.LastToken = paymentMethodToken
	if f.ConfirmErr != nil {
		return nil, f.ConfirmErr
	}

	ref, err := RefFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}
	status, ok := f.StatusBySecret[clientSecret]
	if !ok {
		status = IntentStatusSucceeded
	}
	return &Intent{Ref: ref, Status: status}, nil
}
