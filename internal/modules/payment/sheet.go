package payment

import "sync"

// ChannelSheet is a PaymentSheet fed by whatever surface hosts the wallet
// button. One subscriber is live at a time; re-subscribing replaces the
// previous registration, mirroring a remounted payment sheet.
type ChannelSheet struct {
	mu sync.Mutex
	ch chan WalletEvent
}

func NewChannelSheet() *ChannelSheet {
	return &ChannelSheet{}
}

func (s *ChannelSheet) Subscribe() (<-chan WalletEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan WalletEvent, 1)
	s.ch = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ch == ch {
			s.ch = nil
		}
	}
	return ch, cancel
}

// Authorize delivers the wallet token to the current subscriber. Returns
// false when nobody is listening (stale or closed checkout).
func (s *ChannelSheet) Authorize(paymentMethodToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil {
		return false
	}
	select {
	case s.ch <- WalletEvent{PaymentMethodToken: paymentMethodToken}:
		return true
	default:
		return false
	}
}

// Dismiss signals that the user closed the sheet without authorizing.
func (s *ChannelSheet) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}
