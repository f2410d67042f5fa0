package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"photodrop/internal/domain"
	"photodrop/internal/modules/inventory"
	"photodrop/internal/modules/payment"
	"photodrop/internal/modules/selection"
	"photodrop/internal/session"
)

type State string

const (
	StateIdle            State = "idle"
	StateSelecting       State = "selecting"
	StateQuoting         State = "quoting"
	StateAwaitingPayment State = "awaiting_payment"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

// Session is one checkout popup instance. At most one payment is in flight
// at a time; a failed attempt returns the session to Quoting with the
// unpaid set intact, so the user can retry with another instrument without
// a re-fetch. Close discards everything.
type Session struct {
	svc    *Service
	params OpenParams
	unpaid *inventory.Result

	mu          sync.Mutex
	state       State
	mode        selection.Mode
	quote       selection.Quote
	inFlight    bool
	closed      bool
	handoff     *domain.Handoff
	lastFailure string
}

func (cs *Session) State() State {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state
}

func (cs *Session) Mode() selection.Mode {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.mode
}

func (cs *Session) Quote() selection.Quote {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.quote
}

// Handoff is non-nil only after a successful commit. It is the only state
// carried across the post-payment navigation boundary.
func (cs *Session) Handoff() *domain.Handoff {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.handoff
}

// LastFailure is the user-facing reason the previous commit failed, empty
// after a clean open or a success.
func (cs *Session) LastFailure() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lastFailure
}

// OffersSwitchToAll reports whether the bulk option may be shown next to
// the single-photo one in this navigational context.
func (cs *Session) OffersSwitchToAll() bool {
	return cs.params.ForceAllPhotos || selection.OfferSwitchToAll(cs.params.AlbumDetailsContext)
}

// SelectSinglePhoto switches the selection to one photo and re-quotes. The
// id must come from the resolved unpaid set or the opening photo context.
func (cs *Session) SelectSinglePhoto(id domain.PhotoID) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.selectableLocked(); err != nil {
		return err
	}
	if cs.params.ForceAllPhotos {
		return fmt.Errorf("%w: album-level unlock offers all photos only", ErrInvalidState)
	}
	if !cs.knownPhotoLocked(id) {
		return ErrPhotoNotUnpaid
	}
	cs.applyModeLocked(selection.SinglePhoto(id))
	return nil
}

// SelectAllUnpaid switches to the bulk option and re-quotes.
func (cs *Session) SelectAllUnpaid() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.selectableLocked(); err != nil {
		return err
	}
	if !cs.OffersSwitchToAll() {
		return fmt.Errorf("%w: bulk purchase not offered outside album details", ErrInvalidState)
	}
	cs.applyModeLocked(selection.AllUnpaid(cs.unpaid.UnpaidIDs))
	return nil
}

// Commit drives the chosen instrument to a confirmation. Validation and the
// capability probe run before any money movement; failures of either leave
// the session in Quoting untouched.
func (cs *Session) Commit(ctx context.Context, method domain.PaymentMethod, sess *session.Session) (*domain.Handoff, error) {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if cs.inFlight {
		cs.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	if cs.state != StateQuoting {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: commit from %s", ErrInvalidState, cs.state)
	}
	if err := selection.Validate(cs.mode); err != nil {
		cs.lastFailure = "nothing selected for purchase"
		cs.mu.Unlock()
		return nil, err
	}

	adapter, err := cs.svc.adapterFor(method)
	if err != nil {
		cs.mu.Unlock()
		return nil, err
	}
	mode, quote := cs.mode, cs.quote
	if !adapter.Available(ctx, quote.TotalMinor, cs.svc.currency) {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", payment.ErrGatewayUnavailable, method)
	}

	cs.inFlight = true
	cs.state = StateAwaitingPayment
	cs.mu.Unlock()

	handoff, err := cs.runPayment(ctx, adapter, method, mode, quote, sess)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.inFlight = false
	if cs.closed {
		// The popup was discarded mid-flight; the receipt journal keeps the
		// durable outcome, nothing is surfaced to a dead surface.
		return nil, ErrSessionClosed
	}
	if err != nil {
		cs.lastFailure = err.Error()
		cs.state = StateQuoting
		return nil, err
	}
	cs.lastFailure = ""
	cs.state = StateSucceeded
	cs.handoff = handoff
	return handoff, nil
}

// Close discards the session. No partial payment state survives; a
// subsequent checkout starts from a fresh Open.
func (cs *Session) Close() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.closed = true
	cs.state = StateIdle
	cs.mode = selection.Mode{}
	cs.quote = selection.Quote{}
	cs.handoff = nil
	cs.lastFailure = ""
}

func (cs *Session) runPayment(ctx context.Context, adapter payment.Adapter, method domain.PaymentMethod, mode selection.Mode, quote selection.Quote, sess *session.Session) (*domain.Handoff, error) {
	receipt := &domain.PaymentReceipt{
		AlbumLocation: cs.params.AlbumKey,
		ImageIDs:      joinIDs(mode.PhotoIDs),
		AmountMinor:   quote.TotalMinor,
		Currency:      cs.svc.currency,
		Method:        method,
		Status:        domain.ReceiptStatusPending,
	}
	if err := cs.svc.receipts.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("journal payment attempt: %w", err)
	}

	conf, err := adapter.Confirm(ctx, mode.PhotoIDs, quote.TotalMinor, sess)
	if err != nil {
		gatewayStatus, intentRef := "", ""
		var pe *payment.Error
		if errors.As(err, &pe) {
			gatewayStatus, intentRef = pe.GatewayStatus, pe.IntentRef
		}
		if intentRef != "" {
			if jerr := cs.svc.receipts.SetIntentRef(ctx, receipt.ID, intentRef); jerr != nil {
				cs.svc.loggerf("level=error msg=failed to journal intent ref receipt=%s err=%v", receipt.ID, jerr)
			}
		}
		if jerr := cs.svc.receipts.MarkFailed(ctx, receipt.ID, gatewayStatus, err.Error()); jerr != nil {
			cs.svc.loggerf("level=error msg=failed to journal payment failure receipt=%s err=%v", receipt.ID, jerr)
		}
		cs.svc.loggerf("level=error msg=payment attempt failed method=%s amount=%d err=%v", method, quote.TotalMinor, err)
		return nil, err
	}

	if jerr := cs.svc.receipts.SetIntentRef(ctx, receipt.ID, conf.IntentRef); jerr != nil {
		cs.svc.loggerf("level=error msg=failed to journal intent ref receipt=%s err=%v", receipt.ID, jerr)
	}
	if _, jerr := cs.svc.receipts.MarkSucceededIdempotent(ctx, receipt.ID, conf.GatewayStatus); jerr != nil {
		cs.svc.loggerf("level=error msg=failed to journal payment success receipt=%s err=%v", receipt.ID, jerr)
	}
	cs.svc.loggerf("level=info msg=payment succeeded method=%s amount=%d intent=%s", method, quote.TotalMinor, conf.IntentRef)

	return &domain.Handoff{
		ImageIDs:      mode.PhotoIDs,
		Price:         quote.TotalMinor,
		PaymentMethod: method,
	}, nil
}

func (cs *Session) selectableLocked() error {
	if cs.closed {
		return ErrSessionClosed
	}
	if cs.state != StateQuoting {
		return fmt.Errorf("%w: select from %s", ErrInvalidState, cs.state)
	}
	return nil
}

// Re-quote on every mode change; the quote is derived state and never
// survives a change.
func (cs *Session) applyModeLocked(mode selection.Mode) {
	cs.mode = mode
	cs.quote = selection.ComputeQuote(mode, cs.svc.unitPriceMinor)
	cs.lastFailure = ""
}

func (cs *Session) knownPhotoLocked(id domain.PhotoID) bool {
	for _, unpaid := range cs.unpaid.UnpaidIDs {
		if unpaid == id {
			return true
		}
	}
	for _, opened := range cs.params.PhotoIDs {
		if opened == id {
			return true
		}
	}
	return false
}

func joinIDs(ids []domain.PhotoID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
