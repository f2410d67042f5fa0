package checkout

import (
	"context"
	"fmt"

	"photodrop/internal/domain"
	"photodrop/internal/modules/payment"
	"photodrop/internal/modules/selection"
	"photodrop/internal/session"
)

// Service wires the resolver, the payment adapters and the receipt journal
// together and opens checkout sessions. One Service outlives many sessions.
type Service struct {
	inventory      inventoryResolver
	receipts       receiptJournal
	adapters       map[domain.PaymentMethod]payment.Adapter
	unitPriceMinor int64
	currency       string
	loggerf        func(format string, args ...interface{})
}

func NewService(resolver inventoryResolver, receipts receiptJournal, adapters []payment.Adapter, unitPriceMinor int64, currency string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	byMethod := make(map[domain.PaymentMethod]payment.Adapter, len(adapters))
	for _, a := range adapters {
		byMethod[a.Method()] = a
	}
	return &Service{
		inventory:      resolver,
		receipts:       receipts,
		adapters:       byMethod,
		unitPriceMinor: unitPriceMinor,
		currency:       currency,
		loggerf:        loggerf,
	}
}

// OpenParams is the navigational context the popup was opened with.
type OpenParams struct {
	AlbumKey            string
	PhotoIDs            []domain.PhotoID
	ForceAllPhotos      bool
	AlbumDetailsContext bool
}

// Open runs Idle -> Selecting -> Quoting: resolve the unpaid set, derive
// the default selection, compute the first quote. A resolver failure
// surfaces as an error so callers never mistake "fetch failed" for
// "nothing owed".
func (s *Service) Open(ctx context.Context, params OpenParams, sess *session.Session) (*Session, error) {
	result, err := s.inventory.Resolve(ctx, params.AlbumKey, sess)
	if err != nil {
		s.loggerf("level=error msg=checkout open failed album=%s err=%v", params.AlbumKey, err)
		return nil, err
	}

	mode := selection.DefaultMode(params.ForceAllPhotos, params.PhotoIDs, result.UnpaidIDs)
	cs := &Session{
		svc:    s,
		state:  StateQuoting,
		params: params,
		unpaid: result,
		mode:   mode,
		quote:  selection.ComputeQuote(mode, s.unitPriceMinor),
	}
	s.loggerf("level=info msg=checkout opened album=%s unpaid=%d mode=%s", params.AlbumKey, result.UnpaidCount, mode.Kind)
	return cs, nil
}

// PendingReceipts lists journaled attempts whose outcome is unknown, so a
// restarted client can re-query the gateway instead of losing the user's
// checkout context.
func (s *Service) PendingReceipts(ctx context.Context) ([]domain.PaymentReceipt, error) {
	return s.receipts.ListPending(ctx)
}

func (s *Service) adapterFor(method domain.PaymentMethod) (payment.Adapter, error) {
	adapter, ok := s.adapters[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s not configured", payment.ErrGatewayUnavailable, method)
	}
	return adapter, nil
}
