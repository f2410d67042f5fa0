package checkout

import "errors"

var (
	// ErrCommitInFlight rejects a duplicate commit while a prior one is
	// still awaiting the gateway. Rejected, not queued: queuing could
	// double-charge on a slow gateway.
	ErrCommitInFlight = errors.New("a payment is already in flight")

	ErrSessionClosed  = errors.New("checkout session closed")
	ErrInvalidState   = errors.New("operation not allowed in current checkout state")
	ErrPhotoNotUnpaid = errors.New("photo is not in the unpaid set")
)
