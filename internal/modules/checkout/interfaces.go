package checkout

import (
	"context"

	"github.com/google/uuid"

	"photodrop/internal/domain"
	"photodrop/internal/modules/inventory"
	"photodrop/internal/session"
)

type inventoryResolver interface {
	Resolve(ctx context.Context, albumLocationKey string, sess *session.Session) (*inventory.Result, error)
}

type receiptJournal interface {
	Create(ctx context.Context, receipt *domain.PaymentReceipt) error
	SetIntentRef(ctx context.Context, id uuid.UUID, intentRef string) error
	MarkFailed(ctx context.Context, id uuid.UUID, gatewayStatus, reason string) error
	MarkSucceededIdempotent(ctx context.Context, id uuid.UUID, gatewayStatus string) (bool, error)
	ListPending(ctx context.Context) ([]domain.PaymentReceipt, error)
}
