package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photodrop/internal/domain"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *domain.PaymentReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *ReceiptRepository) GetByIntentRef(ctx context.Context, intentRef string) (*domain.PaymentReceipt, error) {
	var receipt domain.PaymentReceipt
	if err := r.db.WithContext(ctx).Where("intent_ref = ?", intentRef).First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *ReceiptRepository) SetIntentRef(ctx context.Context, id uuid.UUID, intentRef string) error {
	return r.db.WithContext(ctx).
		Model(&domain.PaymentReceipt{}).
		Where("id = ?", id).
		Update("intent_ref", intentRef).Error
}

func (r *ReceiptRepository) MarkFailed(ctx context.Context, id uuid.UUID, gatewayStatus, reason string) error {
	return r.db.WithContext(ctx).
		Model(&domain.PaymentReceipt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         domain.ReceiptStatusFailed,
			"gateway_status": gatewayStatus,
			"failure_reason": reason,
		}).Error
}

// MarkSucceededIdempotent flips a receipt to succeeded exactly once.
// Returns false when the row was already succeeded, which happens when a
// recovered process replays a gateway outcome.
func (r *ReceiptRepository) MarkSucceededIdempotent(ctx context.Context, id uuid.UUID, gatewayStatus string) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receipt domain.PaymentReceipt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&receipt).Error; err != nil {
			return err
		}
		if receipt.Status == domain.ReceiptStatusSucceeded {
			changed = false
			return nil
		}
		res := tx.Model(&domain.PaymentReceipt{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":         domain.ReceiptStatusSucceeded,
			"gateway_status": gatewayStatus,
			"failure_reason": "",
		})
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0
		return nil
	})
	return changed, err
}

// ListPending surfaces attempts whose outcome is unknown, so a restarted
// client can re-query the gateway by intent ref.
func (r *ReceiptRepository) ListPending(ctx context.Context) ([]domain.PaymentReceipt, error) {
	var receipts []domain.PaymentReceipt
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.ReceiptStatusPending).
		Order("created_at asc").
		Find(&receipts).Error
	return receipts, err
}
