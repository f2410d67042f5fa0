package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptStatus string

const (
	ReceiptStatusPending   ReceiptStatus = "pending"
	ReceiptStatusSucceeded ReceiptStatus = "succeeded"
	ReceiptStatusFailed    ReceiptStatus = "failed"
)

// PaymentReceipt journals one checkout attempt. A row is written before the
// gateway is invoked so a discarded process can re-query the outcome by
// intent ref instead of losing the checkout context.
type PaymentReceipt struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	AlbumLocation string        `json:"album_location" gorm:"index"`
	ImageIDs      string        `json:"image_ids" gorm:"not null"`
	AmountMinor   int64         `json:"amount_minor" gorm:"not null"`
	Currency      string        `json:"currency" gorm:"type:varchar(3);not null"`
	Method        PaymentMethod `json:"method" gorm:"type:varchar(16);not null"`
	Status        ReceiptStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	IntentRef     string        `json:"intent_ref" gorm:"index"`
	GatewayStatus string        `json:"gateway_status"`
	FailureReason string        `json:"failure_reason"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PaymentReceipt) TableName() string {
	return "payment_receipts"
}

func (r *PaymentReceipt) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
