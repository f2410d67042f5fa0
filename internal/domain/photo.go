package domain

// PhotoID is the backend's opaque photo identifier, unique within an album.
type PhotoID = int64

type Photo struct {
	ID          PhotoID `json:"id"`
	IsPurchased bool    `json:"isPurchased"`
}

// Album groups the photos taken at one location. The location string is the
// album identifier the client navigates by.
type Album struct {
	Location string  `json:"location"`
	Photos   []Photo `json:"images"`
}

type PaymentMethod string

const (
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodExpressWallet PaymentMethod = "express_wallet"
	PaymentMethodPayPal        PaymentMethod = "paypal"
)

// Handoff is the state carried across the post-payment navigation boundary.
// The receipt journal keeps the durable copy; this is the in-memory one.
type Handoff struct {
	ImageIDs      []PhotoID     `json:"image_ids"`
	Price         int64         `json:"price"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}
