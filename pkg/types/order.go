package types

import (
	"time"

	"github.com/dmcastellon/pupusapos/pkg/enums"
	"github.com/dmcastellon/pupusapos/pkg/money"
)

// LineItem is one cart line before submission. ProductID references the
// loaded catalog; the price snapshot is resolved at submission time.
type LineItem struct {
	ProductID int64      `json:"product_id"`
	Masa      enums.Masa `json:"masa"`
	Quantity  int        `json:"quantity"`
}

// Cart is a draft order under edit. DeliveryCost is meaningful only
// while IsDelivery is set; totals treat it as zero otherwise.
type Cart struct {
	Items        []LineItem
	IsDelivery   bool
	DeliveryCost money.Money
}

// OrderItem is a persisted line-item snapshot carrying the unit price
// resolved at creation time.
type OrderItem struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name,omitempty"`
	Masa      enums.Masa  `json:"masa"`
	Quantity  int         `json:"quantity"`
	IsSmall   bool        `json:"is_small,omitempty"`
	UnitPrice money.Money `json:"unit_price"`
	Subtotal  money.Money `json:"subtotal"`
}

// Order is the persisted system-of-record shape.
type Order struct {
	ID           int64       `json:"id"`
	Items        []OrderItem `json:"items"`
	IsDelivery   bool        `json:"is_delivery"`
	DeliveryCost money.Money `json:"delivery_cost"`
	Total        money.Money `json:"total"`
	BusinessDay  string      `json:"business_day"`
	CreatedAt    *time.Time  `json:"created_at,omitempty"`
}

// OrderInput is the create/update payload. DeliveryCost must already be
// zeroed when IsDelivery is false; the pricing layer owns that rule.
type OrderInput struct {
	Items        []LineItem  `json:"items" validate:"required,min=1,dive"`
	IsDelivery   bool        `json:"is_delivery"`
	DeliveryCost money.Money `json:"delivery_cost" validate:"gte=0"`
	Total        money.Money `json:"total" validate:"gte=0"`
	BusinessDay  string      `json:"business_day" validate:"required"`
}
