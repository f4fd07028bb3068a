package types

import (
	"time"

	"github.com/dmcastellon/pupusapos/pkg/enums"
	"github.com/dmcastellon/pupusapos/pkg/money"
)

// Product is a catalog entry as served by the backend.
type Product struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Masa      enums.Masa  `json:"masa"`
	Price     money.Money `json:"price"`
	IsSmall   bool        `json:"is_small"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// ProductInput is the create/update payload for a catalog entry.
type ProductInput struct {
	Name    string      `json:"name" validate:"required"`
	Masa    enums.Masa  `json:"masa"`
	Price   money.Money `json:"price" validate:"gte=0"`
	IsSmall bool        `json:"is_small"`
}
