package pricing

import (
	"fmt"

	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
	"github.com/dmcastellon/pupusapos/pkg/types"
)

// ValidateCart enforces the submission rules the pure pricing functions
// deliberately tolerate. It fails fast: the first violated rule becomes
// the single user-facing message.
func ValidateCart(catalog Catalog, cart types.Cart) error {
	if len(cart.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for i, item := range cart.Items {
		if item.ProductID == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d has no product selected", i+1))
		}
		if _, ok := catalog.Lookup(item.ProductID); !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d references an unknown product", i+1))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d needs a quantity of at least 1", i+1))
		}
	}
	if cart.IsDelivery && cart.DeliveryCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery cost must be zero or more")
	}
	return nil
}
