// Package pricing computes monetary totals for draft orders. It is pure:
// no I/O, no mutation of inputs, safe to call on every cart edit.
package pricing

import (
	"github.com/dmcastellon/pupusapos/pkg/money"
	"github.com/dmcastellon/pupusapos/pkg/types"
)

// BundlePrice is the flat price of each complete group of three
// small-format units.
var BundlePrice = money.MustParse("1.00")

const bundleSize = 3

// LineItemSubtotal prices a single line against its resolved product.
// A nil product yields zero so a stale catalog cannot crash a live form;
// ValidateCart blocks such lines from ever being submitted. Quantities
// below zero clamp to zero for the same reason.
func LineItemSubtotal(product *types.Product, item types.LineItem) money.Money {
	if product == nil {
		return money.Zero
	}
	qty := int64(item.Quantity)
	if qty < 0 {
		qty = 0
	}
	if product.IsSmall {
		completeBundles := qty / bundleSize
		remainder := qty % bundleSize
		return BundlePrice.MulInt(completeBundles).Add(product.Price.MulInt(remainder))
	}
	return product.Price.MulInt(qty)
}

// ItemsTotal sums the subtotals of every line in the cart.
func ItemsTotal(catalog Catalog, items []types.LineItem) money.Money {
	total := money.Zero
	for _, item := range items {
		product, _ := catalog.Lookup(item.ProductID)
		total = total.Add(LineItemSubtotal(product, item))
	}
	return total
}

// CartTotal computes the grand total: item subtotals plus the delivery
// surcharge. The stored delivery cost is ignored entirely when the cart
// is not a delivery, and negative surcharges count as zero, so the
// result is never below the items total.
func CartTotal(catalog Catalog, cart types.Cart) money.Money {
	total := ItemsTotal(catalog, cart.Items)
	if cart.IsDelivery && !cart.DeliveryCost.IsNegative() {
		total = total.Add(cart.DeliveryCost)
	}
	return total
}
