// Package orders drives the draft-order editing flow: a cart the
// operator mutates, priced by the engine on every change, submitted to
// the backend once valid.
package orders

import (
	"fmt"

	"github.com/dmcastellon/pupusapos/pkg/enums"
	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
	"github.com/dmcastellon/pupusapos/pkg/money"
	"github.com/dmcastellon/pupusapos/pkg/types"
)

// Draft is an order under edit. It lives only for the editing session:
// submitted or discarded, never persisted client-side.
type Draft struct {
	items        []types.LineItem
	isDelivery   bool
	deliveryCost money.Money
	businessDay  string
}

// NewDraft starts an empty draft attributed to the given business day.
func NewDraft(businessDay string) *Draft {
	return &Draft{businessDay: businessDay}
}

// FromOrder hydrates a draft from a persisted order for the edit flow.
func FromOrder(order *types.Order) *Draft {
	draft := &Draft{
		isDelivery:  order.IsDelivery,
		businessDay: order.BusinessDay,
	}
	if order.IsDelivery {
		draft.deliveryCost = order.DeliveryCost
	}
	for _, item := range order.Items {
		draft.items = append(draft.items, types.LineItem{
			ProductID: item.ProductID,
			Masa:      item.Masa,
			Quantity:  item.Quantity,
		})
	}
	return draft
}

// AddItem appends a line.
func (d *Draft) AddItem(productID int64, masa enums.Masa, quantity int) {
	d.items = append(d.items, types.LineItem{ProductID: productID, Masa: masa, Quantity: quantity})
}

// RemoveItem drops the line at the given position.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.items) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no item at position %d", index+1))
	}
	d.items = append(d.items[:index], d.items[index+1:]...)
	return nil
}

// SetDelivery toggles the delivery surcharge. The cost is kept even
// while delivery is off; totals ignore it until delivery is on again.
func (d *Draft) SetDelivery(on bool, cost money.Money) {
	d.isDelivery = on
	d.deliveryCost = cost
}

// Items returns the lines in insertion order.
func (d *Draft) Items() []types.LineItem {
	return d.items
}

// BusinessDay returns the calendar date the order is attributed to.
func (d *Draft) BusinessDay() string {
	return d.businessDay
}

// Cart exposes the draft to the pricing engine.
func (d *Draft) Cart() types.Cart {
	return types.Cart{
		Items:        d.items,
		IsDelivery:   d.isDelivery,
		DeliveryCost: d.deliveryCost,
	}
}
