package orders

import (
	"context"
	"fmt"

	"github.com/dmcastellon/pupusapos/internal/pricing"
	"github.com/dmcastellon/pupusapos/pkg/money"
	"github.com/dmcastellon/pupusapos/pkg/types"
)

type orderAPI interface {
	GetOrder(ctx context.Context, id int64) (*types.Order, error)
	CreateOrder(ctx context.Context, input types.OrderInput) (*types.Order, error)
	UpdateOrder(ctx context.Context, id int64, input types.OrderInput) (*types.Order, error)
}

type catalogAPI interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
}

// Service prices and submits draft orders against the loaded catalog.
type Service struct {
	orders  orderAPI
	catalog catalogAPI

	loaded pricing.Catalog
}

// NewService builds an order service backed by the API client.
func NewService(orders orderAPI, catalog catalogAPI) (*Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order api required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog api required")
	}
	return &Service{orders: orders, catalog: catalog}, nil
}

// LoadCatalog fetches the current catalog snapshot used for pricing.
func (s *Service) LoadCatalog(ctx context.Context) error {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	s.loaded = pricing.NewCatalog(products)
	return nil
}

// Catalog returns the loaded snapshot.
func (s *Service) Catalog() pricing.Catalog {
	return s.loaded
}

// Total prices the draft against the loaded catalog; called on every
// edit to show the running total.
func (s *Service) Total(draft *Draft) money.Money {
	return pricing.CartTotal(s.loaded, draft.Cart())
}

// Hydrate loads a persisted order into a fresh draft for editing.
func (s *Service) Hydrate(ctx context.Context, orderID int64) (*Draft, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return FromOrder(order), nil
}

// Submit validates the draft and creates the order. The persisted total
// is the engine-computed value; delivery cost is zeroed in the payload
// whenever the order is not a delivery.
func (s *Service) Submit(ctx context.Context, draft *Draft) (*types.Order, error) {
	input, err := s.buildInput(draft)
	if err != nil {
		return nil, err
	}
	return s.orders.CreateOrder(ctx, *input)
}

// SubmitEdit validates the draft and replaces the persisted order, so
// the total invariant holds after edits exactly as at creation.
func (s *Service) SubmitEdit(ctx context.Context, orderID int64, draft *Draft) (*types.Order, error) {
	input, err := s.buildInput(draft)
	if err != nil {
		return nil, err
	}
	return s.orders.UpdateOrder(ctx, orderID, *input)
}

func (s *Service) buildInput(draft *Draft) (*types.OrderInput, error) {
	cart := draft.Cart()
	if err := pricing.ValidateCart(s.loaded, cart); err != nil {
		return nil, err
	}

	deliveryCost := money.Zero
	if cart.IsDelivery {
		deliveryCost = cart.DeliveryCost
	}
	return &types.OrderInput{
		Items:        cart.Items,
		IsDelivery:   cart.IsDelivery,
		DeliveryCost: deliveryCost,
		Total:        pricing.CartTotal(s.loaded, cart),
		BusinessDay:  draft.BusinessDay(),
	}, nil
}
