package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmcastellon/pupusapos/pkg/types"
)

// ListOrders fetches the orders attributed to one business day
// (YYYY-MM-DD).
func (c *Client) ListOrders(ctx context.Context, businessDay string) ([]types.Order, error) {
	var orders []types.Order
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/orders",
		query:  url.Values{"date": {businessDay}},
		authed: true,
	}, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one persisted order with its line-item snapshots.
func (c *Client) GetOrder(ctx context.Context, id int64) (*types.Order, error) {
	var order types.Order
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/orders/%d", id),
		authed: true,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder submits a new order. The total in the input is the
// engine-computed value persisted as the system of record.
func (c *Client) CreateOrder(ctx context.Context, input types.OrderInput) (*types.Order, error) {
	var order types.Order
	err := c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/orders",
		body:   input,
		authed: true,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder replaces a persisted order; the total invariant must hold
// after edits just as at creation.
func (c *Client) UpdateOrder(ctx context.Context, id int64, input types.OrderInput) (*types.Order, error) {
	var order types.Order
	err := c.do(ctx, requestSpec{
		method: http.MethodPut,
		path:   fmt.Sprintf("/orders/%d", id),
		body:   input,
		authed: true,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes a persisted order.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/orders/%d", id),
		authed: true,
	}, nil)
}
