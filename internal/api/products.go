package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmcastellon/pupusapos/pkg/types"
)

// ListProducts fetches the whole catalog.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/products",
		authed: true,
	}, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one catalog entry.
func (c *Client) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	var product types.Product
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf("/products/%d", id),
		authed: true,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct adds a catalog entry.
func (c *Client) CreateProduct(ctx context.Context, input types.ProductInput) (*types.Product, error) {
	var product types.Product
	err := c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/products",
		body:   input,
		authed: true,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct edits a catalog entry. Orders already placed keep the
// totals computed at their submission time.
func (c *Client) UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*types.Product, error) {
	var product types.Product
	err := c.do(ctx, requestSpec{
		method: http.MethodPut,
		path:   fmt.Sprintf("/products/%d", id),
		body:   input,
		authed: true,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/products/%d", id),
		authed: true,
	}, nil)
}
