package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmcastellon/pupusapos/pkg/types"
)

type openDayUpdate struct {
	IsOpen bool `json:"is_open"`
}

type openDayBulkCreate struct {
	Dates []string `json:"dates" validate:"required,min=1,dive,required"`
}

// ListOpenDays fetches the open/closed flags for an inclusive range.
func (c *Client) ListOpenDays(ctx context.Context, startDate, endDate string) ([]types.OpenDay, error) {
	var days []types.OpenDay
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/open-days",
		query:  url.Values{"start_date": {startDate}, "end_date": {endDate}},
		authed: true,
	}, &days)
	if err != nil {
		return nil, err
	}
	return days, nil
}

// GetOpenDay fetches the flag for one calendar date.
func (c *Client) GetOpenDay(ctx context.Context, date string) (*types.OpenDay, error) {
	var day types.OpenDay
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/open-days/" + date,
		authed: true,
	}, &day)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// SetOpenDay flags one calendar date as operating or closed.
func (c *Client) SetOpenDay(ctx context.Context, date string, isOpen bool) error {
	return c.do(ctx, requestSpec{
		method: http.MethodPut,
		path:   "/open-days/" + date,
		body:   openDayUpdate{IsOpen: isOpen},
		authed: true,
	}, nil)
}

// CreateOpenDays flags several dates as operating in one call.
func (c *Client) CreateOpenDays(ctx context.Context, dates []string) error {
	return c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/open-days",
		body:   openDayBulkCreate{Dates: dates},
		authed: true,
	}, nil)
}

// DeleteOpenDay removes the flag for one calendar date.
func (c *Client) DeleteOpenDay(ctx context.Context, date string) error {
	return c.do(ctx, requestSpec{
		method: http.MethodDelete,
		path:   "/open-days/" + date,
		authed: true,
	}, nil)
}
