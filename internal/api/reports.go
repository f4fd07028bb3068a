package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmcastellon/pupusapos/pkg/types"
)

// GetDailyReport fetches the aggregated report for one business day.
func (c *Client) GetDailyReport(ctx context.Context, date string) (*types.DailyReport, error) {
	var report types.DailyReport
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/reports/daily/" + date,
		authed: true,
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ExportDailyReportCSV downloads the backend-rendered CSV for one
// business day. The bytes are returned verbatim.
func (c *Client) ExportDailyReportCSV(ctx context.Context, date string) ([]byte, error) {
	return c.doRaw(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/reports/daily/" + date + "/export",
		authed: true,
	})
}

// GetSummaryReport fetches per-day sales for an inclusive date range.
func (c *Client) GetSummaryReport(ctx context.Context, startDate, endDate string) (*types.SummaryReport, error) {
	var report types.SummaryReport
	err := c.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/reports/summary",
		query:  url.Values{"start_date": {startDate}, "end_date": {endDate}},
		authed: true,
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
