package types

import (
	"github.com/dmcastellon/pupusapos/pkg/enums"
	"github.com/dmcastellon/pupusapos/pkg/money"
)

// DailyTotals aggregates one business day.
type DailyTotals struct {
	Orders         int         `json:"orders"`
	Sales          money.Money `json:"sales"`
	DeliveryOrders int         `json:"delivery_orders"`
}

// ReportProduct is one per-product row of a daily report.
type ReportProduct struct {
	Name     string      `json:"name"`
	Masa     enums.Masa  `json:"masa"`
	IsSmall  bool        `json:"is_small"`
	Quantity int         `json:"quantity"`
	Total    money.Money `json:"total"`
}

// DailyReport is the full report for one business day.
type DailyReport struct {
	Date        string          `json:"date"`
	Totals      DailyTotals     `json:"totals"`
	Products    []ReportProduct `json:"products"`
	TopProducts []ReportProduct `json:"top_products,omitempty"`
}

// DailySales is one row of a period summary.
type DailySales struct {
	Date   string      `json:"date"`
	Sales  money.Money `json:"sales"`
	Orders int         `json:"orders"`
}

// SummaryTotals aggregates a reporting period.
type SummaryTotals struct {
	TotalSales  money.Money `json:"total_sales"`
	TotalOrders int         `json:"total_orders"`
}

// SummaryReport covers a start/end date range.
type SummaryReport struct {
	DailySales []DailySales  `json:"daily_sales"`
	Totals     SummaryTotals `json:"totals"`
}

// OpenDay flags one calendar date as operating or closed.
type OpenDay struct {
	Date   string `json:"date"`
	IsOpen bool   `json:"is_open"`
}
