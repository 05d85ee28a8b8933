package revenue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// weekdayLabels index matches time.Weekday.
var weekdayLabels = [7]string{"Sun", "Mon", "Tues", "Wed", "Thurs", "Fri", "Sat"}

// WeekdayLabel returns the dashboard label for d.
func WeekdayLabel(d time.Weekday) string {
	return weekdayLabels[d]
}

type OrderCount struct {
	Date   string `json:"date"`
	Orders int64  `json:"orders"`
}

type SalesTotal struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

// DaySummary is the seller dashboard figure for one business day.
type DaySummary struct {
	Sales   decimal.Decimal `json:"sales"`
	Charge  decimal.Decimal `json:"charge"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type MonthlyRevenue struct {
	Month        string          `json:"month"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type MonthlyOrders struct {
	Month       string `json:"month"`
	TotalOrders int64  `json:"totalOrders"`
}

type DayRevenue struct {
	Day          string          `json:"day"`
	Date         string          `json:"date"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// DashboardCounts backs the seller home screen.
type DashboardCounts struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int64           `json:"orders"`
	Products int64           `json:"products"`
	Coupons  int64           `json:"coupons"`
	Tickets  int64           `json:"tickets"`
}

// PlatformCounts backs the admin home screen.
type PlatformCounts struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int64           `json:"orders"`
	Products int64           `json:"products"`
	Users    int64           `json:"users"`
}

// SellerSnapshot is one seller's totals for one UTC day.
type SellerSnapshot struct {
	SellerID uuid.UUID       `json:"sellerId"`
	Date     time.Time       `json:"date"`
	Sales    decimal.Decimal `json:"sales"`
	Charge   decimal.Decimal `json:"charge"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int64           `json:"orders"`
}

// Totals is the raw aggregate a repository returns.
type Totals struct {
	Sales  decimal.Decimal
	Charge decimal.Decimal
	Orders int64
}

// Bucket is a grouped aggregate keyed by month (1-12).
type Bucket struct {
	Key    int
	Sales  decimal.Decimal
	Orders int64
}

// SellerTotals is one row of a per-seller aggregate.
type SellerTotals struct {
	SellerID uuid.UUID
	Totals
}
