package pricing

import (
	"math"

	"toolrent-backend/internal/domain"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30
)

// CostBreakdown provides detailed cost breakdown
type CostBreakdown struct {
	Months     int64
	Weeks      int64
	Days       int64
	MonthsCost int64
	WeeksCost  int64
	DaysCost   int64
	TotalCost  int64
}

// BillableDays rounds the interval up to whole days. Any started day is charged.
func BillableDays(interval domain.Interval) int64 {
	d := interval.Duration()
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Hours() / 24))
}

// Breakdown splits the billable days into 30-day months, weeks and days and prices each tier.
// A tier without a price is folded into the next smaller one.
func Breakdown(interval domain.Interval, tool *domain.Tool) CostBreakdown {
	days := BillableDays(interval)

	var b CostBreakdown
	if tool.PricePerMonthCents > 0 {
		b.Months = days / daysPerMonth
		days %= daysPerMonth
	}
	if tool.PricePerWeekCents > 0 {
		b.Weeks = days / daysPerWeek
		days %= daysPerWeek
	}
	b.Days = days

	b.MonthsCost = b.Months * tool.PricePerMonthCents
	b.WeeksCost = b.Weeks * tool.PricePerWeekCents
	b.DaysCost = b.Days * tool.PricePerDayCents
	b.TotalCost = b.MonthsCost + b.WeeksCost + b.DaysCost
	return b
}

// RentCost returns the total price of renting tool over interval, in cents.
func RentCost(interval domain.Interval, tool *domain.Tool) int64 {
	return Breakdown(interval, tool).TotalCost
}

// RentMoney is RentCost expressed in the given currency.
func RentMoney(interval domain.Interval, tool *domain.Tool, currency string) domain.Money {
	return domain.Money{Currency: currency, ValueCents: RentCost(interval, tool)}
}
