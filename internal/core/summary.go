package core

import "strings"

const (
	Week  TimeRange = "week"
	Month TimeRange = "month"
	Year  TimeRange = "year"
)

// TimeRange selects the window the statistics endpoint aggregates over.
type TimeRange string

func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case Week, Month, Year:
		return r, nil
	case "":
		return Month, nil
	default:
		return "", ErrInvalidTimeRange
	}
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// PeriodBucket is one server-aggregated period of the dashboard series.
type PeriodBucket struct {
	Period   string
	Income   Money
	Expenses Money
}

// Summary is the dashboard payload as returned by the API.
type Summary struct {
	TotalIncome   Money
	TotalExpenses Money
	Balance       Money
	Monthly       []PeriodBucket
	Categories    []CategoryAmount
}

// CategoryFlow is income and expense of one category inside a time range.
type CategoryFlow struct {
	Income  Money
	Expense Money
}

// Statistics is the statistics payload as returned by the API.
type Statistics struct {
	Range        TimeRange
	TotalIncome  Money
	TotalExpense Money
	ByCategory   map[string]CategoryFlow
}
