// Package aggregate turns API payloads into chart-ready view models.
//
// Everything here is a pure function: inputs are never modified, the
// output is freshly allocated, and bad input fails with ErrMalformedData
// instead of producing NaN-like values.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var ErrMalformedData = core.ErrMalformedData

var hundred = decimal.NewFromInt(100)

// minBarWidth keeps small but non-zero values visible in bar charts.
const minBarWidth = 2

type Point struct {
	Period        string
	Income        core.Money
	Expenses      core.Money
	Balance       core.Money
	IncomeWidth   int
	ExpensesWidth int
}

type Share struct {
	Category string
	Amount   core.Money
	// Percent is the share of the total to one decimal place.
	Percent decimal.Decimal
	Width   int
}

type SummaryView struct {
	TotalIncome   core.Money
	TotalExpenses core.Money
	Balance       core.Money
	Series        []Point
	Distribution  []Share
}

type StatRow struct {
	Category string
	Income   core.Money
	Expense  core.Money
	Net      core.Money
}

type StatisticsView struct {
	Range        core.TimeRange
	TotalIncome  core.Money
	TotalExpense core.Money
	Net          core.Money
	Rows         []StatRow
	Expenses     []Share
}

type TransactionTotals struct {
	Count    int
	Income   core.Money
	Expenses core.Money
	Balance  core.Money
}

// BalanceSeries derives balance = income - expenses for every bucket,
// keeping the server's order.
func BalanceSeries(buckets []core.PeriodBucket) ([]Point, error) {
	out := make([]Point, 0, len(buckets))
	values := make([]decimal.Decimal, 0, 2*len(buckets))
	for i, b := range buckets {
		if strings.TrimSpace(b.Period) == "" {
			return nil, fmt.Errorf("%w: bucket %d has no period", ErrMalformedData, i)
		}
		if b.Income.IsNegative() || b.Expenses.IsNegative() {
			return nil, fmt.Errorf("%w: bucket %q has a negative amount", ErrMalformedData, b.Period)
		}
		out = append(out, Point{
			Period:   b.Period,
			Income:   b.Income,
			Expenses: b.Expenses,
			Balance:  b.Income.Sub(b.Expenses),
		})
		values = append(values, b.Income.Decimal(), b.Expenses.Decimal())
	}

	widths := ScaleWidths(values)
	for i := range out {
		out[i].IncomeWidth = widths[2*i]
		out[i].ExpensesWidth = widths[2*i+1]
	}
	return out, nil
}

// Distribution computes each slice's share of the total. With a zero total
// every share is 0.
func Distribution(slices []core.CategoryAmount) ([]Share, error) {
	total := decimal.Zero
	for i, s := range slices {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("%w: slice %d has no category", ErrMalformedData, i)
		}
		if s.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: category %q has a negative amount", ErrMalformedData, s.Name)
		}
		total = total.Add(s.Amount.Decimal())
	}

	pcts := percentages(slices, total)
	out := make([]Share, 0, len(slices))
	values := make([]decimal.Decimal, 0, len(slices))
	for i, s := range slices {
		out = append(out, Share{Category: s.Name, Amount: s.Amount, Percent: pcts[i]})
		values = append(values, s.Amount.Decimal())
	}

	widths := ScaleWidths(values)
	for i := range out {
		out[i].Width = widths[i]
	}
	return out, nil
}

// percentages rounds every share to a tenth of a percent using the largest
// remainder method, so a positive total always yields exactly 100.0.
func percentages(slices []core.CategoryAmount, total decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(slices))
	if !total.IsPositive() {
		for i := range out {
			out[i] = decimal.Zero
		}
		return out
	}

	tenths := make([]decimal.Decimal, len(slices))
	remainders := make([]decimal.Decimal, len(slices))
	assigned := int64(0)
	for i, s := range slices {
		exact := s.Amount.Decimal().Mul(decimal.NewFromInt(1000)).Div(total)
		tenths[i] = exact.Floor()
		remainders[i] = exact.Sub(tenths[i])
		assigned += tenths[i].IntPart()
	}

	order := make([]int, len(slices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})
	for k := int64(0); k < 1000-assigned && int(k) < len(order); k++ {
		i := order[k]
		tenths[i] = tenths[i].Add(decimal.NewFromInt(1))
	}

	for i := range out {
		out[i] = tenths[i].Shift(-1)
	}
	return out
}

func BuildSummary(s core.Summary) (SummaryView, error) {
	series, err := BalanceSeries(s.Monthly)
	if err != nil {
		return SummaryView{}, err
	}
	dist, err := Distribution(s.Categories)
	if err != nil {
		return SummaryView{}, err
	}
	return SummaryView{
		TotalIncome:   s.TotalIncome,
		TotalExpenses: s.TotalExpenses,
		Balance:       s.Balance,
		Series:        series,
		Distribution:  dist,
	}, nil
}

// BuildStatistics lays out per-category rows sorted by name, plus the
// expense distribution of the categories that spent anything.
func BuildStatistics(st core.Statistics) (StatisticsView, error) {
	names := make([]string, 0, len(st.ByCategory))
	for name := range st.ByCategory {
		if strings.TrimSpace(name) == "" {
			return StatisticsView{}, fmt.Errorf("%w: statistics row without a category", ErrMalformedData)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]StatRow, 0, len(names))
	spent := make([]core.CategoryAmount, 0, len(names))
	for _, name := range names {
		f := st.ByCategory[name]
		if f.Income.IsNegative() || f.Expense.IsNegative() {
			return StatisticsView{}, fmt.Errorf("%w: category %q has a negative amount", ErrMalformedData, name)
		}
		rows = append(rows, StatRow{
			Category: name,
			Income:   f.Income,
			Expense:  f.Expense,
			Net:      f.Income.Sub(f.Expense),
		})
		if f.Expense.IsPositive() {
			spent = append(spent, core.CategoryAmount{Name: name, Amount: f.Expense})
		}
	}

	dist, err := Distribution(spent)
	if err != nil {
		return StatisticsView{}, err
	}
	return StatisticsView{
		Range:        st.Range,
		TotalIncome:  st.TotalIncome,
		TotalExpense: st.TotalExpense,
		Net:          st.TotalIncome.Sub(st.TotalExpense),
		Rows:         rows,
		Expenses:     dist,
	}, nil
}

// Totals sums a transaction list by direction.
func Totals(txs []core.Transaction) TransactionTotals {
	var t TransactionTotals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		default:
			continue
		}
		t.Count++
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}

// ScaleWidths maps values to bar widths in 0..100 relative to the largest
// one. Non-zero values get at least minBarWidth.
func ScaleWidths(values []decimal.Decimal) []int {
	out := make([]int, len(values))
	peak := decimal.Zero
	for _, v := range values {
		if v.GreaterThan(peak) {
			peak = v
		}
	}
	if !peak.IsPositive() {
		return out
	}
	for i, v := range values {
		if !v.IsPositive() {
			continue
		}
		w := int(v.Div(peak).Mul(hundred).Round(0).IntPart())
		if w < minBarWidth {
			w = minBarWidth
		}
		if w > 100 {
			w = 100
		}
		out[i] = w
	}
	return out
}
