package api

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Wire records mirror the JSON bodies of the API. Fields that must be
// present are pointers so a missing value can be told apart from a zero.

type userRecord struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

func (u *userRecord) toUser() core.User {
	if u == nil {
		return core.User{}
	}
	id := u.MongoID
	if id == "" {
		id = u.ID
	}
	return core.User{ID: id, Name: u.Name, Email: u.Email}
}

type loginRecord struct {
	Token string      `json:"token"`
	User  *userRecord `json:"user"`
}

type categoryRecord struct {
	ID   string      `json:"_id"`
	Name *string     `json:"name"`
	Type core.TxType `json:"type"`
}

func (r categoryRecord) toCategory() (core.Category, error) {
	if r.ID == "" {
		return core.Category{}, malformed("category", "missing _id")
	}
	if r.Name == nil {
		return core.Category{}, malformed("category", fmt.Sprintf("category %s has no name", r.ID))
	}
	if !r.Type.Valid() {
		return core.Category{}, malformed("category", fmt.Sprintf("category %s has type %q", r.ID, r.Type))
	}
	return core.Category{ID: r.ID, Name: *r.Name, Type: r.Type}, nil
}

type transactionRecord struct {
	ID          string            `json:"_id"`
	Type        core.TxType       `json:"type"`
	Amount      *core.Money       `json:"amount"`
	Category    *core.CategoryRef `json:"category"`
	Description string            `json:"description"`
	Date        *core.Date        `json:"date"`
}

func (r transactionRecord) toTransaction() (core.Transaction, error) {
	switch {
	case r.ID == "":
		return core.Transaction{}, malformed("transaction", "missing _id")
	case !r.Type.Valid():
		return core.Transaction{}, malformed("transaction", fmt.Sprintf("transaction %s has type %q", r.ID, r.Type))
	case r.Amount == nil:
		return core.Transaction{}, malformed("transaction", fmt.Sprintf("transaction %s has no amount", r.ID))
	case r.Amount.IsNegative():
		return core.Transaction{}, malformed("transaction", fmt.Sprintf("transaction %s has a negative amount", r.ID))
	case r.Category == nil || r.Category.ID == "":
		return core.Transaction{}, malformed("transaction", fmt.Sprintf("transaction %s has no category", r.ID))
	case r.Date == nil || r.Date.IsZero():
		return core.Transaction{}, malformed("transaction", fmt.Sprintf("transaction %s has no date", r.ID))
	}
	return core.Transaction{
		ID:          r.ID,
		Type:        r.Type,
		Amount:      *r.Amount,
		Category:    *r.Category,
		Description: r.Description,
		Date:        *r.Date,
	}, nil
}

type periodRecord struct {
	Month    *string     `json:"month"`
	Income   *core.Money `json:"income"`
	Expenses *core.Money `json:"expenses"`
}

type categoryAmountRecord struct {
	Name   *string     `json:"name"`
	Amount *core.Money `json:"amount"`
}

type summaryRecord struct {
	TotalIncome   *core.Money            `json:"totalIncome"`
	TotalExpenses *core.Money            `json:"totalExpenses"`
	Balance       *core.Money            `json:"balance"`
	MonthlyData   []periodRecord         `json:"monthlyData"`
	CategoryData  []categoryAmountRecord `json:"categoryData"`
}

func (r summaryRecord) toSummary() (core.Summary, error) {
	if r.TotalIncome == nil || r.TotalExpenses == nil {
		return core.Summary{}, malformed("summary", "missing totals")
	}
	s := core.Summary{
		TotalIncome:   *r.TotalIncome,
		TotalExpenses: *r.TotalExpenses,
		Monthly:       make([]core.PeriodBucket, 0, len(r.MonthlyData)),
		Categories:    make([]core.CategoryAmount, 0, len(r.CategoryData)),
	}
	if r.Balance != nil {
		s.Balance = *r.Balance
	} else {
		s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	}
	for i, p := range r.MonthlyData {
		if p.Month == nil || strings.TrimSpace(*p.Month) == "" || p.Income == nil || p.Expenses == nil {
			return core.Summary{}, malformed("summary", fmt.Sprintf("monthlyData[%d] is incomplete", i))
		}
		s.Monthly = append(s.Monthly, core.PeriodBucket{Period: *p.Month, Income: *p.Income, Expenses: *p.Expenses})
	}
	for i, c := range r.CategoryData {
		if c.Name == nil || c.Amount == nil {
			return core.Summary{}, malformed("summary", fmt.Sprintf("categoryData[%d] is incomplete", i))
		}
		s.Categories = append(s.Categories, core.CategoryAmount{Name: *c.Name, Amount: *c.Amount})
	}
	return s, nil
}

type flowRecord struct {
	Income  *core.Money `json:"income"`
	Expense *core.Money `json:"expense"`
}

type statisticsRecord struct {
	TotalIncome  *core.Money           `json:"totalIncome"`
	TotalExpense *core.Money           `json:"totalExpense"`
	ByCategory   map[string]flowRecord `json:"byCategory"`
}

func (r statisticsRecord) toStatistics(tr core.TimeRange) (core.Statistics, error) {
	if r.TotalIncome == nil || r.TotalExpense == nil {
		return core.Statistics{}, malformed("statistics", "missing totals")
	}
	st := core.Statistics{
		Range:        tr,
		TotalIncome:  *r.TotalIncome,
		TotalExpense: *r.TotalExpense,
		ByCategory:   make(map[string]core.CategoryFlow, len(r.ByCategory)),
	}
	for name, f := range r.ByCategory {
		if f.Income == nil || f.Expense == nil {
			return core.Statistics{}, malformed("statistics", fmt.Sprintf("category %q is incomplete", name))
		}
		st.ByCategory[name] = core.CategoryFlow{Income: *f.Income, Expense: *f.Expense}
	}
	return st, nil
}
