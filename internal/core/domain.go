package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const dateLayout = "2006-01-02"

type (
	// TxType is the direction of a transaction or the kind of a category.
	TxType string

	// Date is a calendar date; the time of day is always midnight UTC.
	Date struct {
		time.Time
	}

	// CategoryRef points to a category. The API sends either the bare id or
	// the populated category, so Name and Type may be empty.
	CategoryRef struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
		Type TxType `json:"type,omitempty"`
	}

	Transaction struct {
		ID          string      `json:"id"`
		Type        TxType      `json:"type"`
		Amount      Money       `json:"amount"`
		Category    CategoryRef `json:"category"`
		Description string      `json:"description,omitempty"`
		Date        Date        `json:"date"`
	}

	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type TxType `json:"type"`
	}

	User struct {
		ID    string `json:"id,omitempty"`
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}
)

// ErrMalformedData marks payloads whose shape does not match what the
// client expects. Views degrade to an empty state when they see it.
var ErrMalformedData = errors.New("malformed data")

func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a plain calendar date or a full RFC 3339 timestamp, which
// is what document stores usually hand back for date fields.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// Today returns the current calendar date in the local zone.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Label returns the best human readable name for the category.
func (r CategoryRef) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// UnmarshalJSON accepts either "id" or {"_id"|"id", "name", "type"}.
func (r *CategoryRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*r = CategoryRef{ID: id}
		return nil
	}
	var obj struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Name    string `json:"name"`
		Type    TxType `json:"type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("category must be an id or an object: %w", err)
	}
	r.ID = obj.MongoID
	if r.ID == "" {
		r.ID = obj.ID
	}
	r.Name = obj.Name
	r.Type = obj.Type
	return nil
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

func (u User) IsZero() bool {
	return u.ID == "" && u.Name == "" && u.Email == ""
}

// FilterCategories returns the categories of the given type, keeping order.
func FilterCategories(cats []Category, t TxType) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
