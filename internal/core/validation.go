package core

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MaxDescriptionLength  = 200
	MaxCategoryNameLength = 50
	MinPasswordLength     = 6
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError is a client-side rejection. It blocks submission and its
// message is shown next to the form; no request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrMissingFields     = &ValidationError{Field: "form", Message: "all fields are required"}
	ErrInvalidAmount     = &ValidationError{Field: "amount", Message: "amount must be a positive number"}
	ErrInvalidType       = &ValidationError{Field: "type", Message: "type must be income or expense"}
	ErrInvalidDate       = &ValidationError{Field: "date", Message: "date must be a valid YYYY-MM-DD date"}
	ErrEmptyCategory     = &ValidationError{Field: "category", Message: "category is required"}
	ErrEmptyName         = &ValidationError{Field: "name", Message: "name is required"}
	ErrInvalidEmail      = &ValidationError{Field: "email", Message: "email address is not valid"}
	ErrEmptyPassword     = &ValidationError{Field: "password", Message: "password is required"}
	ErrShortPassword     = &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	ErrPasswordMismatch  = &ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	ErrDescriptionLength = &ValidationError{Field: "description", Message: "description too long (max 200 characters)"}
	ErrCategoryLength    = &ValidationError{Field: "name", Message: "category name too long (max 50 characters)"}
	ErrInvalidTimeRange  = &ValidationError{Field: "timeRange", Message: "time range must be week, month or year"}
)

type (
	TransactionDraft struct {
		Type        TxType
		Amount      Money
		CategoryID  string
		Description string
		Date        Date
	}

	CategoryDraft struct {
		Name string
		Type TxType
	}

	Credentials struct {
		Email    string
		Password string
	}

	Registration struct {
		Name            string
		Email           string
		Password        string
		ConfirmPassword string
	}
)

func (t TransactionDraft) Validate() error {
	if t.Type == "" || t.CategoryID == "" || t.Date.IsZero() {
		return ErrMissingFields
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionLength
	}
	return t.Date.Validate()
}

func (c CategoryDraft) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(c.Name) > MaxCategoryNameLength {
		return ErrCategoryLength
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return ErrMissingFields
	}
	return validateEmail(c.Email)
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return ErrShortPassword
	}
	return nil
}

func validateEmail(s string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil || addr.Name != "" {
		return ErrInvalidEmail
	}
	return nil
}
