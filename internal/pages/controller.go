// Package pages holds the page controllers: they validate form input, call
// the API and shape results for the templates.
//
// Failures never escape as errors. A 401 clears the session and redirects
// to the login page, validation and request failures become an inline
// message, and malformed payloads render as an empty page.
package pages

import (
	"context"
	"errors"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	LoginPath        = "/login"
	DashboardPath    = "/dashboard"
	TransactionsPath = "/transactions"
	CategoriesPath   = "/categories"
)

const genericFailure = "something went wrong, please try again"

// API is the subset of the REST client the pages use.
type API interface {
	Register(ctx context.Context, r api.RegisterRequest) error
	Login(ctx context.Context, r api.LoginRequest) (api.LoginResponse, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, nc api.NewCategory) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, nt api.NewTransaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	Summary(ctx context.Context) (core.Summary, error)
	Statistics(ctx context.Context, tr core.TimeRange) (core.Statistics, error)
}

type Sessions interface {
	SetToken(ctx context.Context, token string) error
	SetUser(ctx context.Context, u core.User) error
	Clear(ctx context.Context) error
}

// Activity receives transaction events after the API accepted a change.
type Activity interface {
	Publish(ctx context.Context, ev *amqp.TransactionEvent) error
}

type Controller struct {
	api      API
	sessions Sessions
	activity Activity
	logger   *log.Logger
}

func New(a API, s Sessions, activity Activity, logger *log.Logger) *Controller {
	if activity == nil {
		activity = amqp.Discard{}
	}
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentPages, Handler: slog.Default().Handler()})
	}
	return &Controller{api: a, sessions: s, activity: activity, logger: logger}
}

// Outcome is the result of a form submission. Redirect is always set; the
// HTTP layer keeps Error and the submitted values for the next render.
type Outcome struct {
	Error    string
	Notice   string
	Redirect string
}

// failure classifies err. It returns the inline message to show, a
// redirect when the session is gone, and whether the data was malformed.
func (c *Controller) failure(ctx context.Context, op string, err error) (msg, redirect string, malformed bool) {
	var reqErr *api.RequestError
	switch {
	case errors.Is(err, api.ErrUnauthenticated):
		if cerr := c.sessions.Clear(ctx); cerr != nil {
			c.logger.WarnContext(ctx, "Failed to clear persisted session", log.FieldOperation, op, log.FieldError, cerr.Error())
		}
		c.logger.InfoContext(ctx, "Session rejected by API, signing out", log.FieldOperation, op)
		return "", LoginPath, false
	case errors.Is(err, core.ErrMalformedData):
		c.logger.WarnContext(ctx, "Malformed API payload",
			log.FieldOperation, op,
			"error_type", log.ErrorTypeMalformed,
			log.FieldError, err.Error())
		return "", "", true
	case errors.Is(err, core.ErrValidation):
		return err.Error(), "", false
	case errors.As(err, &reqErr):
		c.logger.WarnContext(ctx, "API request failed",
			log.FieldOperation, op,
			log.FieldStatusCode, reqErr.Status,
			log.FieldError, err.Error())
		return reqErr.Message, "", false
	default:
		log.NewStructuredLogger(c.logger).LogError(ctx, "Unexpected page failure", err, log.ComponentPages, op, log.NewFields())
		return genericFailure, "", false
	}
}

// fail turns a mutation error into an Outcome that goes back to page.
func (c *Controller) fail(ctx context.Context, op, page string, err error) Outcome {
	msg, redirect, malformed := c.failure(ctx, op, err)
	if redirect != "" {
		return Outcome{Redirect: redirect}
	}
	if malformed {
		msg = "unexpected response from server"
	}
	return Outcome{Error: msg, Redirect: page}
}

func (c *Controller) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if err := c.activity.Publish(ctx, ev); err != nil {
		c.logger.WarnContext(ctx, "Failed to publish transaction event",
			"kind", ev.Kind,
			log.FieldTxID, ev.TransactionID,
			log.FieldError, err.Error())
	}
}
