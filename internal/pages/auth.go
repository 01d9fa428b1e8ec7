package pages

import (
	"context"
	"errors"
	"strings"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type LoginForm struct {
	Email    string
	Password string
}

type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Login exchanges credentials for a token. Any failure wipes the stored
// token and user.
func (c *Controller) Login(ctx context.Context, f LoginForm) Outcome {
	creds := core.Credentials{Email: strings.TrimSpace(f.Email), Password: f.Password}
	if err := creds.Validate(); err != nil {
		return Outcome{Error: err.Error(), Redirect: LoginPath}
	}

	resp, err := c.api.Login(ctx, api.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		if cerr := c.sessions.Clear(ctx); cerr != nil {
			c.logger.WarnContext(ctx, "Failed to clear persisted session", log.FieldError, cerr.Error())
		}
		msg, _, malformed := c.failure(ctx, log.OpLogin, err)
		if malformed {
			msg = "no token received"
		}
		var reqErr *api.RequestError
		if msg == "" || (errors.As(err, &reqErr) && reqErr.Status == 0) {
			msg = "login failed, please try again"
		}
		return Outcome{Error: msg, Redirect: LoginPath}
	}

	if err := c.sessions.SetToken(ctx, resp.Token); err != nil {
		c.logger.WarnContext(ctx, "Token kept in memory only", log.FieldError, err.Error())
	}
	if err := c.sessions.SetUser(ctx, resp.User); err != nil {
		c.logger.WarnContext(ctx, "User kept in memory only", log.FieldError, err.Error())
	}
	c.logger.InfoContext(ctx, "Signed in", log.FieldOperation, log.OpLogin)
	return Outcome{Redirect: DashboardPath}
}

func (c *Controller) Register(ctx context.Context, f RegisterForm) Outcome {
	reg := core.Registration{
		Name:            strings.TrimSpace(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
	if err := reg.Validate(); err != nil {
		return Outcome{Error: err.Error(), Redirect: "/register"}
	}

	err := c.api.Register(ctx, api.RegisterRequest{Name: reg.Name, Email: reg.Email, Password: reg.Password})
	if err != nil {
		return c.fail(ctx, log.OpRegister, "/register", err)
	}
	return Outcome{Notice: "account created, please sign in", Redirect: LoginPath}
}

func (c *Controller) Logout(ctx context.Context) Outcome {
	if err := c.sessions.Clear(ctx); err != nil {
		c.logger.WarnContext(ctx, "Failed to clear persisted session", log.FieldError, err.Error())
	}
	return Outcome{Redirect: LoginPath}
}
