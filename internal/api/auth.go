package api

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string
	User  core.User
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     r,
		public:   true,
		what:     "registration",
		fallback: "registration failed",
	}, nil)
}

// Login exchanges credentials for a bearer token. A success body without a
// token is malformed.
func (c *Client) Login(ctx context.Context, r LoginRequest) (LoginResponse, error) {
	var rec loginRecord
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     r,
		public:   true,
		what:     "login response",
		fallback: "invalid credentials",
	}, &rec)
	if err != nil {
		return LoginResponse{}, err
	}
	if strings.TrimSpace(rec.Token) == "" {
		return LoginResponse{}, malformed("login response", "no token received")
	}
	return LoginResponse{Token: rec.Token, User: rec.User.toUser()}, nil
}
