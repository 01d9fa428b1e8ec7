package api

import (
	"context"
	"net/http"

	"fintrack/internal/core"
)

type NewCategory struct {
	Name string      `json:"name"`
	Type core.TxType `json:"type"`
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var recs []categoryRecord
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/categories",
		what:     "category list",
		fallback: "failed to load categories",
	}, &recs)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(recs))
	for _, r := range recs {
		cat, err := r.toCategory()
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, nc NewCategory) (core.Category, error) {
	var rec categoryRecord
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/categories",
		body:     nc,
		what:     "created category",
		fallback: "failed to create category",
	}, &rec)
	if err != nil {
		return core.Category{}, err
	}
	return rec.toCategory()
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     resourcePath("/categories", id),
		what:     "category deletion",
		fallback: "failed to delete category",
	}, nil)
}
