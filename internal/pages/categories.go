package pages

import (
	"context"
	"strings"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type CategoryForm struct {
	Name string
	Type string
}

type CategoriesView struct {
	Income   []core.Category
	Expense  []core.Category
	Error    string
	Redirect string
}

func (c *Controller) Categories(ctx context.Context) CategoriesView {
	cats, err := c.api.ListCategories(ctx)
	if err != nil {
		msg, redirect, _ := c.failure(ctx, log.OpList, err)
		return CategoriesView{Error: msg, Redirect: redirect}
	}
	return CategoriesView{
		Income:  core.FilterCategories(cats, core.Income),
		Expense: core.FilterCategories(cats, core.Expense),
	}
}

func (c *Controller) CreateCategory(ctx context.Context, f CategoryForm) Outcome {
	draft := core.CategoryDraft{Name: strings.TrimSpace(f.Name)}
	t, err := core.ParseTxType(f.Type)
	if err != nil {
		return Outcome{Error: err.Error(), Redirect: CategoriesPath}
	}
	draft.Type = t
	if err := draft.Validate(); err != nil {
		return Outcome{Error: err.Error(), Redirect: CategoriesPath}
	}

	cat, err := c.api.CreateCategory(ctx, api.NewCategory{Name: draft.Name, Type: draft.Type})
	if err != nil {
		return c.fail(ctx, log.OpCreate, CategoriesPath, err)
	}
	c.logger.InfoContext(ctx, "Category created", log.FieldCategory, cat.Name, log.FieldTxType, string(cat.Type))
	return Outcome{Notice: "category added", Redirect: CategoriesPath}
}

func (c *Controller) DeleteCategory(ctx context.Context, id string) Outcome {
	if strings.TrimSpace(id) == "" {
		return Outcome{Error: "category not found", Redirect: CategoriesPath}
	}
	if err := c.api.DeleteCategory(ctx, id); err != nil {
		return c.fail(ctx, log.OpDelete, CategoriesPath, err)
	}
	return Outcome{Notice: "category deleted", Redirect: CategoriesPath}
}
