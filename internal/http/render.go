package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	appweb "fintrack/web"
)

// page is the data every template receives. View carries the page's own
// view model.
type page struct {
	Title    string
	Path     string
	User     string
	SignedIn bool
	Flash    flash
	View     any
}

var funcs = template.FuncMap{
	"percent":  func(d decimal.Decimal) string { return d.StringFixed(1) },
	"negative": func(m core.Money) bool { return m.IsNegative() },
	"signed":   signedAmount,
	"title":    func(r core.TimeRange) string { return capitalize(string(r)) },
}

// parseTemplates builds one template set per page, each with the layout
// and the shared partials.
func parseTemplates() (map[string]*template.Template, error) {
	names, err := fs.Glob(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	sets := make(map[string]*template.Template)
	for _, name := range names {
		base := strings.TrimPrefix(name, "templates/")
		if base == "layout.html" || base == "partials.html" {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(appweb.TemplatesFS,
			"templates/layout.html", "templates/partials.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", base, err)
		}
		sets[base] = t
	}
	return sets, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, view any) {
	t, ok := s.templates[name]
	if !ok {
		s.logger.ErrorContext(r.Context(), "Template not found", "template", name)
		http.Error(w, "page not available", http.StatusInternalServerError)
		return
	}

	data := page{
		Title:    title,
		Path:     r.URL.Path,
		SignedIn: s.sessions.Authenticated(),
		Flash:    s.takeFlash(w, r),
		View:     view,
	}
	if data.SignedIn {
		data.User = s.sessions.DisplayName()
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldComponent, log.ComponentTemplate,
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err.Error())
		http.Error(w, "page not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func signedAmount(tx core.Transaction) string {
	if tx.Type == core.Expense {
		return "-" + tx.Amount.String()
	}
	return "+" + tx.Amount.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
