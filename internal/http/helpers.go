package http

import (
	"net/http"
	"net/url"

	"fintrack/internal/log"
	"fintrack/internal/middleware/security"
	"fintrack/internal/pages"
)

// parseForm reads a bounded urlencoded body. On failure it has already
// answered the request.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err.Error())
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return false
	}
	return true
}

// text returns a sanitized free text field.
func text(r *http.Request, key string) string {
	return security.SanitizeText(r.PostForm.Get(key))
}

// keep copies the named fields so a rejected form can be refilled.
// Passwords are never kept.
func keep(r *http.Request, keys ...string) url.Values {
	out := make(url.Values, len(keys))
	for _, k := range keys {
		out.Set(k, text(r, k))
	}
	return out
}

// finish completes a form post: the outcome's message travels in a flash
// and the browser is sent to the outcome's page with a 303.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, out pages.Outcome, form url.Values) {
	if out.Error != "" || out.Notice != "" {
		f := flash{Error: out.Error, Notice: out.Notice}
		if out.Error != "" {
			f.Form = form
		}
		s.setFlash(w, f)
	}
	target := out.Redirect
	if target == "" {
		target = pages.DashboardPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// follow reports whether a page view asked for a redirect, and sends it.
func follow(w http.ResponseWriter, r *http.Request, redirect string) bool {
	if redirect == "" {
		return false
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
	return true
}
