package http

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

const flashCookie = "fintrack_flash"

// flash carries a message, and the submitted values on error, from a form
// post to the page rendered after the redirect.
type flash struct {
	Error  string
	Notice string
	Form   url.Values
}

// Value returns a submitted form value to refill the form.
func (f flash) Value(key string) string {
	return f.Form.Get(key)
}

func (s *Server) setFlash(w http.ResponseWriter, f flash) {
	id := uuid.New().String()
	s.flashes.Set(id, f)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending flash, if any, and consumes it.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return flash{}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	f, _ := s.flashes.Take(c.Value)
	return f
}
