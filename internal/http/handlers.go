package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/pages"
)

const (
	registerPath   = "/register"
	statisticsPath = "/statistics"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", "Sign in", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out := s.pages.Login(r.Context(), pages.LoginForm{
		Email:    text(r, "email"),
		Password: r.PostForm.Get("password"),
	})
	s.finish(w, r, out, keep(r, "email"))
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", "Create account", nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out := s.pages.Register(r.Context(), pages.RegisterForm{
		Name:            text(r, "name"),
		Email:           text(r, "email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
	})
	s.finish(w, r, out, keep(r, "name", "email"))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.finish(w, r, s.pages.Logout(r.Context()), nil)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := s.pages.Dashboard(r.Context())
	if follow(w, r, view.Redirect) {
		return
	}
	s.render(w, r, "dashboard.html", "Dashboard", view)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	view := s.pages.Statistics(r.Context(), r.URL.Query().Get("range"))
	if follow(w, r, view.Redirect) {
		return
	}
	s.render(w, r, "statistics.html", "Statistics", view)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	view := s.pages.Transactions(r.Context())
	if follow(w, r, view.Redirect) {
		return
	}
	s.render(w, r, "transactions.html", "Transactions", view)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out := s.pages.CreateTransaction(r.Context(), pages.TransactionForm{
		Type:        r.PostForm.Get("type"),
		Amount:      r.PostForm.Get("amount"),
		Category:    r.PostForm.Get("category"),
		Description: text(r, "description"),
		Date:        r.PostForm.Get("date"),
	})
	s.finish(w, r, out, keep(r, "type", "amount", "category", "description", "date"))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.finish(w, r, s.pages.DeleteTransaction(r.Context(), chi.URLParam(r, "id")), nil)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	view := s.pages.Categories(r.Context())
	if follow(w, r, view.Redirect) {
		return
	}
	s.render(w, r, "categories.html", "Categories", view)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out := s.pages.CreateCategory(r.Context(), pages.CategoryForm{
		Name: text(r, "name"),
		Type: r.PostForm.Get("type"),
	})
	s.finish(w, r, out, keep(r, "name", "type"))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.finish(w, r, s.pages.DeleteCategory(r.Context(), chi.URLParam(r, "id")), nil)
}

// handleHealth reports liveness and request metrics.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"metrics":   s.metrics(),
	})
}

// handleReady checks the templates and the session store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok"}
	if len(s.templates) == 0 {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	switch {
	case s.store == nil:
		checks["session_store"] = "memory"
	default:
		if err := s.store.Ping(ctx); err != nil {
			checks["session_store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["session_store"] = "ok"
		}
	}

	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

func (s *Server) metrics() map[string]int64 {
	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	dm := s.detector.GetMetrics()
	return map[string]int64{
		"requests_total":        tm.TotalRequests,
		"last_response_time_us": tm.LastResponseTime,
		"rate_limited_hits":     rl.TotalHits,
		"tracked_clients":       rl.ClientCount,
		"suspicious_requests":   dm.SuspiciousRequests,
		"blocked_requests":      dm.BlockedRequests,
		"flash_entries":         int64(s.flashes.Size()),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
