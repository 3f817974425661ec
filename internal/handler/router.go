package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Hacka25/athenian-trading/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the settings the router needs beyond the service.
type RouterConfig struct {
	AdminUser     string
	AdminPassword string
	// BaseURL is the externally visible server URL, used to build the
	// authorize link in missing credential responses.
	BaseURL string
}

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware. authz may be nil when the store
// needs no Google authorization; the /oauth routes are then not mounted.
func NewRouter(
	svc *service.TradingService,
	authz Authorizer,
	cfg RouterConfig,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	errs := errorWriter{authorizeURL: strings.TrimRight(cfg.BaseURL, "/") + "/oauth/authorize"}
	adminH := NewAdminHandler(svc, errs)
	tradeH := NewTradeHandler(svc, errs)
	var oauthH *OAuthHandler
	if authz != nil {
		oauthH = NewOAuthHandler(authz)
	}

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Admin routes.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BasicAuth("athenian-admin", map[string]string{
			cfg.AdminUser: cfg.AdminPassword,
		}))

		r.Get("/users", adminH.Users)
		r.Post("/users/refresh", adminH.RefreshUsers)
		r.Get("/units", adminH.Units)
		r.Post("/units/refresh", adminH.RefreshUnits)
		r.Get("/allocations", adminH.Allocations)
		r.Get("/transactions", adminH.Transactions)
		r.Post("/trades", adminH.AddTrade)
		r.Post("/trades/random", adminH.RandomTrade)
		r.Delete("/trades", adminH.ClearTrades)
		r.Get("/balances", adminH.Balances)
		r.Post("/balances/record", adminH.RecordBalances)

		if oauthH != nil {
			r.Get("/oauth/status", oauthH.Status)
		}
	})

	// Trader routes.
	r.Route("/trade", func(r chi.Router) {
		r.Use(traderAuth(svc, errs))

		r.Get("/balance", tradeH.Balance)
		r.Post("/", tradeH.AddTrade)
	})

	// Spreadsheet authorization.
	if oauthH != nil {
		r.Get("/oauth/authorize", oauthH.Authorize)
		r.Get("/oauth/callback", oauthH.Callback)
	}

	return r
}

// traderAuth returns middleware that checks HTTP basic credentials against
// the cached users and stores the trader in the request context.
func traderAuth(svc *service.TradingService, errs errorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			user, ok, err := svc.Authenticate(r.Context(), username, password)
			if err != nil {
				errs.write(w, err)
				return
			}
			if !ok {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), traderKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="athenian-trader"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid username or password")
}

// requestLogging returns middleware that logs each request's method, path,
// status code, duration and request id using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that rejects POST, PUT and PATCH requests
// carrying a body whose Content-Type is not application/json. Bodyless
// action requests such as POST /admin/trades/random pass through.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if r.ContentLength != 0 && !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
