// Package server wires the api packages into a single http.Handler.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/andrebq/packbox/auth"
	authapi "github.com/andrebq/packbox/auth/api"
	"github.com/andrebq/packbox/internal/httpjson"
	"github.com/andrebq/packbox/internal/logutil"
	"github.com/andrebq/packbox/internal/metrics"
	"github.com/andrebq/packbox/store"
	storeapi "github.com/andrebq/packbox/store/api"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

type (
	Deps struct {
		Store  *store.Store
		Hasher *auth.Hasher
		Tokens *auth.Issuer
		// Metrics is optional, nil disables /metrics
		Metrics     *metrics.Metrics
		CORSOrigins []string
	}

	healthResponse struct {
		Status string `json:"status"`
	}
)

// AsHandler returns the complete packbox api
func AsHandler(ctx context.Context, d Deps) http.Handler {
	router := httprouter.New()
	realm := authapi.NewRealm(d.Store, d.Hasher, d.Tokens)
	if d.Metrics != nil {
		realm.RecordAttempts(d.Metrics.AuthAttempt)
		router.Handler(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	realm.Mount(router)
	storeapi.Mount(router, d.Store, realm.Protect)
	router.HandlerFunc(http.MethodGet, "/health", health(d.Store))
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpjson.Message(w, http.StatusNotFound, "Not found")
	})

	var handler http.Handler = router
	handler = cors(d.CORSOrigins)(handler)
	if d.Metrics != nil {
		routes := append([]string{"/health", "/metrics"}, authapi.Routes...)
		routes = append(routes, storeapi.Routes...)
		handler = d.Metrics.Middleware(routes)(handler)
	}
	handler = requestLogger(logutil.GetOrDefault(ctx))(handler)
	return middleware.Recoverer(handler)
}

func health(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			logger := logutil.GetOrDefault(ctx)
			logger.Warn().Err(err).Msg("Health check failed")
			httpjson.Write(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		httpjson.Write(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

// requestLogger gives each request a child logger tagged with a fresh
// request id and logs the outcome once the request is done.
func requestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := uuid.NewString()
			log := base.With().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			w.Header().Set("X-Request-Id", reqID)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(logutil.WithLogger(r.Context(), log)))
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info().Int("status", status).Dur("elapsed", time.Since(start)).Msg("Request completed")
		})
	}
}
