package api

import (
	"context"
	"net/http"
	"time"

	"blasting_tracker/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Notifier is told about committed edits that moved a trip between buckets.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, trackingID, from, to string)
}

type Handler struct {
	session  *session.Session
	notifier Notifier
}

// GetRouter initialises a new http router and applies all routes
func GetRouter(sess *session.Session, notifier Notifier) http.Handler {
	h := &Handler{session: sess, notifier: notifier}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	return applyRoutes(r, h)
}

func applyRoutes(r chi.Router, h *Handler) chi.Router {
	r.Get("/healthz", h.getHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", h.getSummary)
		r.Get("/buckets", h.getBuckets)
		r.Post("/reload", h.postReload)
		r.Get("/records/{trackingID}", h.getRecord)
		r.Patch("/records/{trackingID}", h.patchRecord)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
