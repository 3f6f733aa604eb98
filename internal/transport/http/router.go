package http

import (
	"net/http"

	"line-quiz-bot/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the webhook, the JSON API and the ranking stream.
func NewRouter(engine *app.Engine) *chi.Mux {
	webhook := NewWebhookHandler(engine)
	api := NewAPIHandler(engine)
	ws := NewWSHandler(engine)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/webhook", webhook.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cron", api.Cron)
		r.Get("/ranking", api.Ranking)
		r.Get("/quiz-schedule", api.Schedule)
	})

	r.Get("/ws/ranking", ws.ServeWS)
	return r
}
