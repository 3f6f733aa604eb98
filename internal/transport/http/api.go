package http

import (
	"errors"
	"net/http"
	"time"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/domain"

	log "github.com/sirupsen/logrus"
)

// APIHandler serves the scheduled sweep trigger and the read-only JSON views.
type APIHandler struct {
	engine *app.Engine
}

func NewAPIHandler(engine *app.Engine) *APIHandler {
	return &APIHandler{engine: engine}
}

type cronResponse struct {
	Message string `json:"message"`
	app.SweepReport
}

// Cron runs one expiry sweep. Individual failed deletes are reported in the body.
func (h *APIHandler) Cron(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Sweep(r.Context())
	if err != nil {
		log.WithError(err).Error("cron sweep failed")
		writeError(w, http.StatusServiceUnavailable, "quiz store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cronResponse{Message: "Cron job executed successfully", SweepReport: report})
}

func (h *APIHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.engine.Ranking(r.Context(), r.URL.Query().Get("quizId"))
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "no active quiz")
		return
	case err != nil:
		log.WithError(err).Error("ranking lookup failed")
		writeError(w, http.StatusServiceUnavailable, "ranking unavailable")
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

type scheduleEntry struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	Type  string    `json:"type"`
}

// Schedule lists upcoming quizzes in calendar form. Answers are never exposed.
func (h *APIHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.engine.Schedule(r.Context())
	if err != nil {
		log.WithError(err).Error("schedule lookup failed")
		writeError(w, http.StatusServiceUnavailable, "schedule unavailable")
		return
	}
	entries := make([]scheduleEntry, 0, len(quizzes))
	for _, quiz := range quizzes {
		title := quiz.Question
		if title == "" {
			title = "Untitled Quiz"
		}
		kind := string(quiz.Kind)
		if kind == "" {
			kind = string(domain.QuizKindText)
		}
		entries = append(entries, scheduleEntry{Title: title, Start: quiz.Day, Type: kind})
	}
	writeJSON(w, http.StatusOK, entries)
}
