package http

import (
	"errors"
	"net/http"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/domain"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// WSHandler streams live ranking updates of a quiz.
type WSHandler struct {
	engine   *app.Engine
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.Engine) *WSHandler {
	return &WSHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS subscribes to the ranking of ?quizId= (default: the active quiz) and pushes
// every update until the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	updates, cancel, err := h.engine.SubscribeRanking(r.Context(), r.URL.Query().Get("quizId"))
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "no active quiz")
		return
	}
	if err != nil {
		log.WithError(err).Error("ranking subscription failed")
		writeError(w, http.StatusServiceUnavailable, "ranking unavailable")
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	// The reader only watches for the client closing; all writes happen below.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.Ranking]{Type: "ranking", Payload: update}); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}
}
