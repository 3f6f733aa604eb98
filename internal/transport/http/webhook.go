package http

import (
	"encoding/json"
	"net/http"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives chat platform callbacks and hands every event to the engine.
type WebhookHandler struct {
	engine *app.Engine
}

func NewWebhookHandler(engine *app.Engine) *WebhookHandler {
	return &WebhookHandler{engine: engine}
}

type webhookRequest struct {
	Destination string         `json:"destination"`
	Events      []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message *struct {
		Type      string `json:"type"`
		ID        string `json:"id"`
		Text      string `json:"text"`
		PackageID string `json:"packageId"`
		StickerID string `json:"stickerId"`
	} `json:"message"`
}

func (e webhookEvent) toDomain() domain.Event {
	ev := domain.Event{
		Kind:       domain.EventOther,
		ReplyToken: e.ReplyToken,
		UserID:     e.Source.UserID,
	}
	if e.Type != "message" || e.Message == nil {
		return ev
	}
	ev.MessageID = e.Message.ID
	switch e.Message.Type {
	case "text":
		ev.Kind = domain.EventText
		ev.Text = e.Message.Text
	case "image":
		ev.Kind = domain.EventImage
	case "sticker":
		ev.Kind = domain.EventSticker
		ev.PackageID = e.Message.PackageID
		ev.StickerID = e.Message.StickerID
	case "audio":
		ev.Kind = domain.EventAudio
	}
	return ev
}

// ServeHTTP handles all events of one callback concurrently and answers 500 if any of
// them failed.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook body")
		return
	}

	ctx := r.Context()
	var g errgroup.Group
	for _, raw := range req.Events {
		ev := raw.toDomain()
		g.Go(func() error {
			return h.engine.HandleEvent(ctx, ev)
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).WithField("events", len(req.Events)).Error("webhook handling failed")
		writeError(w, http.StatusInternalServerError, "failed to handle events")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "OK"})
}
