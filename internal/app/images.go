package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"line-quiz-bot/internal/domain"

	log "github.com/sirupsen/logrus"
)

// respondImage either stores the image as a reference (after 画像設定) or matches it
// against the gallery.
func (e *Engine) respondImage(ctx context.Context, ev domain.Event) ([]domain.Reply, error) {
	unlock := e.locks.Lock(sessionLockKey(ev.UserID))
	defer unlock()

	session, err := e.sessions.LoadSession(ctx, ev.UserID)
	if err != nil {
		return e.internalFailure(ev, "load session", err), nil
	}

	content, err := e.messenger.Content(ctx, ev.MessageID)
	if err != nil {
		err = fmt.Errorf("%w: message %s: %w", domain.ErrAttachmentFetchFailed, ev.MessageID, err)
		log.WithError(err).WithField("user_id", ev.UserID).Error("image event aborted")
		return []domain.Reply{domain.TextReply(msgAttachmentFailed)}, nil
	}

	if session.PendingImageCapture {
		return e.captureImage(ctx, ev, session, content), nil
	}
	return e.matchImage(ctx, ev, content), nil
}

// captureImage runs with the session lock held by respondImage.
func (e *Engine) captureImage(ctx context.Context, ev domain.Event, session domain.UserSession, content []byte) []domain.Reply {
	stored, err := e.images.AddImage(ctx, domain.ReferenceImage{
		Data:      base64.StdEncoding.EncodeToString(content),
		CreatedAt: e.now(),
	})
	if err != nil {
		return e.internalFailure(ev, "store reference image", err)
	}

	session.UserID = ev.UserID
	session.PendingImageCapture = false
	session.UpdatedAt = e.now()
	if err := e.sessions.SaveSession(ctx, session); err != nil {
		log.WithError(err).WithField("user_id", ev.UserID).Warn("failed to clear image capture flag")
	}

	if e.cfg.MaxImages > 0 {
		if pruned, err := e.images.PruneImages(ctx, e.cfg.MaxImages); err != nil {
			log.WithError(err).Warn("failed to prune reference gallery")
		} else if pruned > 0 {
			log.WithField("pruned", pruned).Info("reference gallery pruned")
		}
	}

	log.WithFields(log.Fields{"image_id": stored.ID, "user_id": ev.UserID}).Info("reference image saved")
	return []domain.Reply{domain.TextReply(msgImageSaved)}
}

func (e *Engine) matchImage(ctx context.Context, ev domain.Event, content []byte) []domain.Reply {
	match, err := e.matcher.BestMatch(ctx, content)
	if errors.Is(err, domain.ErrUndecodableImage) {
		log.WithError(err).WithField("user_id", ev.UserID).Warn("incoming image could not be decoded")
		return []domain.Reply{domain.TextReply(msgImageUnreadable)}
	}
	if err != nil {
		return e.internalFailure(ev, "match image", err)
	}
	if match.Compared == 0 && match.Skipped == 0 {
		return []domain.Reply{domain.TextReply(msgNoReferenceImages)}
	}

	percent := match.Similarity * 100
	log.WithFields(log.Fields{"user_id": ev.UserID, "similarity": match.Similarity, "skipped": match.Skipped}).Info("image matched against gallery")
	if match.Similarity > e.cfg.MatchThreshold {
		return []domain.Reply{domain.TextReply(fmt.Sprintf(msgImageMatched, percent))}
	}
	return []domain.Reply{domain.TextReply(fmt.Sprintf(msgImageNotMatched, percent))}
}
