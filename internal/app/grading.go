package app

import (
	"context"
	"errors"
	"fmt"

	"line-quiz-bot/internal/domain"

	log "github.com/sirupsen/logrus"
)

// gradeAnswer compares the text strictly against the quiz captured by the user's last
// request, or the current active quiz when nothing usable was captured.
func (e *Engine) gradeAnswer(ctx context.Context, ev domain.Event) ([]domain.Reply, error) {
	quiz, err := e.quizForGrading(ctx, ev.UserID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return []domain.Reply{domain.TextReply(msgNoQuiz)}, nil
	}
	if err != nil {
		return e.internalFailure(ev, "resolve quiz for grading", err), nil
	}

	if ev.Text != quiz.Answer {
		return []domain.Reply{domain.TextReply(msgIncorrect)}, nil
	}

	recorded, err := e.recordFirstAnswer(ctx, quiz, ev)
	if err != nil {
		return e.internalFailure(ev, "record answer", err), nil
	}
	if !recorded {
		return []domain.Reply{domain.TextReply(msgAlreadyAnswered)}, nil
	}

	e.publishRanking(ctx, quiz.ID)
	return []domain.Reply{
		domain.TextReply(msgCorrect),
		domain.TextReply(rankingLinkText(e.cfg.Links)),
	}, nil
}

func (e *Engine) quizForGrading(ctx context.Context, userID string) (domain.Quiz, error) {
	session, err := e.sessions.LoadSession(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("failed to load session, grading against active quiz")
	} else if e.capturedQuizUsable(session) {
		return *session.Quiz, nil
	}
	return e.quizzes.NextActiveQuiz(ctx, e.now())
}

// capturedQuizUsable reports whether the session's captured quiz may still be graded:
// while it is active, or within CaptureGrace of the request that captured it.
func (e *Engine) capturedQuizUsable(session domain.UserSession) bool {
	if session.Quiz == nil {
		return false
	}
	now := e.now()
	if session.Quiz.ActiveAt(now) {
		return true
	}
	return now.Sub(session.QuizCapturedAt) <= e.cfg.CaptureGrace
}

// recordFirstAnswer runs the check-and-record sequence under a (quiz, user) lock so two
// concurrent submissions of the same user cannot both be recorded. It reports whether a
// new record was written.
func (e *Engine) recordFirstAnswer(ctx context.Context, quiz domain.Quiz, ev domain.Event) (bool, error) {
	unlock := e.locks.Lock(answerLockKey(quiz.ID, ev.UserID))
	defer unlock()

	answered, err := e.ledger.HasAnswered(ctx, quiz.ID, ev.UserID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if answered {
		return false, nil
	}

	rec := domain.AnswerRecord{
		QuizID:      quiz.ID,
		UserID:      ev.UserID,
		UserName:    e.displayName(ctx, ev.UserID),
		Text:        ev.Text,
		SubmittedAt: e.now(),
	}
	err = e.ledger.RecordAnswer(ctx, rec)
	if errors.Is(err, domain.ErrAlreadyAnswered) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	log.WithFields(log.Fields{"quiz_id": quiz.ID, "user_id": ev.UserID}).Info("correct answer recorded")
	return true, nil
}

func (e *Engine) displayName(ctx context.Context, userID string) string {
	if e.messenger == nil {
		return userID
	}
	name, err := e.messenger.DisplayName(ctx, userID)
	if err != nil || name == "" {
		log.WithError(err).WithField("user_id", userID).Warn("profile lookup failed, using user id as name")
		return userID
	}
	return name
}

func (e *Engine) publishRanking(ctx context.Context, quizID string) {
	if e.feed.Subscribers(quizID) == 0 {
		return
	}
	ranking, err := e.Ranking(ctx, quizID)
	if err != nil {
		log.WithError(err).WithField("quiz_id", quizID).Warn("failed to refresh ranking feed")
		return
	}
	e.feed.Publish(ranking)
}

// Ranking returns the ranking of quizID, or of the active quiz when quizID is empty.
func (e *Engine) Ranking(ctx context.Context, quizID string) (domain.Ranking, error) {
	if quizID == "" {
		quiz, err := e.quizzes.NextActiveQuiz(ctx, e.now())
		if err != nil {
			if errors.Is(err, domain.ErrQuizNotFound) {
				return domain.Ranking{}, err
			}
			return domain.Ranking{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		quizID = quiz.ID
	}
	records, err := e.ledger.Ranking(ctx, quizID)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return domain.NewRanking(quizID, records, e.now()), nil
}

// SubscribeRanking streams ranking updates of quizID, starting with the current ranking.
func (e *Engine) SubscribeRanking(ctx context.Context, quizID string) (<-chan domain.Ranking, func(), error) {
	initial, err := e.Ranking(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := e.feed.Subscribe(initial.QuizID, initial)
	return ch, cancel, nil
}

// Schedule lists the quizzes whose deadline has not passed, soonest first.
func (e *Engine) Schedule(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := e.quizzes.UpcomingQuizzes(ctx, e.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return quizzes, nil
}
