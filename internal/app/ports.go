package app

import (
	"context"
	"time"

	"line-quiz-bot/internal/domain"
)

// QuizStore persists quizzes and answers the time-window queries the engine needs.
type QuizStore interface {
	// NextActiveQuiz returns the quiz with the earliest Day >= now, or domain.ErrQuizNotFound.
	NextActiveQuiz(ctx context.Context, now time.Time) (domain.Quiz, error)
	// UpcomingQuizzes returns every quiz with Day >= now in ascending Day order.
	UpcomingQuizzes(ctx context.Context, now time.Time) ([]domain.Quiz, error)
	// ExpiredQuizzes returns every quiz with Day < now.
	ExpiredQuizzes(ctx context.Context, now time.Time) ([]domain.Quiz, error)
	// InsertQuiz stores quiz under a fresh ID and returns the stored copy.
	InsertQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error
}

// AnswerLedger is the append-only record of first correct answers.
type AnswerLedger interface {
	HasAnswered(ctx context.Context, quizID, userID string) (bool, error)
	// RecordAnswer appends rec. Backends that can detect duplicates return domain.ErrAlreadyAnswered.
	RecordAnswer(ctx context.Context, rec domain.AnswerRecord) error
	// Ranking returns the records of quizID ascending by SubmittedAt.
	Ranking(ctx context.Context, quizID string) ([]domain.AnswerRecord, error)
}

// ImageStore keeps the reference gallery.
type ImageStore interface {
	AddImage(ctx context.Context, img domain.ReferenceImage) (domain.ReferenceImage, error)
	ListImages(ctx context.Context) ([]domain.ReferenceImage, error)
	// PruneImages drops the oldest images so that at most keep remain.
	PruneImages(ctx context.Context, keep int) (int, error)
}

// SessionStore keeps per-user conversational state.
type SessionStore interface {
	// LoadSession returns the stored session or a fresh one for userID.
	LoadSession(ctx context.Context, userID string) (domain.UserSession, error)
	SaveSession(ctx context.Context, session domain.UserSession) error
}

// Messenger is the chat transport.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, replies []domain.Reply) error
	DisplayName(ctx context.Context, userID string) (string, error)
	Content(ctx context.Context, messageID string) ([]byte, error)
}

// ImageMatcher scores an incoming image against the reference gallery.
type ImageMatcher interface {
	BestMatch(ctx context.Context, incoming []byte) (domain.ImageMatch, error)
}
