package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
)

// QuizRepository is an in-memory implementation of app.QuizStore.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizRepository(seed ...domain.Quiz) *QuizRepository {
	r := &QuizRepository{quizzes: make(map[string]domain.Quiz, len(seed))}
	for _, quiz := range seed {
		if quiz.ID == "" {
			quiz.ID = uuid.NewString()
		}
		r.quizzes[quiz.ID] = quiz
	}
	return r
}

func (r *QuizRepository) NextActiveQuiz(_ context.Context, now time.Time) (domain.Quiz, error) {
	upcoming := r.filter(func(q domain.Quiz) bool { return q.ActiveAt(now) })
	if len(upcoming) == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return upcoming[0], nil
}

func (r *QuizRepository) UpcomingQuizzes(_ context.Context, now time.Time) ([]domain.Quiz, error) {
	return r.filter(func(q domain.Quiz) bool { return q.ActiveAt(now) }), nil
}

func (r *QuizRepository) ExpiredQuizzes(_ context.Context, now time.Time) ([]domain.Quiz, error) {
	return r.filter(func(q domain.Quiz) bool { return !q.ActiveAt(now) }), nil
}

func (r *QuizRepository) InsertQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.ID = uuid.NewString()
	if quiz.Kind == "" {
		quiz.Kind = domain.QuizKindText
	}
	r.mu.Lock()
	r.quizzes[quiz.ID] = quiz
	r.mu.Unlock()
	return quiz, nil
}

func (r *QuizRepository) DeleteQuiz(_ context.Context, quizID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.quizzes, quizID)
	return nil
}

// filter returns matching quizzes ordered by deadline, then ID.
func (r *QuizRepository) filter(keep func(domain.Quiz) bool) []domain.Quiz {
	r.mu.RLock()
	out := make([]domain.Quiz, 0, len(r.quizzes))
	for _, quiz := range r.quizzes {
		if keep(quiz) {
			out = append(out, quiz)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
