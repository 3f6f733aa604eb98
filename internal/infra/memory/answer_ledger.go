package memory

import (
	"context"
	"sort"
	"sync"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
)

// AnswerLedger is an in-memory implementation of app.AnswerLedger. Like the document
// store it stands in for, it does not reject duplicates itself.
type AnswerLedger struct {
	mu      sync.RWMutex
	records map[string][]domain.AnswerRecord
}

func NewAnswerLedger() *AnswerLedger {
	return &AnswerLedger{records: make(map[string][]domain.AnswerRecord)}
}

func (l *AnswerLedger) HasAnswered(_ context.Context, quizID, userID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rec := range l.records[quizID] {
		if rec.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (l *AnswerLedger) RecordAnswer(_ context.Context, rec domain.AnswerRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	l.mu.Lock()
	l.records[rec.QuizID] = append(l.records[rec.QuizID], rec)
	l.mu.Unlock()
	return nil
}

func (l *AnswerLedger) Ranking(_ context.Context, quizID string) ([]domain.AnswerRecord, error) {
	l.mu.RLock()
	out := append([]domain.AnswerRecord(nil), l.records[quizID]...)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}
