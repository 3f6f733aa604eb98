package sqlite

import (
	"context"
	"fmt"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
)

func (s *Store) HasAnswered(ctx context.Context, quizID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM responses WHERE quiz_id = ? AND user_id = ?)`,
		quizID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check response: %w", err)
	}
	return exists, nil
}

// RecordAnswer relies on the (quiz_id, user_id) unique key with INSERT OR IGNORE, so an
// existing response is never overwritten.
func (s *Store) RecordAnswer(ctx context.Context, rec domain.AnswerRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO responses (id, quiz_id, user_id, user_name, message, submitted_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.QuizID, rec.UserID, rec.UserName, rec.Text, toUnix(rec.SubmittedAt))
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

func (s *Store) Ranking(ctx context.Context, quizID string) ([]domain.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, quiz_id, user_id, user_name, message, submitted_at_unix
		 FROM responses WHERE quiz_id = ? ORDER BY submitted_at_unix, rowid`, quizID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var records []domain.AnswerRecord
	for rows.Next() {
		var (
			rec       domain.AnswerRecord
			submitted int64
		)
		if err := rows.Scan(&rec.ID, &rec.QuizID, &rec.UserID, &rec.UserName, &rec.Text, &submitted); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		rec.SubmittedAt = fromUnix(submitted)
		records = append(records, rec)
	}
	return records, rows.Err()
}
