package postgres

import (
	"context"
	"fmt"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AnswerLedger stores first correct answers in the responses table. The unique
// (quiz_id, user_id) constraint backs up the engine's per-user lock across replicas.
type AnswerLedger struct {
	pool *pgxpool.Pool
}

func NewAnswerLedger(pool *pgxpool.Pool) *AnswerLedger {
	return &AnswerLedger{pool: pool}
}

func (l *AnswerLedger) HasAnswered(ctx context.Context, quizID, userID string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM responses WHERE quiz_id = $1 AND user_id = $2)`,
		quizID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check response: %w", err)
	}
	return exists, nil
}

func (l *AnswerLedger) RecordAnswer(ctx context.Context, rec domain.AnswerRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	tag, err := l.pool.Exec(ctx,
		`INSERT INTO responses (id, quiz_id, user_id, user_name, message, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (quiz_id, user_id) DO NOTHING`,
		rec.ID, rec.QuizID, rec.UserID, rec.UserName, rec.Text, rec.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

func (l *AnswerLedger) Ranking(ctx context.Context, quizID string) ([]domain.AnswerRecord, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, quiz_id, user_id, user_name, message, submitted_at
		 FROM responses WHERE quiz_id = $1 ORDER BY submitted_at, id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var records []domain.AnswerRecord
	for rows.Next() {
		var rec domain.AnswerRecord
		if err := rows.Scan(&rec.ID, &rec.QuizID, &rec.UserID, &rec.UserName, &rec.Text, &rec.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
