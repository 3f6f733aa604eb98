package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
)

const quizColumns = `id, question, answer, day_unix, kind, audio_ref`

func (s *Store) NextActiveQuiz(ctx context.Context, now time.Time) (domain.Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE day_unix >= ? ORDER BY day_unix, id LIMIT 1`, toUnix(now))
	quiz, err := scanQuiz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("select active quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) UpcomingQuizzes(ctx context.Context, now time.Time) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE day_unix >= ? ORDER BY day_unix, id`, toUnix(now))
}

func (s *Store) ExpiredQuizzes(ctx context.Context, now time.Time) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE day_unix < ? ORDER BY day_unix, id`, toUnix(now))
}

func (s *Store) InsertQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.ID = uuid.NewString()
	if quiz.Kind == "" {
		quiz.Kind = domain.QuizKindText
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (`+quizColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		quiz.ID, quiz.Question, quiz.Answer, toUnix(quiz.Day), string(quiz.Kind), quiz.AudioRef)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", quizID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) queryQuizzes(ctx context.Context, query string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row scanner) (domain.Quiz, error) {
	var (
		quiz domain.Quiz
		day  int64
		kind string
	)
	if err := row.Scan(&quiz.ID, &quiz.Question, &quiz.Answer, &day, &kind, &quiz.AudioRef); err != nil {
		return domain.Quiz{}, err
	}
	quiz.Day = fromUnix(day)
	quiz.Kind = domain.QuizKind(kind)
	return quiz, nil
}
