package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const quizColumns = `id, question, answer, day, kind, audio_ref`

// QuizRepository stores quizzes in the quizzes table.
type QuizRepository struct {
	pool *pgxpool.Pool
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func (r *QuizRepository) NextActiveQuiz(ctx context.Context, now time.Time) (domain.Quiz, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE day >= $1 ORDER BY day, id LIMIT 1`, now)
	quiz, err := scanQuiz(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("select active quiz: %w", err)
	}
	return quiz, nil
}

func (r *QuizRepository) UpcomingQuizzes(ctx context.Context, now time.Time) ([]domain.Quiz, error) {
	return r.query(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE day >= $1 ORDER BY day, id`, now)
}

func (r *QuizRepository) ExpiredQuizzes(ctx context.Context, now time.Time) ([]domain.Quiz, error) {
	return r.query(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE day < $1 ORDER BY day, id`, now)
}

func (r *QuizRepository) InsertQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.ID = uuid.NewString()
	if quiz.Kind == "" {
		quiz.Kind = domain.QuizKindText
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quizzes (`+quizColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		quiz.ID, quiz.Question, quiz.Answer, quiz.Day, string(quiz.Kind), quiz.AudioRef)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return quiz, nil
}

func (r *QuizRepository) DeleteQuiz(ctx context.Context, quizID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", quizID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) query(ctx context.Context, sql string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
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

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		quiz domain.Quiz
		kind string
	)
	if err := row.Scan(&quiz.ID, &quiz.Question, &quiz.Answer, &quiz.Day, &kind, &quiz.AudioRef); err != nil {
		return domain.Quiz{}, err
	}
	quiz.Kind = domain.QuizKind(kind)
	return quiz, nil
}
