package sqlite

import (
	"context"
)

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			day_unix INTEGER NOT NULL,
			kind TEXT NOT NULL DEFAULT 'text',
			audio_ref TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS responses (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			message TEXT NOT NULL,
			submitted_at_unix INTEGER NOT NULL,
			UNIQUE (quiz_id, user_id)
		);`,
		// rowid keeps insertion order for images stored within the same nanosecond.
		`CREATE TABLE IF NOT EXISTS reference_images (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_day ON quizzes(day_unix);`,
		`CREATE INDEX IF NOT EXISTS idx_responses_quiz_submitted_at ON responses(quiz_id, submitted_at_unix);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
