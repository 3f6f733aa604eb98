package sqlite

import (
	"context"
	"fmt"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
)

func (s *Store) AddImage(ctx context.Context, img domain.ReferenceImage) (domain.ReferenceImage, error) {
	img.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_images (id, data, created_at_unix) VALUES (?, ?, ?)`,
		img.ID, img.Data, toUnix(img.CreatedAt))
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("insert reference image: %w", err)
	}
	return img, nil
}

func (s *Store) ListImages(ctx context.Context) ([]domain.ReferenceImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_at_unix FROM reference_images ORDER BY created_at_unix, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query reference images: %w", err)
	}
	defer rows.Close()

	var images []domain.ReferenceImage
	for rows.Next() {
		var (
			img     domain.ReferenceImage
			created int64
		)
		if err := rows.Scan(&img.ID, &img.Data, &created); err != nil {
			return nil, fmt.Errorf("scan reference image: %w", err)
		}
		img.CreatedAt = fromUnix(created)
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *Store) PruneImages(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reference_images WHERE rowid NOT IN (
			SELECT rowid FROM reference_images ORDER BY created_at_unix DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune reference images: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
