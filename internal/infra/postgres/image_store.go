package postgres

import (
	"context"
	"fmt"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ImageStore keeps the reference gallery in the reference_images table.
type ImageStore struct {
	pool *pgxpool.Pool
}

func NewImageStore(pool *pgxpool.Pool) *ImageStore {
	return &ImageStore{pool: pool}
}

func (s *ImageStore) AddImage(ctx context.Context, img domain.ReferenceImage) (domain.ReferenceImage, error) {
	img.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reference_images (id, data, created_at) VALUES ($1, $2, $3)`,
		img.ID, img.Data, img.CreatedAt)
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("insert reference image: %w", err)
	}
	return img, nil
}

func (s *ImageStore) ListImages(ctx context.Context) ([]domain.ReferenceImage, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, data, created_at FROM reference_images ORDER BY created_at, seq`)
	if err != nil {
		return nil, fmt.Errorf("query reference images: %w", err)
	}
	defer rows.Close()

	var images []domain.ReferenceImage
	for rows.Next() {
		var img domain.ReferenceImage
		if err := rows.Scan(&img.ID, &img.Data, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reference image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *ImageStore) PruneImages(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM reference_images WHERE id NOT IN (
			SELECT id FROM reference_images ORDER BY created_at DESC, seq DESC LIMIT $1
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune reference images: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
