package memory

import (
	"context"
	"sync"

	"line-quiz-bot/internal/domain"

	"github.com/google/uuid"
)

// ImageStore keeps reference images in insertion order.
type ImageStore struct {
	mu     sync.RWMutex
	images []domain.ReferenceImage
}

func NewImageStore() *ImageStore {
	return &ImageStore{}
}

func (s *ImageStore) AddImage(_ context.Context, img domain.ReferenceImage) (domain.ReferenceImage, error) {
	img.ID = uuid.NewString()
	s.mu.Lock()
	s.images = append(s.images, img)
	s.mu.Unlock()
	return img, nil
}

func (s *ImageStore) ListImages(context.Context) ([]domain.ReferenceImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ReferenceImage(nil), s.images...), nil
}

func (s *ImageStore) PruneImages(_ context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	excess := len(s.images) - keep
	if excess <= 0 {
		return 0, nil
	}
	s.images = append([]domain.ReferenceImage(nil), s.images[excess:]...)
	return excess, nil
}
