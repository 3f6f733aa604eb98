package imaging

import (
	"context"
	"encoding/base64"
	"fmt"

	"line-quiz-bot/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ImageSource lists the stored reference images.
type ImageSource interface {
	ListImages(ctx context.Context) ([]domain.ReferenceImage, error)
}

// Gallery finds the best match for a incoming image among stored references.
type Gallery struct {
	source ImageSource
}

func NewGallery(source ImageSource) *Gallery {
	return &Gallery{source: source}
}

// BestMatch compares incoming against every reference image, keeping the highest
// similarity. An empty gallery yields a zero match without decoding incoming. Entries that
// cannot be decoded or compared are skipped.
func (g *Gallery) BestMatch(ctx context.Context, incoming []byte) (domain.ImageMatch, error) {
	refs, err := g.source.ListImages(ctx)
	if err != nil {
		return domain.ImageMatch{}, fmt.Errorf("%w: list images: %w", domain.ErrStoreUnavailable, err)
	}
	if len(refs) == 0 {
		return domain.ImageMatch{}, nil
	}

	inputRaster, err := Decode(incoming)
	if err != nil {
		return domain.ImageMatch{}, err
	}

	var match domain.ImageMatch
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return match, err
		}
		similarity, err := compareReference(inputRaster, ref)
		if err != nil {
			log.WithError(err).WithField("image_id", ref.ID).Warn("skipping reference image")
			match.Skipped++
			continue
		}
		match.Compared++
		if similarity > match.Similarity {
			match.Similarity = similarity
		}
	}
	return match, nil
}

func compareReference(incoming Raster, ref domain.ReferenceImage) (float64, error) {
	if ref.Data == "" {
		return 0, fmt.Errorf("%w: empty reference", domain.ErrUndecodableImage)
	}
	raw, err := base64.StdEncoding.DecodeString(ref.Data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUndecodableImage, err)
	}
	stored, err := Decode(raw)
	if err != nil {
		return 0, err
	}
	return Similarity(incoming, stored)
}
