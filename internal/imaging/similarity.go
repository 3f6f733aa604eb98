package imaging

import (
	"fmt"

	"line-quiz-bot/internal/domain"
)

// DifferingBytes counts positions where a and b hold different bytes.
func DifferingBytes(a, b Raster) (int, error) {
	if a.Width != b.Width || a.Height != b.Height || a.Channels != b.Channels {
		return 0, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", domain.ErrDimensionMismatch,
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}
	total := a.Len()
	if len(a.Pix) < total || len(b.Pix) < total {
		return 0, fmt.Errorf("%w: short pixel buffer", domain.ErrDimensionMismatch)
	}

	diff := 0
	for i := 0; i < total; i++ {
		if a.Pix[i] != b.Pix[i] {
			diff++
		}
	}
	return diff, nil
}

// Similarity is the fraction of identical bytes between two equally shaped buffers.
// This is an exact pixel counter, not a perceptual metric.
func Similarity(a, b Raster) (float64, error) {
	diff, err := DifferingBytes(a, b)
	if err != nil {
		return 0, err
	}
	total := a.Len()
	if total == 0 {
		return 1, nil
	}
	return 1 - float64(diff)/float64(total), nil
}
