package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"line-quiz-bot/internal/domain"
)

type staticSource []domain.ReferenceImage

func (s staticSource) ListImages(context.Context) ([]domain.ReferenceImage, error) {
	return s, nil
}

type failingSource struct{}

func (failingSource) ListImages(context.Context) ([]domain.ReferenceImage, error) {
	return nil, errors.New("connection refused")
}

func TestBestMatchEmptyGallery(t *testing.T) {
	g := NewGallery(staticSource(nil))

	match, err := g.BestMatch(context.Background(), encodePNG(t, 4, 4, color.NRGBA{R: 10, A: 255}))
	if err != nil {
		t.Fatalf("best match: %v", err)
	}
	if match.Similarity != 0 || match.Compared != 0 {
		t.Fatalf("expected zero match, got %+v", match)
	}
}

func TestBestMatchExactImage(t *testing.T) {
	incoming := encodePNG(t, 4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	other := encodePNG(t, 4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	g := NewGallery(staticSource{
		{ID: "other", Data: base64.StdEncoding.EncodeToString(other)},
		{ID: "same", Data: base64.StdEncoding.EncodeToString(incoming)},
	})

	match, err := g.BestMatch(context.Background(), incoming)
	if err != nil {
		t.Fatalf("best match: %v", err)
	}
	if match.Similarity != 1.0 {
		t.Fatalf("expected 1.0, got %v", match.Similarity)
	}
	if match.Compared != 2 {
		t.Fatalf("expected 2 compared, got %d", match.Compared)
	}
}

func TestBestMatchSkipsBrokenEntries(t *testing.T) {
	incoming := encodePNG(t, 2, 2, color.NRGBA{G: 99, A: 255})
	g := NewGallery(staticSource{
		{ID: "garbage", Data: base64.StdEncoding.EncodeToString([]byte("not an image"))},
		{ID: "bad-base64", Data: "%%%"},
		{ID: "empty"},
		{ID: "wrong-size", Data: base64.StdEncoding.EncodeToString(encodePNG(t, 3, 3, color.NRGBA{G: 99, A: 255}))},
		{ID: "match", Data: base64.StdEncoding.EncodeToString(incoming)},
	})

	match, err := g.BestMatch(context.Background(), incoming)
	if err != nil {
		t.Fatalf("best match: %v", err)
	}
	if match.Similarity != 1.0 || match.Compared != 1 || match.Skipped != 4 {
		t.Fatalf("unexpected match summary %+v", match)
	}
}

func TestBestMatchRejectsUndecodableInput(t *testing.T) {
	ref := encodePNG(t, 2, 2, color.NRGBA{A: 255})
	g := NewGallery(staticSource{{ID: "ref", Data: base64.StdEncoding.EncodeToString(ref)}})

	_, err := g.BestMatch(context.Background(), []byte("nope"))
	if !errors.Is(err, domain.ErrUndecodableImage) {
		t.Fatalf("expected undecodable image, got %v", err)
	}
}

func TestBestMatchEmptyGalleryIgnoresUndecodableInput(t *testing.T) {
	g := NewGallery(staticSource(nil))

	match, err := g.BestMatch(context.Background(), []byte("nope"))
	if err != nil {
		t.Fatalf("best match: %v", err)
	}
	if match.Similarity != 0 || match.Compared != 0 || match.Skipped != 0 {
		t.Fatalf("expected zero match, got %+v", match)
	}
}

func TestBestMatchStoreFailure(t *testing.T) {
	g := NewGallery(failingSource{})

	_, err := g.BestMatch(context.Background(), encodePNG(t, 1, 1, color.NRGBA{A: 255}))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestDecodePacksOpaqueAsRGB(t *testing.T) {
	r, err := Decode(encodePNG(t, 3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Channels != 3 || r.Width != 3 || r.Height != 2 || len(r.Pix) != 18 {
		t.Fatalf("unexpected raster %dx%dx%d len=%d", r.Width, r.Height, r.Channels, len(r.Pix))
	}
	if r.Pix[0] != 1 || r.Pix[1] != 2 || r.Pix[2] != 3 {
		t.Fatalf("unexpected first pixel %v", r.Pix[:3])
	}

	translucent, err := Decode(encodePNG(t, 1, 1, color.NRGBA{R: 1, A: 128}))
	if err != nil {
		t.Fatalf("decode translucent: %v", err)
	}
	if translucent.Channels != 4 {
		t.Fatalf("expected RGBA for translucent image, got %d channels", translucent.Channels)
	}
}

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
