package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"line-quiz-bot/internal/domain"
	"line-quiz-bot/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	backing := &countingStore{QuizRepository: memory.NewQuizRepository(sampleQuiz())}
	repo := NewQuizRepository(newClient(mr), backing, time.Minute)

	quiz, err := repo.NextActiveQuiz(context.Background(), now)
	if err != nil {
		t.Fatalf("next active quiz: %v", err)
	}
	if quiz.ID != "quiz-1" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if backing.calls != 1 {
		t.Fatalf("expected backing store called once, got %d", backing.calls)
	}
	if !mr.Exists(activeQuizKey) {
		t.Fatalf("expected active quiz to be cached")
	}

	// Second call should hit cache, backing store not incremented.
	cached, _ := repo.NextActiveQuiz(context.Background(), now)
	if backing.calls != 1 {
		t.Fatalf("expected cache hit, backing calls=%d", backing.calls)
	}
	if cached.Answer != "blue" || !cached.Day.Equal(quiz.Day) {
		t.Fatalf("cached quiz differs: %+v", cached)
	}
}

func TestQuizRepositoryTTLCappedAtDeadline(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	soon := domain.Quiz{ID: "soon", Answer: "a", Day: now.Add(10 * time.Second)}
	repo := NewQuizRepository(newClient(mr), memory.NewQuizRepository(soon), time.Hour)

	if _, err := repo.NextActiveQuiz(context.Background(), now); err != nil {
		t.Fatalf("next active quiz: %v", err)
	}
	if ttl := mr.TTL(activeQuizKey); ttl > 10*time.Second {
		t.Fatalf("expected ttl capped at the deadline, got %v", ttl)
	}
}

func TestQuizRepositoryIgnoresExpiredCacheEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	backing := &countingStore{QuizRepository: memory.NewQuizRepository(sampleQuiz())}
	repo := NewQuizRepository(newClient(mr), backing, 0)
	_ = mr.Set(activeQuizKey, `{"id":"stale","answer":"x","day":"2000-01-01T00:00:00Z"}`)

	quiz, err := repo.NextActiveQuiz(context.Background(), now)
	if err != nil {
		t.Fatalf("next active quiz: %v", err)
	}
	if quiz.ID != "quiz-1" || backing.calls != 1 {
		t.Fatalf("expected stale entry to be bypassed, got %+v after %d calls", quiz, backing.calls)
	}
}

func TestQuizRepositoryInvalidatesOnWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	backing := &countingStore{QuizRepository: memory.NewQuizRepository(sampleQuiz())}
	repo := NewQuizRepository(newClient(mr), backing, time.Minute)
	ctx := context.Background()

	_, _ = repo.NextActiveQuiz(ctx, now)
	sooner, err := repo.InsertQuiz(ctx, domain.Quiz{Question: "sooner", Answer: "b", Day: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if mr.Exists(activeQuizKey) {
		t.Fatalf("expected cache invalidated after insert")
	}

	quiz, _ := repo.NextActiveQuiz(ctx, now)
	if quiz.ID != sooner.ID {
		t.Fatalf("expected newly inserted quiz to become active, got %+v", quiz)
	}

	if err := repo.DeleteQuiz(ctx, sooner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	quiz, _ = repo.NextActiveQuiz(ctx, now)
	if quiz.ID != "quiz-1" {
		t.Fatalf("expected fallback to remaining quiz, got %+v", quiz)
	}
}

func TestQuizRepositoryDoesNotCacheMisses(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewQuizRepository(newClient(mr), memory.NewQuizRepository(), time.Minute)
	if _, err := repo.NextActiveQuiz(context.Background(), now); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists(activeQuizKey) {
		t.Fatalf("misses must not be cached")
	}
}

type countingStore struct {
	*memory.QuizRepository
	calls int
}

func (s *countingStore) NextActiveQuiz(ctx context.Context, at time.Time) (domain.Quiz, error) {
	s.calls++
	return s.QuizRepository.NextActiveQuiz(ctx, at)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:       "quiz-1",
		Question: "What color is the sky?",
		Answer:   "blue",
		Day:      now.Add(24 * time.Hour),
		Kind:     domain.QuizKindText,
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
