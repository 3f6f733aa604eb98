package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const activeQuizKey = "quiz:active"

// QuizRepository caches the active quiz in Redis in front of a durable app.QuizStore.
// The cached entry never outlives the quiz deadline and is dropped on every write.
type QuizRepository struct {
	app.QuizStore

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, backing app.QuizStore, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		QuizStore: backing,
		client:    client,
		ttl:       ttl,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) NextActiveQuiz(ctx context.Context, now time.Time) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, now); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(activeQuizKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, now); ok {
			return quiz, nil
		}

		quiz, err := r.QuizStore.NextActiveQuiz(ctx, now)
		if err != nil {
			return domain.Quiz{}, err
		}

		ttl := r.ttlWithJitter()
		if untilDeadline := quiz.Day.Sub(now); ttl <= 0 || untilDeadline < ttl {
			ttl = untilDeadline
		}
		if ttl > 0 {
			if raw, err := json.Marshal(quiz); err == nil {
				if err := r.client.Set(ctx, activeQuizKey, raw, ttl).Err(); err != nil {
					log.WithError(err).Warn("failed to cache active quiz")
				}
			}
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) InsertQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	stored, err := r.QuizStore.InsertQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	r.invalidate(ctx)
	return stored, nil
}

func (r *QuizRepository) DeleteQuiz(ctx context.Context, quizID string) error {
	err := r.QuizStore.DeleteQuiz(ctx, quizID)
	r.invalidate(ctx)
	return err
}

// cached returns the cached quiz while it is still active at now.
func (r *QuizRepository) cached(ctx context.Context, now time.Time) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, activeQuizKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("active quiz cache unavailable")
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil || !quiz.ActiveAt(now) {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, activeQuizKey).Err(); err != nil {
		log.WithError(err).Warn("failed to invalidate active quiz cache")
	}
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
