package cli

import (
	"context"
	"fmt"
	"time"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/config"
	"line-quiz-bot/internal/infra/memory"
	"line-quiz-bot/internal/infra/postgres"
	redisstore "line-quiz-bot/internal/infra/redis"
	"line-quiz-bot/internal/infra/sqlite"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// backend is the set of stores chosen from config: postgres, then sqlite, then memory,
// with Redis in front for sessions and the active quiz when configured.
type backend struct {
	quizzes  app.QuizStore
	ledger   app.AnswerLedger
	images   app.ImageStore
	sessions app.SessionStore
	closers  []func()
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.quizzes = postgres.NewQuizRepository(pool)
		b.ledger = postgres.NewAnswerLedger(pool)
		b.images = postgres.NewImageStore(pool)
		log.Info("using postgres store")
	case cfg.SQLite.Path != "":
		store, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.quizzes, b.ledger, b.images = store, store, store
		log.WithField("path", cfg.SQLite.Path).Info("using sqlite store")
	default:
		b.quizzes = memory.NewQuizRepository()
		b.ledger = memory.NewAnswerLedger()
		b.images = memory.NewImageStore()
		log.Warn("no database configured, using in-memory store")
	}

	b.sessions = memory.NewSessionStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.sessions = redisstore.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
		b.quizzes = redisstore.NewQuizRepository(client, b.quizzes, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
		log.WithField("addr", cfg.Redis.Addr).Info("using redis for sessions and quiz cache")
	}
	return b, nil
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// engineConfig maps the file config onto the engine tunables.
func engineConfig(cfg config.Config) (app.EngineConfig, error) {
	ec := app.DefaultEngineConfig()
	loc, err := cfg.Location()
	if err != nil {
		return ec, fmt.Errorf("quiz timezone: %w", err)
	}
	ec.Location = loc
	if cfg.Images.MatchThreshold > 0 {
		ec.MatchThreshold = cfg.Images.MatchThreshold
	}
	ec.MaxImages = cfg.Images.MaxImages
	ec.CaptureGrace = config.TTLDuration(cfg.Quiz.CaptureGrace, ec.CaptureGrace)
	ec.AudioBaseURL = cfg.Quiz.AudioBaseURL
	ec.AudioDuration = config.TTLDuration(cfg.Quiz.AudioDuration, ec.AudioDuration)
	if cfg.Quiz.AudioPrompt != "" {
		ec.AudioPrompt = cfg.Quiz.AudioPrompt
	}
	ec.AudioSamples = cfg.Quiz.AudioSamples
	ec.Links = app.Links{
		HowToPlay: cfg.Links.HowToPlay,
		QuizList:  cfg.Links.QuizList,
		Ranking:   cfg.Links.Ranking,
	}
	if cfg.Sweep.Concurrency > 0 {
		ec.SweepConcurrency = cfg.Sweep.Concurrency
	}
	return ec, nil
}
