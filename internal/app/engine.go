package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"line-quiz-bot/internal/domain"

	log "github.com/sirupsen/logrus"
)

// EngineConfig holds the tunables of the quiz engine.
type EngineConfig struct {
	// MatchThreshold is the similarity an image must exceed to count as a match.
	MatchThreshold float64
	// MaxImages caps the reference gallery; zero keeps every image.
	MaxImages     int
	// CaptureGrace is how long after a quiz request its expired quiz is still graded.
	CaptureGrace  time.Duration
	Location      *time.Location
	AudioBaseURL  string
	AudioDuration time.Duration
	AudioPrompt   string
	AudioSamples  []string
	Links         Links
	// SweepConcurrency bounds parallel deletes during an expiry sweep.
	SweepConcurrency int
}

// DefaultEngineConfig mirrors the production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MatchThreshold:   0.9,
		CaptureGrace:     30 * time.Minute,
		Location:         time.Local,
		AudioDuration:    3 * time.Second,
		AudioPrompt:      "なんのポケモンか当ててね☆",
		SweepConcurrency: 4,
	}
}

// Deps groups the collaborators of the engine.
type Deps struct {
	Quizzes   QuizStore
	Ledger    AnswerLedger
	Images    ImageStore
	Sessions  SessionStore
	Matcher   ImageMatcher
	Messenger Messenger
	Feed      *RankingFeed
}

// Engine runs the quiz lifecycle: command dispatch, quiz creation, answer grading,
// image capture and matching, and the expiry sweep.
type Engine struct {
	quizzes   QuizStore
	ledger    AnswerLedger
	images    ImageStore
	sessions  SessionStore
	matcher   ImageMatcher
	messenger Messenger
	feed      *RankingFeed
	cfg       EngineConfig
	templates map[Command]string
	locks     *keyedMutex
	now       func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewEngine(deps Deps, cfg EngineConfig) *Engine {
	return NewEngineWithClock(deps, cfg, time.Now)
}

// NewEngineWithClock is used by tests that need deterministic time.
func NewEngineWithClock(deps Deps, cfg EngineConfig, now func() time.Time) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SweepConcurrency <= 0 {
		cfg.SweepConcurrency = 1
	}
	feed := deps.Feed
	if feed == nil {
		feed = NewRankingFeed()
	}
	return &Engine{
		quizzes:   deps.Quizzes,
		ledger:    deps.Ledger,
		images:    deps.Images,
		sessions:  deps.Sessions,
		matcher:   deps.Matcher,
		messenger: deps.Messenger,
		feed:      feed,
		cfg:       cfg,
		templates: commandTemplates(cfg.Links),
		locks:     newKeyedMutex(),
		now:       now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleEvent computes the replies for ev and sends them through the messenger.
func (e *Engine) HandleEvent(ctx context.Context, ev domain.Event) error {
	replies, err := e.Respond(ctx, ev)
	if err != nil {
		return err
	}
	if len(replies) == 0 || ev.ReplyToken == "" {
		return nil
	}
	if err := e.messenger.Reply(ctx, ev.ReplyToken, replies); err != nil {
		return fmt.Errorf("reply to %s: %w", ev.UserID, err)
	}
	return nil
}

// Respond computes the replies for ev without sending them. Failures that the user can
// act on, or that must stay internal, are turned into friendly replies; the returned
// error is reserved for cancellation.
func (e *Engine) Respond(ctx context.Context, ev domain.Event) ([]domain.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch ev.Kind {
	case domain.EventText:
		return e.respondText(ctx, ev)
	case domain.EventImage:
		return e.respondImage(ctx, ev)
	case domain.EventSticker:
		return []domain.Reply{domain.StickerReply(ev.PackageID, ev.StickerID)}, nil
	default:
		return nil, nil
	}
}

func (e *Engine) respondText(ctx context.Context, ev domain.Event) ([]domain.Reply, error) {
	if ev.Text == "" {
		return nil, nil
	}
	if cmd, ok := LookupCommand(ev.Text); ok {
		return e.runCommand(ctx, cmd, ev)
	}
	if IsQuizCommand(ev.Text) {
		return e.createQuiz(ctx, ev)
	}
	return e.gradeAnswer(ctx, ev)
}

func (e *Engine) runCommand(ctx context.Context, cmd Command, ev domain.Event) ([]domain.Reply, error) {
	switch cmd {
	case CommandRequestQuiz:
		return e.requestQuiz(ctx, ev)
	case CommandSetImage:
		return e.armImageCapture(ctx, ev)
	case CommandPlayAudio:
		return e.playAudio(), nil
	case CommandNextContest:
		return e.nextContest(ctx)
	}
	return []domain.Reply{domain.TextReply(e.templates[cmd])}, nil
}

// requestQuiz selects the active quiz and captures it in the user's session so that the
// following answer is graded against it even if it expires meanwhile.
func (e *Engine) requestQuiz(ctx context.Context, ev domain.Event) ([]domain.Reply, error) {
	quiz, err := e.quizzes.NextActiveQuiz(ctx, e.now())
	if errors.Is(err, domain.ErrQuizNotFound) {
		return []domain.Reply{domain.TextReply(msgNoQuiz)}, nil
	}
	if err != nil {
		return e.internalFailure(ev, "select active quiz", err), nil
	}

	if err := e.updateSession(ctx, ev.UserID, func(s *domain.UserSession) {
		captured := quiz
		s.Quiz = &captured
		s.QuizCapturedAt = e.now()
	}); err != nil {
		// grading falls back to the active quiz, so the question is still worth sending
		log.WithError(err).WithField("user_id", ev.UserID).Warn("failed to capture quiz in session")
	}

	if quiz.Kind == domain.QuizKindAudio {
		return []domain.Reply{
			domain.AudioReply(e.audioURL(quiz.AudioRef), e.cfg.AudioDuration),
			domain.TextReply(e.cfg.AudioPrompt),
		}, nil
	}
	return []domain.Reply{domain.TextReply(quiz.Question)}, nil
}

func (e *Engine) armImageCapture(ctx context.Context, ev domain.Event) ([]domain.Reply, error) {
	if err := e.updateSession(ctx, ev.UserID, func(s *domain.UserSession) {
		s.PendingImageCapture = true
	}); err != nil {
		return e.internalFailure(ev, "arm image capture", err), nil
	}
	return []domain.Reply{domain.TextReply(msgSendImage)}, nil
}

func (e *Engine) playAudio() []domain.Reply {
	if len(e.cfg.AudioSamples) == 0 {
		return []domain.Reply{domain.TextReply(msgNoAudio)}
	}
	e.rndMu.Lock()
	sample := e.cfg.AudioSamples[e.rnd.Intn(len(e.cfg.AudioSamples))]
	e.rndMu.Unlock()
	return []domain.Reply{
		domain.AudioReply(e.audioURL(sample), e.cfg.AudioDuration),
		domain.TextReply(e.cfg.AudioPrompt),
	}
}

func (e *Engine) nextContest(ctx context.Context) ([]domain.Reply, error) {
	quiz, err := e.quizzes.NextActiveQuiz(ctx, e.now())
	if errors.Is(err, domain.ErrQuizNotFound) {
		return []domain.Reply{domain.TextReply(msgNoNextContest)}, nil
	}
	if err != nil {
		return e.internalFailure(domain.Event{}, "select next contest", err), nil
	}
	deadline := quiz.Day.In(e.cfg.Location).Format("2006/01/02 15:04")
	return []domain.Reply{domain.TextReply(fmt.Sprintf(msgNextContest, quiz.Question, deadline))}, nil
}

func (e *Engine) createQuiz(ctx context.Context, ev domain.Event) ([]domain.Reply, error) {
	draft, err := ParseQuizCommand(ev.Text, e.cfg.Location)
	switch {
	case errors.Is(err, domain.ErrMalformedQuiz):
		return []domain.Reply{domain.TextReply(msgMalformedQuiz)}, nil
	case errors.Is(err, domain.ErrEmptyField):
		return []domain.Reply{domain.TextReply(msgEmptyField)}, nil
	case errors.Is(err, domain.ErrInvalidDeadline):
		return []domain.Reply{domain.TextReply(msgInvalidDeadline)}, nil
	case err != nil:
		return e.internalFailure(ev, "parse quiz", err), nil
	}

	stored, err := e.quizzes.InsertQuiz(ctx, draft)
	if err != nil {
		log.WithError(err).WithField("user_id", ev.UserID).Error("failed to store quiz")
		return []domain.Reply{domain.TextReply(msgQuizStoreFailed)}, nil
	}
	log.WithFields(log.Fields{"quiz_id": stored.ID, "user_id": ev.UserID, "day": stored.Day}).Info("quiz created")

	deadline := stored.Day.In(e.cfg.Location).Format("2006/01/02 15:04")
	return []domain.Reply{domain.TextReply(fmt.Sprintf(msgQuizRegistered, stored.Question, stored.Answer, deadline))}, nil
}

// updateSession applies fn to the user's session under the per-user lock.
func (e *Engine) updateSession(ctx context.Context, userID string, fn func(*domain.UserSession)) error {
	unlock := e.locks.Lock(sessionLockKey(userID))
	defer unlock()

	session, err := e.sessions.LoadSession(ctx, userID)
	if err != nil {
		return err
	}
	fn(&session)
	session.UserID = userID
	session.UpdatedAt = e.now()
	return e.sessions.SaveSession(ctx, session)
}

func (e *Engine) audioURL(ref string) string {
	if e.cfg.AudioBaseURL == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(e.cfg.AudioBaseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

// internalFailure logs err with full detail and returns the generic reply.
func (e *Engine) internalFailure(ev domain.Event, op string, err error) []domain.Reply {
	log.WithError(err).WithFields(log.Fields{"user_id": ev.UserID, "op": op}).Error("quiz engine failure")
	return []domain.Reply{domain.TextReply(msgGenericFailure)}
}
