package app

import (
	"sync"

	"line-quiz-bot/internal/domain"
)

// RankingFeed fans ranking updates out to subscribers of a quiz.
type RankingFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Ranking]struct{}
}

func NewRankingFeed() *RankingFeed {
	return &RankingFeed{subscribers: make(map[string]map[chan domain.Ranking]struct{})}
}

// Subscribe registers a listener for quizID and immediately delivers initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *RankingFeed) Subscribe(quizID string, initial domain.Ranking) (<-chan domain.Ranking, func()) {
	ch := make(chan domain.Ranking, 8)
	ch <- initial

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.Ranking]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[quizID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// Publish delivers ranking to every subscriber of its quiz without blocking.
func (f *RankingFeed) Publish(ranking domain.Ranking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[ranking.QuizID] {
		select {
		case ch <- ranking:
		default:
			// slow subscriber: replace the stale update with the latest one
			select {
			case <-ch:
			default:
			}
			ch <- ranking
		}
	}
}

// Subscribers reports how many listeners quizID has.
func (f *RankingFeed) Subscribers(quizID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID])
}
