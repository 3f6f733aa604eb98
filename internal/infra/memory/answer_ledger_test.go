package memory

import (
	"context"
	"testing"
	"time"

	"line-quiz-bot/internal/domain"
)

func TestAnswerLedgerHasAnswered(t *testing.T) {
	ledger := NewAnswerLedger()
	ctx := context.Background()

	answered, err := ledger.HasAnswered(ctx, "q1", "u1")
	if err != nil || answered {
		t.Fatalf("expected no answer yet, got %v %v", answered, err)
	}

	if err := ledger.RecordAnswer(ctx, domain.AnswerRecord{QuizID: "q1", UserID: "u1", SubmittedAt: now}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if answered, _ := ledger.HasAnswered(ctx, "q1", "u1"); !answered {
		t.Fatalf("expected answered after record")
	}
	if answered, _ := ledger.HasAnswered(ctx, "q2", "u1"); answered {
		t.Fatalf("ledger must be scoped per quiz")
	}
}

func TestAnswerLedgerRankingOrder(t *testing.T) {
	ledger := NewAnswerLedger()
	ctx := context.Background()

	_ = ledger.RecordAnswer(ctx, domain.AnswerRecord{QuizID: "q1", UserID: "late", SubmittedAt: now.Add(time.Minute)})
	_ = ledger.RecordAnswer(ctx, domain.AnswerRecord{QuizID: "q1", UserID: "early", SubmittedAt: now})
	_ = ledger.RecordAnswer(ctx, domain.AnswerRecord{QuizID: "q2", UserID: "other", SubmittedAt: now})

	ranking, err := ledger.Ranking(ctx, "q1")
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 2 || ranking[0].UserID != "early" || ranking[1].UserID != "late" {
		t.Fatalf("unexpected ranking %+v", ranking)
	}
	if ranking[0].ID == "" {
		t.Fatalf("expected record id to be assigned")
	}
}
