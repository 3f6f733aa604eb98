package app_test

import (
	"errors"
	"testing"
	"time"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/domain"
)

func TestParseQuizCommand(t *testing.T) {
	quiz, err := app.ParseQuizCommand("問題：What color is the sky?\n答え：blue\n終了日時：2099/01/01 00:00", time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if quiz.Question != "What color is the sky?" || quiz.Answer != "blue" {
		t.Fatalf("unexpected fields %+v", quiz)
	}
	if want := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC); !quiz.Day.Equal(want) {
		t.Fatalf("expected day %v, got %v", want, quiz.Day)
	}
	if quiz.Kind != domain.QuizKindText || quiz.AudioRef != "" {
		t.Fatalf("expected text quiz, got %+v", quiz)
	}
}

func TestParseQuizCommandTrimsAndAcceptsVariants(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	text := "問題:  Which pokemon?  \r\n答え： ピカチュウ \r\n終了日時：2099-3-4 5:06\r\n音声：pika.mp3"

	quiz, err := app.ParseQuizCommand(text, tokyo)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if quiz.Question != "Which pokemon?" || quiz.Answer != "ピカチュウ" {
		t.Fatalf("expected trimmed fields, got %+v", quiz)
	}
	if want := time.Date(2099, 3, 4, 5, 6, 0, 0, tokyo); !quiz.Day.Equal(want) {
		t.Fatalf("expected %v, got %v", want, quiz.Day)
	}
	if quiz.Kind != domain.QuizKindAudio || quiz.AudioRef != "pika.mp3" {
		t.Fatalf("expected audio quiz, got %+v", quiz)
	}
}

func TestParseQuizCommandErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		want error
	}{
		{"missing answer", "問題：q\n終了日時：2099/01/01 00:00", domain.ErrMalformedQuiz},
		{"missing deadline", "問題：q\n答え：a", domain.ErrMalformedQuiz},
		{"missing question", "答え：a\n終了日時：2099/01/01 00:00", domain.ErrMalformedQuiz},
		{"not a date", "問題：q\n答え：a\n終了日時：not-a-date", domain.ErrInvalidDeadline},
		{"impossible date", "問題：q\n答え：a\n終了日時：2099/02/30 00:00", domain.ErrInvalidDeadline},
		{"blank answer", "問題：q\n答え：   \n終了日時：2099/01/01 00:00", domain.ErrEmptyField},
		{"blank question", "問題：\n答え：a\n終了日時：2099/01/01 00:00", domain.ErrEmptyField},
		{"blank deadline", "問題：q\n答え：a\n終了日時： ", domain.ErrEmptyField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := app.ParseQuizCommand(tc.text, time.UTC); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestIsQuizCommand(t *testing.T) {
	if !app.IsQuizCommand("問題：q") {
		t.Fatalf("expected creation syntax")
	}
	if !app.IsQuizCommand("hello\n問題：q") {
		t.Fatalf("expected creation syntax on a later line")
	}
	if app.IsQuizCommand("問題がある") || app.IsQuizCommand("blue") {
		t.Fatalf("plain text must not be treated as creation syntax")
	}
}

func TestLookupCommand(t *testing.T) {
	if cmd, ok := app.LookupCommand("クイズ教えて"); !ok || cmd != app.CommandRequestQuiz {
		t.Fatalf("expected request quiz, got %v %v", cmd, ok)
	}
	if _, ok := app.LookupCommand("クイズ教えて "); ok {
		t.Fatalf("keywords are exact matches")
	}
}
