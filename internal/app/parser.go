package app

import (
	"fmt"
	"strings"
	"time"

	"line-quiz-bot/internal/domain"
)

const (
	markerQuestion = "問題"
	markerAnswer   = "答え"
	markerDeadline = "終了日時"
	markerAudio    = "音声"
)

var deadlineLayouts = []string{
	"2006/1/2 15:04",
	"2006/1/2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
	"2006-01-02T15:04",
	"2006/1/2",
	"2006-1-2",
}

// IsQuizCommand reports whether text uses the quiz creation syntax, i.e. one of its
// lines starts with the question marker.
func IsQuizCommand(text string) bool {
	for _, line := range splitLines(text) {
		if _, ok := cutMarker(line, markerQuestion); ok {
			return true
		}
	}
	return false
}

// ParseQuizCommand turns a creation text such as
//
//	問題：What color is the sky?
//	答え：blue
//	終了日時：2099/01/01 00:00
//
// into a quiz draft. The deadline is interpreted in loc. An optional 音声：<file> line
// makes it an audio quiz.
func ParseQuizCommand(text string, loc *time.Location) (domain.Quiz, error) {
	if loc == nil {
		loc = time.Local
	}

	fields := map[string]string{}
	for _, line := range splitLines(text) {
		for _, marker := range []string{markerQuestion, markerAnswer, markerDeadline, markerAudio} {
			if _, seen := fields[marker]; seen {
				continue
			}
			if value, ok := cutMarker(line, marker); ok {
				fields[marker] = strings.TrimSpace(value)
				break
			}
		}
	}

	question, hasQuestion := fields[markerQuestion]
	answer, hasAnswer := fields[markerAnswer]
	deadline, hasDeadline := fields[markerDeadline]
	if !hasQuestion || !hasAnswer || !hasDeadline {
		return domain.Quiz{}, domain.ErrMalformedQuiz
	}
	if question == "" || answer == "" || deadline == "" {
		return domain.Quiz{}, domain.ErrEmptyField
	}

	day, err := parseDeadline(deadline, loc)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		Question: question,
		Answer:   answer,
		Day:      day,
		Kind:     domain.QuizKindText,
	}
	if audio := fields[markerAudio]; audio != "" {
		quiz.Kind = domain.QuizKindAudio
		quiz.AudioRef = audio
	}
	return quiz, nil
}

func parseDeadline(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDeadline, raw)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// cutMarker accepts both the full-width and the ASCII colon after marker.
func cutMarker(line, marker string) (string, bool) {
	rest, ok := strings.CutPrefix(line, marker)
	if !ok {
		return "", false
	}
	if value, ok := strings.CutPrefix(rest, "："); ok {
		return value, true
	}
	if value, ok := strings.CutPrefix(rest, ":"); ok {
		return value, true
	}
	return "", false
}
