package domain

import "time"

// QuizKind tells how a quiz question is delivered.
type QuizKind string

const (
	QuizKindText  QuizKind = "text"
	QuizKindAudio QuizKind = "audio"
)

// Quiz is a single scheduled question. Day is its only deadline.
type Quiz struct {
	ID       string    `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Day      time.Time `json:"day"`
	Kind     QuizKind  `json:"type"`
	AudioRef string    `json:"audioUrl,omitempty"`
}

// ActiveAt reports whether the quiz deadline has not passed at now.
func (q Quiz) ActiveAt(now time.Time) bool {
	return !q.Day.Before(now)
}

// AnswerRecord is a first correct answer of a user for one quiz.
type AnswerRecord struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Text        string    `json:"message"`
	SubmittedAt time.Time `json:"timestamp"`
}

// ReferenceImage is a stored match target. Data holds the encoded image as base64.
type ReferenceImage struct {
	ID        string    `json:"id"`
	Data      string    `json:"buffer"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSession is the conversational state kept per chat user.
type UserSession struct {
	UserID              string    `json:"userId"`
	PendingImageCapture bool      `json:"pendingImageCapture"`
	Quiz                *Quiz     `json:"quiz,omitempty"` // captured by the last quiz request
	QuizCapturedAt      time.Time `json:"quizCapturedAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// RankingEntry is one position of a quiz ranking.
type RankingEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"name"`
	Text        string    `json:"message"`
	SubmittedAt time.Time `json:"timestamp"`
}

// Ranking orders correct answers of a quiz by submission time.
type Ranking struct {
	QuizID    string         `json:"quizId"`
	Entries   []RankingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewRanking builds a ranking from ledger records already sorted by submission time.
func NewRanking(quizID string, records []AnswerRecord, now time.Time) Ranking {
	entries := make([]RankingEntry, 0, len(records))
	for i, rec := range records {
		entries = append(entries, RankingEntry{
			Rank:        i + 1,
			UserID:      rec.UserID,
			UserName:    rec.UserName,
			Text:        rec.Text,
			SubmittedAt: rec.SubmittedAt,
		})
	}
	return Ranking{QuizID: quizID, Entries: entries, UpdatedAt: now}
}

// ImageMatch summarizes a gallery scan.
type ImageMatch struct {
	Similarity float64
	Compared   int
	Skipped    int
}

// EventKind classifies inbound chat events.
type EventKind string

const (
	EventText    EventKind = "text"
	EventImage   EventKind = "image"
	EventSticker EventKind = "sticker"
	EventAudio   EventKind = "audio"
	EventOther   EventKind = "other"
)

// Event is an inbound chat message reduced to what the engine needs.
type Event struct {
	Kind       EventKind
	ReplyToken string
	UserID     string
	MessageID  string
	Text       string
	PackageID  string
	StickerID  string
}

// ReplyKind classifies outbound chat messages.
type ReplyKind string

const (
	ReplyText    ReplyKind = "text"
	ReplySticker ReplyKind = "sticker"
	ReplyAudio   ReplyKind = "audio"
)

// Reply is one outbound chat message.
type Reply struct {
	Kind      ReplyKind
	Text      string
	PackageID string
	StickerID string
	AudioURL  string
	Duration  time.Duration
}

// TextReply builds a text message.
func TextReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

// StickerReply builds a sticker message.
func StickerReply(packageID, stickerID string) Reply {
	return Reply{Kind: ReplySticker, PackageID: packageID, StickerID: stickerID}
}

// AudioReply builds an audio message. url must be publicly reachable.
func AudioReply(url string, duration time.Duration) Reply {
	return Reply{Kind: ReplyAudio, AudioURL: url, Duration: duration}
}
