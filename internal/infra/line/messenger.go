package line

import (
	"context"
	"fmt"
	"io"

	"line-quiz-bot/internal/domain"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// maxReplyMessages is the number of messages the reply API accepts per call.
const maxReplyMessages = 5

// Messenger sends replies and reads profiles and attachments through the LINE Messaging API.
// It implements app.Messenger.
type Messenger struct {
	api        *messaging_api.MessagingApiAPI
	blob       *messaging_api.MessagingApiBlobAPI
	maxContent int64
}

// NewMessenger builds the API clients for the channel access token. maxContent caps the
// attachment size read into memory; zero means 10 MiB.
func NewMessenger(accessToken string, maxContent int64) (*Messenger, error) {
	api, err := messaging_api.NewMessagingApiAPI(accessToken)
	if err != nil {
		return nil, fmt.Errorf("messaging api client: %w", err)
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(accessToken)
	if err != nil {
		return nil, fmt.Errorf("messaging blob client: %w", err)
	}
	if maxContent <= 0 {
		maxContent = 10 << 20
	}
	return &Messenger{api: api, blob: blob, maxContent: maxContent}, nil
}

func (m *Messenger) Reply(_ context.Context, replyToken string, replies []domain.Reply) error {
	messages := toMessages(replies)
	if len(messages) == 0 {
		return nil
	}
	_, err := m.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

func (m *Messenger) DisplayName(_ context.Context, userID string) (string, error) {
	profile, err := m.api.GetProfile(userID)
	if err != nil {
		return "", fmt.Errorf("get profile %s: %w", userID, err)
	}
	return profile.DisplayName, nil
}

func (m *Messenger) Content(_ context.Context, messageID string) ([]byte, error) {
	resp, err := m.blob.GetMessageContent(messageID)
	if err != nil {
		return nil, fmt.Errorf("get message content %s: %w", messageID, err)
	}
	defer resp.Body.Close()
	return readLimited(resp.Body, m.maxContent)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("content exceeds %d bytes", limit)
	}
	return data, nil
}

// toMessages converts engine replies to API messages, dropping anything past the
// per-call limit.
func toMessages(replies []domain.Reply) []messaging_api.MessageInterface {
	messages := make([]messaging_api.MessageInterface, 0, len(replies))
	for _, r := range replies {
		if len(messages) == maxReplyMessages {
			break
		}
		switch r.Kind {
		case domain.ReplyText:
			if r.Text == "" {
				continue
			}
			messages = append(messages, messaging_api.TextMessage{Text: r.Text})
		case domain.ReplySticker:
			messages = append(messages, messaging_api.StickerMessage{PackageId: r.PackageID, StickerId: r.StickerID})
		case domain.ReplyAudio:
			messages = append(messages, messaging_api.AudioMessage{
				OriginalContentUrl: r.AudioURL,
				Duration:           r.Duration.Milliseconds(),
			})
		}
	}
	return messages
}
