package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramTransport implements Transport over the Telegram Bot API.
type telegramTransport struct {
	api  *tgbotapi.BotAPI
	http *http.Client
}

// NewTelegramTransport creates the Telegram adapter. It validates the token
// against the API on construction.
func NewTelegramTransport(token string) (Transport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &telegramTransport{
		api:  api,
		http: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (t *telegramTransport) SendMessage(chatID int64, html string) error {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.api.Send(msg)
	return err
}

func (t *telegramTransport) FetchFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := t.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// pickFile selects the media attached to a Telegram message: the
// highest-resolution photo variant, or the document as-is.
func pickFile(msg *tgbotapi.Message) *FileMeta {
	if len(msg.Photo) > 0 {
		p := msg.Photo[len(msg.Photo)-1]
		return &FileMeta{
			FileID:       p.FileID,
			FileUniqueID: p.FileUniqueID,
			FileName:     fmt.Sprintf("photo_%d.jpg", time.Now().Unix()),
			MimeType:     "image/jpeg",
			FileSize:     int64(p.FileSize),
		}
	}
	if msg.Document != nil {
		d := msg.Document
		mime := d.MimeType
		if mime == "" {
			mime = "application/octet-stream"
		}
		name := d.FileName
		if name == "" {
			name = fmt.Sprintf("document_%d", time.Now().Unix())
		}
		return &FileMeta{
			FileID:       d.FileID,
			FileUniqueID: d.FileUniqueID,
			FileName:     name,
			MimeType:     mime,
			FileSize:     int64(d.FileSize),
		}
	}
	return nil
}
