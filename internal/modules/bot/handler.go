package bot

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Handler exposes the Telegram webhook over HTTP.
type Handler struct {
	dispatcher    *Dispatcher
	webhookSecret string
	log           *logrus.Logger
}

// NewHandler creates the webhook handler. webhookSecret may be empty, in
// which case the secret-token header is not checked.
func NewHandler(dispatcher *Dispatcher, webhookSecret string, log *logrus.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, webhookSecret: webhookSecret, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/", h.health)                         // GET  /
	r.Post("/telegram/webhook", h.handleWebhook) // POST /telegram/webhook
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ibérico Inventory Bot OK"))
}

// handleWebhook decodes one Telegram update and hands it to the per-chat
// dispatcher. It always answers 200 so Telegram does not re-deliver; a bad
// payload is logged and dropped.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret != "" {
		got := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.log.WithError(err).Warn("bad webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || msg.Chat == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	in := &Incoming{
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
		File:   pickFile(msg),
	}
	// A photo caption is not a text report; the file wins.
	if in.File == nil && in.Text == "" {
		in.Text = msg.Caption
	}

	h.dispatcher.Enqueue(in)
	w.WriteHeader(http.StatusOK)
}
