package whatsapp

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexabloom/visabot/internal/dialog"
)

// EventHandler is called for each decoded inbound message with the sender id
// and the event it carried.
type EventHandler func(from string, ev dialog.Event)

type WebhookHandler struct {
	verifyToken string
	onEvent     EventHandler
	log         *zap.Logger
}

func NewWebhookHandler(verifyToken string, onEvent EventHandler, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		onEvent:     onEvent,
		log:         log,
	}
}

// HandleVerify handles the GET webhook verification from Meta.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/get-started#webhook-verification
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleIncoming processes incoming webhook POST notifications, decoding
// each message into the inbound event union before dispatch.
func (h *WebhookHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.log.Warn("webhook: failed to decode payload", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	// Meta requires 200 OK quickly; processing happens here synchronously for simplicity.
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if ev, ok := decodeEvent(msg); ok {
					h.onEvent(msg.From, ev)
				}
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}

func decodeEvent(msg Message) (dialog.Event, bool) {
	switch msg.Type {
	case "text":
		if msg.Text != nil {
			return dialog.FreeText{Text: msg.Text.Body}, true
		}
	case "interactive":
		if msg.Interactive == nil {
			break
		}
		switch msg.Interactive.Type {
		case "button_reply":
			if br := msg.Interactive.ButtonReply; br != nil {
				return dialog.ButtonReply{ID: br.ID, Title: br.Title}, true
			}
		case "list_reply":
			if lr := msg.Interactive.ListReply; lr != nil {
				return dialog.ListReply{ID: lr.ID, Title: lr.Title}, true
			}
		}
	}
	return nil, false
}
