package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nexabloom/visabot/internal/dialog"
	"github.com/nexabloom/visabot/internal/session"
	"github.com/nexabloom/visabot/internal/whatsapp"
	"github.com/nexabloom/visabot/internal/widget"
)

const handleTimeout = 60 * time.Second

// Handler bridges the webhook boundary and the dialog engine: it looks up
// the conversation's session under its lock and feeds the event through the
// state machine.
type Handler struct {
	store  session.Store
	engine *dialog.Engine
	log    *zap.Logger
}

func NewHandler(store session.Store, engine *dialog.Engine, log *zap.Logger) *Handler {
	return &Handler{store: store, engine: engine, log: log}
}

// HandleEvent processes one inbound event. Errors never propagate to the
// webhook; a broken conversation must not take the handler down for others.
func (h *Handler) HandleEvent(from string, ev dialog.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	err := h.store.Update(from, func(s *session.Session) error {
		h.engine.Handle(ctx, from, s, ev)
		return nil
	})
	if err != nil {
		h.log.Error("session update failed", zap.String("from", from), zap.Error(err))
	}
}

// Sender adapts the WhatsApp client to the renderer's option-based
// interface.
type Sender struct {
	wa *whatsapp.Client
}

func NewSender(wa *whatsapp.Client) *Sender {
	return &Sender{wa: wa}
}

func (s *Sender) SendText(to, body string) error {
	return s.wa.SendText(to, body)
}

func (s *Sender) SendButtons(to, body string, opts []widget.Option) error {
	return s.wa.SendInteractiveButtons(to, body, toWAButtons(opts))
}

func (s *Sender) SendList(to, header, body, buttonLabel string, opts []widget.Option) error {
	return s.wa.SendList(to, header, body, buttonLabel, toWASections(opts))
}

func toWAButtons(opts []widget.Option) []whatsapp.Button {
	wa := make([]whatsapp.Button, len(opts))
	for i, o := range opts {
		wa[i] = whatsapp.Button{
			Type:  "reply",
			Reply: whatsapp.ButtonReply{ID: o.ID, Title: o.Title},
		}
	}
	return wa
}

func toWASections(opts []widget.Option) []whatsapp.Section {
	rows := make([]whatsapp.SectionRow, len(opts))
	for i, o := range opts {
		rows[i] = whatsapp.SectionRow{ID: o.ID, Title: o.Title, Description: o.Description}
	}
	return []whatsapp.Section{{Title: "Options", Rows: rows}}
}
