package widget

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// WhatsApp interactive message limits.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/messages/interactive-list-messages
const (
	MaxHeader      = 60
	MaxBody        = 1024
	MaxButtonLabel = 20
	MaxRowTitle    = 24
	MaxRowDesc     = 72
	MaxRows        = 10
	MaxButtons     = 3
)

const noOptionsText = "No options available right now. Please try again later."

// Sender delivers rendered payloads to one recipient. Implemented by the
// WhatsApp client adapter; faked in tests.
type Sender interface {
	SendText(to, body string) error
	SendButtons(to, body string, opts []Option) error
	SendList(to, header, body, buttonLabel string, opts []Option) error
}

// Renderer turns abstract option sets into channel widgets, degrading to a
// numbered plain-text enumeration when the channel rejects the widget.
type Renderer struct {
	sender Sender
	log    *zap.Logger
}

func NewRenderer(sender Sender, log *zap.Logger) *Renderer {
	return &Renderer{sender: sender, log: log}
}

// OptionList renders opts as a native list widget. Limits are enforced by
// truncation, never by rejection. On delivery failure the same options go
// out as numbered text and the fallback entry is recorded in numbered mode.
// Reports whether the native widget was delivered.
func (r *Renderer) OptionList(to, tag, header, body, buttonLabel string, opts []Option, tr Tracker) bool {
	if len(opts) == 0 {
		if err := r.sender.SendText(to, noOptionsText); err != nil {
			r.log.Warn("empty-list notice failed", zap.String("to", to), zap.Error(err))
		}
		return false
	}

	opts = clampOptions(opts, MaxRows, MaxRowTitle)
	header = truncate(header, MaxHeader)
	body = truncate(body, MaxBody)
	if buttonLabel == "" {
		buttonLabel = "Select"
	}
	buttonLabel = truncate(buttonLabel, MaxButtonLabel)

	if err := r.sender.SendList(to, header, body, buttonLabel, opts); err != nil {
		r.log.Warn("list widget rejected, sending numbered text",
			zap.String("to", to), zap.String("tag", tag), zap.Error(err))
		r.sendNumbered(to, header, body, opts)
		tr.RecordFallback(tag, Entry{Mode: ModeNumbered, Options: opts})
		return false
	}

	tr.RecordFallback(tag, Entry{Mode: ModeWidget, Options: opts})
	return true
}

// ButtonSet renders opts as a reply-button widget (at most three buttons),
// with the same degradation contract as OptionList.
func (r *Renderer) ButtonSet(to, tag, body string, opts []Option, tr Tracker) bool {
	if len(opts) == 0 {
		if err := r.sender.SendText(to, noOptionsText); err != nil {
			r.log.Warn("empty-list notice failed", zap.String("to", to), zap.Error(err))
		}
		return false
	}

	opts = clampOptions(opts, MaxButtons, MaxButtonLabel)
	body = truncate(body, MaxBody)

	if err := r.sender.SendButtons(to, body, opts); err != nil {
		r.log.Warn("button widget rejected, sending numbered text",
			zap.String("to", to), zap.String("tag", tag), zap.Error(err))
		r.sendNumbered(to, "", body, opts)
		tr.RecordFallback(tag, Entry{Mode: ModeNumbered, Options: opts})
		return false
	}

	tr.RecordFallback(tag, Entry{Mode: ModeWidget, Options: opts})
	return true
}

func (r *Renderer) sendNumbered(to, header, body string, opts []Option) {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}
	b.WriteString(body)
	for i, opt := range opts {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt.Title)
	}
	b.WriteString("\nReply with the number or the name.")
	if err := r.sender.SendText(to, b.String()); err != nil {
		r.log.Error("numbered-text degradation also failed", zap.String("to", to), zap.Error(err))
	}
}

// clampOptions copies opts, capping the count and per-field lengths.
func clampOptions(opts []Option, maxCount, maxTitle int) []Option {
	if len(opts) > maxCount {
		opts = opts[:maxCount]
	}
	out := make([]Option, len(opts))
	for i, opt := range opts {
		out[i] = Option{
			ID:          opt.ID,
			Title:       truncate(opt.Title, maxTitle),
			Description: truncate(opt.Description, MaxRowDesc),
		}
	}
	return out
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
