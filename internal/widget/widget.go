package widget

import (
	"strconv"
	"strings"
)

// Mode records how an option set was last presented to the user.
type Mode string

const (
	// ModeWidget means the native interactive widget was delivered.
	ModeWidget Mode = "widget"
	// ModeNumbered means the plain numbered-text degradation was used.
	ModeNumbered Mode = "numbered-text"
)

// Option is one abstract choice offered to the user, before any
// channel-specific rendering.
type Option struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Entry remembers the option set most recently offered under a prompt tag,
// so a later free-text reply can be resolved against it.
type Entry struct {
	Mode    Mode     `json:"mode"`
	Options []Option `json:"options"`
}

// Tracker receives fallback entries as menus are rendered. The dialog
// session implements this.
type Tracker interface {
	RecordFallback(tag string, e Entry)
}

// Resolve maps free text to one of the entry's options: first as a 1-based
// position in the recorded order, then as a case-insensitive label match.
func Resolve(e Entry, text string) (Option, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Option{}, false
	}
	if n, err := strconv.Atoi(text); err == nil {
		if n >= 1 && n <= len(e.Options) {
			return e.Options[n-1], true
		}
		return Option{}, false
	}
	for _, opt := range e.Options {
		if strings.EqualFold(opt.Title, text) {
			return opt, true
		}
	}
	return Option{}, false
}
