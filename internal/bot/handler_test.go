package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexabloom/visabot/internal/catalog"
	"github.com/nexabloom/visabot/internal/dialog"
	"github.com/nexabloom/visabot/internal/session"
	"github.com/nexabloom/visabot/internal/widget"
)

type fakeSender struct {
	lists []string // list headers, in send order
}

func (f *fakeSender) SendText(to, body string) error { return nil }

func (f *fakeSender) SendButtons(to, body string, opts []widget.Option) error { return nil }

func (f *fakeSender) SendList(to, header, body, buttonLabel string, opts []widget.Option) error {
	f.lists = append(f.lists, header)
	return nil
}

type fakeAdvisor struct{}

func (fakeAdvisor) Ask(ctx context.Context, question, contextText string) string { return "" }

func TestHandleEventKeepsSessionAcrossEvents(t *testing.T) {
	cat, err := catalog.Load()
	require.NoError(t, err)

	sender := &fakeSender{}
	renderer := widget.NewRenderer(sender, zap.NewNop())
	engine := dialog.NewEngine(cat, renderer, sender, fakeAdvisor{}, zap.NewNop())
	h := NewHandler(session.NewMemoryStore(), engine, zap.NewNop())

	h.HandleEvent("551199", dialog.FreeText{Text: "hi"})
	h.HandleEvent("551199", dialog.ListReply{ID: "cat_0", Title: "Family Immigration"})

	require.Len(t, sender.lists, 2)
	assert.Equal(t, "Service Categories", sender.lists[0])
	assert.Equal(t, "Sub-Services", sender.lists[1], "second event continues the same session")
}
