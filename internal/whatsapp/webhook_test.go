package whatsapp

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexabloom/visabot/internal/dialog"
)

type recordedEvent struct {
	from string
	ev   dialog.Event
}

func newTestHandler() (*WebhookHandler, *[]recordedEvent) {
	var events []recordedEvent
	h := NewWebhookHandler("secret-token", func(from string, ev dialog.Event) {
		events = append(events, recordedEvent{from: from, ev: ev})
	}, zap.NewNop())
	return h, &events
}

func TestHandleVerify(t *testing.T) {
	h, _ := newTestHandler()

	t.Run("echoes challenge on token match", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
		w := httptest.NewRecorder()
		h.HandleVerify(w, req)

		assert.Equal(t, 200, w.Code)
		assert.Equal(t, "12345", w.Body.String())
	})

	t.Run("rejects token mismatch", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
		w := httptest.NewRecorder()
		h.HandleVerify(w, req)

		assert.Equal(t, 403, w.Code)
	})

	t.Run("rejects missing mode", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.verify_token=secret-token", nil)
		w := httptest.NewRecorder()
		h.HandleVerify(w, req)

		assert.Equal(t, 403, w.Code)
	})
}

func TestHandleIncomingDecodesEvents(t *testing.T) {
	h, events := newTestHandler()

	payload := WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []Entry{{
			Changes: []Change{{
				Value: ChangeValue{
					Messages: []Message{
						{
							From: "551199",
							Type: "text",
							Text: &TextContent{Body: "hi"},
						},
						{
							From: "551199",
							Type: "interactive",
							Interactive: &InteractiveContent{
								Type:        "button_reply",
								ButtonReply: &ButtonReplyMsg{ID: "followup_faq", Title: "FAQs"},
							},
						},
						{
							From: "447700",
							Type: "interactive",
							Interactive: &InteractiveContent{
								Type:      "list_reply",
								ListReply: &ListReplyMsg{ID: "cat_0", Title: "Family Immigration"},
							},
						},
						{
							// unsupported types are skipped
							From: "447700",
							Type: "image",
						},
					},
				},
			}},
		}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(string(body)))
	w := httptest.NewRecorder()
	h.HandleIncoming(w, req)

	assert.Equal(t, 200, w.Code)
	require.Len(t, *events, 3)

	assert.Equal(t, "551199", (*events)[0].from)
	assert.Equal(t, dialog.FreeText{Text: "hi"}, (*events)[0].ev)
	assert.Equal(t, dialog.ButtonReply{ID: "followup_faq", Title: "FAQs"}, (*events)[1].ev)
	assert.Equal(t, "447700", (*events)[2].from)
	assert.Equal(t, dialog.ListReply{ID: "cat_0", Title: "Family Immigration"}, (*events)[2].ev)
}

func TestHandleIncomingBadPayload(t *testing.T) {
	h, events := newTestHandler()

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.HandleIncoming(w, req)

	// Meta retries on non-200, so a broken payload is still acknowledged.
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, *events)
}
