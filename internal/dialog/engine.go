package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nexabloom/visabot/internal/catalog"
	"github.com/nexabloom/visabot/internal/session"
	"github.com/nexabloom/visabot/internal/widget"
)

// Advisor answers open-ended questions. Implementations never fail outward.
type Advisor interface {
	Ask(ctx context.Context, question, contextText string) string
}

// Engine is the dialog state machine. It consumes one inbound event at a
// time for a session (the store serializes this) and replies through the
// renderer and sender. A selection event is only accepted in the state that
// requested it; everything else gets the generic fallback text.
type Engine struct {
	catalog  *catalog.Catalog
	renderer *widget.Renderer
	sender   widget.Sender
	advisor  Advisor
	log      *zap.Logger
}

func NewEngine(cat *catalog.Catalog, r *widget.Renderer, sender widget.Sender, adv Advisor, log *zap.Logger) *Engine {
	return &Engine{catalog: cat, renderer: r, sender: sender, advisor: adv, log: log}
}

var followUpOptions = []widget.Option{
	{ID: idFollowUpFAQ, Title: "FAQs"},
	{ID: idFollowUpAsk, Title: "Ask a question"},
	{ID: idFollowUpRestart, Title: "Start again"},
}

// Handle applies one inbound event to the session. Reset keywords win over
// every other rule, from any state.
func (e *Engine) Handle(ctx context.Context, to string, s *session.Session, ev Event) {
	if ft, ok := ev.(FreeText); ok && isResetKeyword(ft.Text) {
		s.Reset()
		e.text(to, textWelcome)
		e.showCategories(to, s)
		return
	}

	switch s.State {
	case session.StateIdle, "":
		e.handleIdle(to, s, ev)
	case session.StateCategorySelect:
		e.handleCategorySelect(to, s, ev)
	case session.StateSubServiceSelect:
		e.handleSubServiceSelect(to, s, ev)
	case session.StateEligibilityQA:
		e.handleEligibility(to, s, ev)
	case session.StateFAQBrowse:
		e.handleFAQBrowse(to, s, ev)
	case session.StateAdvisoryQA:
		e.handleAdvisory(ctx, to, s, ev)
	default:
		e.text(to, textFallback)
	}
}

// handleIdle opens the category picker, except when the event is one of the
// follow-up choices offered after a completed assessment.
func (e *Engine) handleIdle(to string, s *session.Session, ev Event) {
	var id string
	switch v := ev.(type) {
	case ButtonReply:
		id = v.ID
	case FreeText:
		if entry, ok := s.Fallback[tagFollowUp]; ok {
			if opt, resolved := widget.Resolve(entry, v.Text); resolved {
				id = opt.ID
			}
		}
	}

	switch id {
	case idFollowUpFAQ:
		e.showFAQs(to, s)
		return
	case idFollowUpAsk:
		if s.SubService != "" {
			e.text(to, fmt.Sprintf(textAskPromptFmt, s.SubService))
			s.State = session.StateAdvisoryQA
			return
		}
	case idFollowUpRestart:
		s.Reset()
	}

	e.showCategories(to, s)
}

func (e *Engine) handleCategorySelect(to string, s *session.Session, ev Event) {
	cats := e.catalog.Categories()
	i, ok := e.pickIndex(s, tagCategoryPicker, "cat_", ev)
	if !ok || i >= len(cats) {
		e.text(to, textFallback)
		return
	}
	s.Category = cats[i].Name
	e.showSubServices(to, s)
}

func (e *Engine) handleSubServiceSelect(to string, s *session.Session, ev Event) {
	cat, found := e.catalog.Category(s.Category)
	if !found {
		e.text(to, textFallback)
		return
	}
	i, ok := e.pickIndex(s, tagSubServicePicker, "sub_", ev)
	if !ok || i >= len(cat.SubServices) {
		e.text(to, textFallback)
		return
	}
	s.SubService = cat.SubServices[i].Name
	s.QuestionIndex = 0
	s.State = session.StateEligibilityQA
	e.advanceEligibility(to, s)
}

func (e *Engine) handleEligibility(to string, s *session.Session, ev Event) {
	ft, ok := ev.(FreeText)
	if !ok {
		e.text(to, textFallback)
		return
	}
	svc, found := e.catalog.SubService(s.Category, s.SubService)
	if !found {
		e.text(to, textFallback)
		return
	}
	if s.QuestionIndex < len(svc.Questions) {
		s.Answers[svc.Questions[s.QuestionIndex]] = ft.Text
		s.QuestionIndex++
	}
	e.advanceEligibility(to, s)
}

// advanceEligibility sends the next question, or wraps the assessment up
// with the case id, checklist, next steps and the follow-up buttons.
func (e *Engine) advanceEligibility(to string, s *session.Session) {
	svc, found := e.catalog.SubService(s.Category, s.SubService)
	if !found {
		e.text(to, textFallback)
		s.State = session.StateIdle
		return
	}

	if s.QuestionIndex < len(svc.Questions) {
		q := svc.Questions[s.QuestionIndex]
		e.text(to, fmt.Sprintf(textProgressFmt, s.QuestionIndex+1, len(svc.Questions))+"\n"+q)
		return
	}

	e.text(to, fmt.Sprintf(textCaseFmt, s.CaseID))

	var items strings.Builder
	for i, item := range svc.Checklist {
		if i > 0 {
			items.WriteString("\n")
		}
		items.WriteString("• " + item)
	}
	e.text(to, fmt.Sprintf(textDocListFmt, s.SubService, items.String()))
	if svc.NextSteps != "" {
		e.text(to, svc.NextSteps)
	}
	e.offerFollowUp(to, s)
}

func (e *Engine) handleFAQBrowse(to string, s *session.Session, ev Event) {
	svc, found := e.catalog.SubService(s.Category, s.SubService)
	if !found {
		e.text(to, textFallback)
		s.State = session.StateIdle
		return
	}
	i, ok := e.pickIndex(s, tagFAQPicker, "faq_", ev)
	if !ok || i >= len(svc.FAQs) {
		e.text(to, textFallback)
		return
	}
	faq := svc.FAQs[i]
	e.text(to, fmt.Sprintf(textFAQAnswerFmt, faq.Question, faq.Answer))
	e.offerFollowUp(to, s)
}

func (e *Engine) handleAdvisory(ctx context.Context, to string, s *session.Session, ev Event) {
	ft, ok := ev.(FreeText)
	if !ok {
		e.text(to, textFallback)
		return
	}
	contextText := s.SubService
	if svc, found := e.catalog.SubService(s.Category, s.SubService); found {
		contextText = fmt.Sprintf("%s. Next steps: %s", svc.Name, svc.NextSteps)
	}
	e.text(to, e.advisor.Ask(ctx, ft.Text, contextText))
	e.offerFollowUp(to, s)
}

func (e *Engine) showCategories(to string, s *session.Session) {
	cats := e.catalog.Categories()
	opts := make([]widget.Option, len(cats))
	for i, c := range cats {
		title := c.Name
		if c.Emoji != "" {
			title = c.Emoji + " " + c.Name
		}
		opts[i] = widget.Option{
			ID:          fmt.Sprintf("cat_%d", i),
			Title:       title,
			Description: "Select for details",
		}
	}
	e.renderer.OptionList(to, tagCategoryPicker, textSelectCategory, textChooseCategory, "Select", opts, s)
	if len(opts) > 0 {
		s.State = session.StateCategorySelect
	}
}

func (e *Engine) showSubServices(to string, s *session.Session) {
	cat, found := e.catalog.Category(s.Category)
	if !found {
		e.text(to, textFallback)
		return
	}
	opts := make([]widget.Option, len(cat.SubServices))
	for i, sub := range cat.SubServices {
		opts[i] = widget.Option{
			ID:          fmt.Sprintf("sub_%d", i),
			Title:       sub.Name,
			Description: "Select for details",
		}
	}
	e.renderer.OptionList(to, tagSubServicePicker, textSelectSub, fmt.Sprintf(textChooseSubFmt, s.Category), "Select", opts, s)
	if len(opts) > 0 {
		s.State = session.StateSubServiceSelect
	}
}

func (e *Engine) showFAQs(to string, s *session.Session) {
	svc, found := e.catalog.SubService(s.Category, s.SubService)
	if !found {
		e.text(to, textFallback)
		return
	}
	opts := make([]widget.Option, len(svc.FAQs))
	for i, faq := range svc.FAQs {
		opts[i] = widget.Option{
			ID:          fmt.Sprintf("faq_%d", i),
			Title:       faq.Question,
			Description: "Tap to view the answer",
		}
	}
	e.renderer.OptionList(to, tagFAQPicker, fmt.Sprintf(textFAQHeaderFmt, s.SubService), textFAQBody, "View", opts, s)
	if len(opts) > 0 {
		s.State = session.StateFAQBrowse
	}
}

func (e *Engine) offerFollowUp(to string, s *session.Session) {
	e.renderer.ButtonSet(to, tagFollowUp, textFollowUp, followUpOptions, s)
	s.State = session.StateIdle
}

// pickIndex extracts the selected option index for the prefix the current
// state expects. Interactive replies carry the id directly; free text is
// resolved against the menu most recently offered under tag.
func (e *Engine) pickIndex(s *session.Session, tag, prefix string, ev Event) (int, bool) {
	var id string
	switch v := ev.(type) {
	case ListReply:
		id = v.ID
	case ButtonReply:
		id = v.ID
	case FreeText:
		entry, ok := s.Fallback[tag]
		if !ok {
			return 0, false
		}
		opt, resolved := widget.Resolve(entry, v.Text)
		if !resolved {
			return 0, false
		}
		id = opt.ID
	}
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func (e *Engine) text(to, body string) {
	if err := e.sender.SendText(to, body); err != nil {
		e.log.Warn("text send failed", zap.String("to", to), zap.Error(err))
	}
}

func isResetKeyword(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, kw := range resetKeywords {
		if text == kw {
			return true
		}
	}
	return false
}
