package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexabloom/visabot/internal/widget"
)

// State is the dialog state machine node a session currently sits on.
type State string

const (
	// StateIdle has no active flow; the next event opens the category picker.
	StateIdle State = "idle"
	// StateCategorySelect awaits a category choice.
	StateCategorySelect State = "category_select"
	// StateSubServiceSelect awaits a sub-service choice.
	StateSubServiceSelect State = "subservice_select"
	// StateEligibilityQA collects answers to the eligibility questions.
	StateEligibilityQA State = "eligibility_qa"
	// StateFAQBrowse awaits an FAQ pick for the completed sub-service.
	StateFAQBrowse State = "faq_browse"
	// StateAdvisoryQA forwards the next free text to the advisory gateway.
	StateAdvisoryQA State = "advisory_qa"
)

// Session is the per-conversation dialog state. It is mutated only under the
// store's per-conversation lock, one inbound event at a time.
type Session struct {
	State         State                   `json:"state"`
	Category      string                  `json:"category,omitempty"`
	SubService    string                  `json:"sub_service,omitempty"`
	QuestionIndex int                     `json:"question_index"`
	Answers       map[string]string       `json:"answers"`
	CaseID        string                  `json:"case_id"`
	Fallback      map[string]widget.Entry `json:"fallback"`
	LastActivity  time.Time               `json:"last_activity"`
}

// New returns a fresh session with a newly minted case id.
func New() *Session {
	return &Session{
		State:    StateIdle,
		Answers:  make(map[string]string),
		CaseID:   uuid.NewString(),
		Fallback: make(map[string]widget.Entry),
	}
}

// Reset discards all dialog progress and issues a new case id. The activity
// timestamp survives: a just-reset session is active, not idle, and must not
// be swept by the reaper.
func (s *Session) Reset() {
	last := s.LastActivity
	*s = *New()
	s.LastActivity = last
}

// RecordFallback stores the most recently offered option set under tag,
// overwriting any prior entry. Implements widget.Tracker.
func (s *Session) RecordFallback(tag string, e widget.Entry) {
	if s.Fallback == nil {
		s.Fallback = make(map[string]widget.Entry)
	}
	s.Fallback[tag] = e
}

// Store maps conversation ids to sessions. Update serializes access per
// conversation while letting unrelated conversations proceed in parallel.
type Store interface {
	// Update runs fn with the session for id, creating one on first contact.
	Update(id string, fn func(*Session) error) error
	// Reap drops sessions idle for longer than maxIdle and reports how many.
	Reap(maxIdle time.Duration) int
	Close() error
}
