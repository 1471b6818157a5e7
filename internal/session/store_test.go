package session

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexabloom/visabot/internal/widget"
)

func TestMemoryStoreCreatesOnFirstContact(t *testing.T) {
	m := NewMemoryStore()

	var caseID string
	err := m.Update("551199", func(s *Session) error {
		require.NotEmpty(t, s.CaseID)
		assert.Equal(t, StateIdle, s.State)
		caseID = s.CaseID
		return nil
	})
	require.NoError(t, err)

	err = m.Update("551199", func(s *Session) error {
		assert.Equal(t, caseID, s.CaseID, "case id is stable across events")
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreSerializesPerConversation(t *testing.T) {
	m := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update("551199", func(s *Session) error {
				s.QuestionIndex++
				return nil
			})
		}()
	}
	wg.Wait()

	m.Update("551199", func(s *Session) error {
		assert.Equal(t, 100, s.QuestionIndex)
		return nil
	})
}

func TestMemoryStoreReap(t *testing.T) {
	m := NewMemoryStore()

	m.Update("old", func(s *Session) error { return nil })
	m.Update("fresh", func(s *Session) error { return nil })
	m.sessions["old"].sess.LastActivity = time.Now().Add(-2 * time.Hour)

	n := m.Reap(1 * time.Hour)
	assert.Equal(t, 1, n)
	assert.NotContains(t, m.sessions, "old")
	assert.Contains(t, m.sessions, "fresh")
}

func TestMemoryStoreDoesNotReapJustResetSession(t *testing.T) {
	m := NewMemoryStore()

	err := m.Update("551199", func(s *Session) error {
		s.Reset()
		return nil
	})
	require.NoError(t, err)

	n := m.Reap(24 * time.Hour)
	assert.Zero(t, n, "a session whose last event was a reset is still active")
	assert.Contains(t, m.sessions, "551199")
}

func TestBoltStoreDoesNotReapJustResetSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	st, err := NewBoltStore(path)
	require.NoError(t, err)
	defer st.Close()

	var caseID string
	err = st.Update("551199", func(s *Session) error {
		s.Reset()
		caseID = s.CaseID
		return nil
	})
	require.NoError(t, err)

	n := st.Reap(24 * time.Hour)
	assert.Zero(t, n)

	st.Update("551199", func(s *Session) error {
		assert.Equal(t, caseID, s.CaseID, "the reset session survived the sweep")
		return nil
	})
}

func TestResetIssuesFreshCaseID(t *testing.T) {
	s := New()
	s.State = StateEligibilityQA
	s.Category = "Family Immigration"
	s.SubService = "Spouse/Partner Visa"
	s.QuestionIndex = 1
	s.Answers["q"] = "a"
	s.RecordFallback("category-picker", widget.Entry{Mode: widget.ModeWidget})
	s.LastActivity = time.Now()
	old := s.CaseID
	lastActivity := s.LastActivity

	s.Reset()

	assert.NotEqual(t, old, s.CaseID)
	assert.Equal(t, lastActivity, s.LastActivity, "reset keeps the activity timestamp")
	assert.Equal(t, StateIdle, s.State)
	assert.Empty(t, s.Category)
	assert.Empty(t, s.SubService)
	assert.Zero(t, s.QuestionIndex)
	assert.Empty(t, s.Answers)
	assert.Empty(t, s.Fallback)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	st, err := NewBoltStore(path)
	require.NoError(t, err)

	var caseID string
	err = st.Update("551199", func(s *Session) error {
		s.State = StateCategorySelect
		s.Category = "Work Immigration"
		s.RecordFallback("category-picker", widget.Entry{
			Mode:    widget.ModeNumbered,
			Options: []widget.Option{{ID: "cat_1", Title: "Work Immigration"}},
		})
		caseID = s.CaseID
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = NewBoltStore(path)
	require.NoError(t, err)
	defer st.Close()

	err = st.Update("551199", func(s *Session) error {
		assert.Equal(t, caseID, s.CaseID)
		assert.Equal(t, StateCategorySelect, s.State)
		assert.Equal(t, "Work Immigration", s.Category)
		entry, ok := s.Fallback["category-picker"]
		require.True(t, ok)
		assert.Equal(t, widget.ModeNumbered, entry.Mode)
		return nil
	})
	require.NoError(t, err)
}

func TestBoltStoreReap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	st, err := NewBoltStore(path)
	require.NoError(t, err)
	defer st.Close()

	err = st.Update("old", func(s *Session) error {
		s.LastActivity = time.Now().Add(-2 * time.Hour)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, st.Update("fresh", func(s *Session) error { return nil }))

	n := st.Reap(1 * time.Hour)
	assert.Equal(t, 1, n)

	st.Update("old", func(s *Session) error {
		assert.Equal(t, StateIdle, s.State, "reaped conversation starts over")
		return nil
	})
}
