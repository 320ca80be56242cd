// Package session keeps the per-chat questionnaire state between
// commands: the last assessment, which plan section was shown, and
// whether a feedback rating was already given for it.
package session

import (
	"sync"

	"apim/internal/assessment"
)

type entry struct {
	last     *assessment.Assessment
	section  string
	feedback bool
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]entry
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]entry)}
}

func (m *Manager) Reset(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// SetAssessment stores the latest run for the chat and clears the shown
// section and feedback flag.
func (m *Manager) SetAssessment(chatID int64, a assessment.Assessment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = entry{last: &a}
}

// Assessment returns a copy of the chat's last run.
func (m *Manager) Assessment(chatID int64) (assessment.Assessment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[chatID]
	if !ok || e.last == nil {
		return assessment.Assessment{}, false
	}
	return *e.last, true
}

func (m *Manager) RunID(chatID int64) string {
	a, ok := m.Assessment(chatID)
	if !ok {
		return ""
	}
	return a.RunID
}

func (m *Manager) SetSection(chatID int64, section string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[chatID]
	if !ok {
		return
	}
	e.section = section
	m.sessions[chatID] = e
}

func (m *Manager) Section(chatID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[chatID].section
}

// MarkFeedback records that the chat rated its last run. It reports false
// if there is no run or it was already rated.
func (m *Manager) MarkFeedback(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[chatID]
	if !ok || e.last == nil || e.feedback {
		return false
	}
	e.feedback = true
	m.sessions[chatID] = e
	return true
}
