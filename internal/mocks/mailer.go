package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskdesk/internal/mail"
)

// MockMailer records the emails it is asked to send.
type MockMailer struct {
	// Err, when set, is returned by every send.
	Err error

	mu                sync.Mutex
	Assignments       []mail.Assignment
	StatusUpdates     []mail.StatusUpdate
	DeadlineReminders []mail.DeadlineReminder
	Broadcasts        []mail.Broadcast
}

// SendAssignment records a.
func (m *MockMailer) SendAssignment(_ context.Context, a mail.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Assignments = append(m.Assignments, a)
	return m.Err
}

// SendStatusUpdate records u.
func (m *MockMailer) SendStatusUpdate(_ context.Context, u mail.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates = append(m.StatusUpdates, u)
	return m.Err
}

// SendDeadlineReminder records r.
func (m *MockMailer) SendDeadlineReminder(_ context.Context, r mail.DeadlineReminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeadlineReminders = append(m.DeadlineReminders, r)
	return m.Err
}

// SendBroadcast records b.
func (m *MockMailer) SendBroadcast(_ context.Context, b mail.Broadcast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Broadcasts = append(m.Broadcasts, b)
	return m.Err
}

// Sent returns the total number of recorded emails.
func (m *MockMailer) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Assignments) + len(m.StatusUpdates) + len(m.DeadlineReminders) + len(m.Broadcasts)
}
