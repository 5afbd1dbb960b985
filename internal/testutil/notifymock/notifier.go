package notifymock

import (
	"sync"

	"lendflow-backend/internal/domain/notification"
)

type Sent struct {
	UserID  string
	Kind    notification.Kind
	Message string
}

// Notifier records every dispatched message. Safe for concurrent use since
// production dispatch happens off-goroutine.
type Notifier struct {
	mu   sync.Mutex
	sent []Sent
}

func (m *Notifier) Dispatch(userID string, kind notification.Kind, message string) {
	m.mu.Lock()
	m.sent = append(m.sent, Sent{UserID: userID, Kind: kind, Message: message})
	m.mu.Unlock()
}

func (m *Notifier) Sent() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sent, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *Notifier) SentTo(userID string) []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Sent
	for _, s := range m.sent {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}
