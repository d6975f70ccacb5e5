package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown after a settings change.
type Notice struct {
	ID        string     `json:"id"`
	Kind      NoticeKind `json:"kind"`
	Field     string     `json:"field"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Notifier receives notices emitted by optimistic fields.
type Notifier interface {
	Notify(kind NoticeKind, field, message string, ttl time.Duration)
}

// Notices keeps notices until their delay elapses.
type Notices struct {
	mu    sync.Mutex
	items []Notice
}

func NewNotices() *Notices { return &Notices{} }

// Notify records a notice and schedules its dismissal after ttl.
func (n *Notices) Notify(kind NoticeKind, field, message string, ttl time.Duration) {
	item := Notice{
		ID:        uuid.NewString(),
		Kind:      kind,
		Field:     field,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	n.mu.Lock()
	n.items = append(n.items, item)
	n.mu.Unlock()
	if ttl > 0 {
		time.AfterFunc(ttl, func() { n.Dismiss(item.ID) })
	}
}

// Dismiss removes a notice before its delay elapses.
func (n *Notices) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, it := range n.items {
		if it.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return
		}
	}
}

// List returns the visible notices, oldest first.
func (n *Notices) List() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.items))
	copy(out, n.items)
	return out
}
