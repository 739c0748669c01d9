// Package notify collects the transient success and error messages ("toasts")
// the console shows after a write. Notifications are kept in a small ring buffer
// and pushed to subscribers in real time.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the kind of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one message shown to the operator.
type Notification struct {
	ID        string    // Unique notification ID
	Timestamp time.Time // When it was raised
	Level     Level     // success or error
	Message   string    // Text shown to the operator (French)
	Resource  string    // Resource tag of the write that raised it, if any
	Op        string    // create, update, delete, upload
}

// IsError reports whether n is an error notification.
func (n Notification) IsError() bool {
	return n.Level == LevelError
}

// Subscriber is a channel that receives notifications.
type Subscriber chan Notification

// Notifier defines the interface for raising and observing notifications.
type Notifier interface {
	// Notify records n and fans it out to subscribers.
	Notify(n Notification)

	// Success raises a success notification with msg.
	Success(resource, op, msg string)

	// Error raises an error notification with msg.
	Error(resource, op, msg string)

	// Subscribe registers a new subscriber. Returns the channel and a function to unsubscribe.
	Subscribe(filter Filter) (Subscriber, func())

	// Recent returns up to limit notifications, oldest first. limit <= 0 returns all kept.
	Recent(limit int) []Notification

	// Close shuts the notifier down and closes every subscriber channel.
	Close()
}

// Filter restricts what a subscriber receives.
type Filter struct {
	ErrorsOnly bool     // Only receive error notifications
	Resources  []string // Filter by resource tag (empty = all)
}

// Config holds configuration for the notifier.
type Config struct {
	// Capacity is the number of notifications kept for Recent (default: 50)
	Capacity int

	// Logger receives every notification at info (success) or warn (error) level.
	// Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns the default notifier configuration.
func DefaultConfig() Config {
	return Config{
		Capacity: 50,
	}
}

type notifier struct {
	mu          sync.Mutex
	buf         []Notification
	head        int
	count       int
	capacity    int
	logger      *slog.Logger
	subscribers map[string]subInfo
	closed      bool
}

type subInfo struct {
	ch     Subscriber
	filter Filter
}

var _ Notifier = (*notifier)(nil)

// New creates a notifier with the given configuration.
func New(cfg Config) Notifier {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	return &notifier{
		buf:         make([]Notification, cfg.Capacity),
		capacity:    cfg.Capacity,
		logger:      cfg.Logger,
		subscribers: make(map[string]subInfo),
	}
}

func (n *notifier) Success(resource, op, msg string) {
	n.Notify(Notification{Level: LevelSuccess, Resource: resource, Op: op, Message: msg})
}

func (n *notifier) Error(resource, op, msg string) {
	n.Notify(Notification{Level: LevelError, Resource: resource, Op: op, Message: msg})
}

func (n *notifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.Timestamp.IsZero() {
		note.Timestamp = time.Now()
	}

	n.buf[n.head] = note
	n.head = (n.head + 1) % n.capacity
	if n.count < n.capacity {
		n.count++
	}

	if n.logger != nil {
		if note.IsError() {
			n.logger.Warn(note.Message, "resource", note.Resource, "op", note.Op)
		} else {
			n.logger.Info(note.Message, "resource", note.Resource, "op", note.Op)
		}
	}

	for _, sub := range n.subscribers {
		if !matches(note, sub.filter) {
			continue
		}
		select {
		case sub.ch <- note:
		default:
			// Subscriber is slow, skip this notification
		}
	}
}

func (n *notifier) Subscribe(filter Filter) (Subscriber, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		ch := make(Subscriber)
		close(ch)
		return ch, func() {}
	}

	id := uuid.New().String()
	ch := make(Subscriber, 32)
	n.subscribers[id] = subInfo{ch: ch, filter: filter}

	return ch, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subscribers[id]; ok {
			close(sub.ch)
			delete(n.subscribers, id)
		}
	}
}

func (n *notifier) Recent(limit int) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if limit <= 0 || limit > n.count {
		limit = n.count
	}

	result := make([]Notification, 0, limit)
	for i := n.count - limit; i < n.count; i++ {
		idx := (n.head - n.count + i + n.capacity) % n.capacity
		result = append(result, n.buf[idx])
	}
	return result
}

func (n *notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true

	for id, sub := range n.subscribers {
		close(sub.ch)
		delete(n.subscribers, id)
	}
}

func matches(note Notification, filter Filter) bool {
	if filter.ErrorsOnly && !note.IsError() {
		return false
	}
	if len(filter.Resources) == 0 {
		return true
	}
	for _, r := range filter.Resources {
		if r == note.Resource {
			return true
		}
	}
	return false
}
