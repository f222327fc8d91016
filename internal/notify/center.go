package notify

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/phrazzld/memoria/internal/platform/logger"
)

// Notification is a single message shown to the user until it is dismissed
// or expires.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the notification has expired at now. A zero
// ExpiresAt never expires.
func (n Notification) Expired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}

// Handler receives every published notification.
type Handler interface {
	HandleNotification(ctx context.Context, n Notification)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, n Notification)

// HandleNotification calls f.
func (f HandlerFunc) HandleNotification(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Option configures a Center.
type Option func(*Center)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithLogger sets the fallback logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Center) { c.logger = l }
}

// Center keeps the active notifications. It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	items    []Notification
	handlers []Handler
	seq      int
	logger   *slog.Logger
}

// NewCenter creates a Center whose notifications expire after ttl. A ttl of
// zero or less keeps them until dismissed.
func NewCenter(ttl time.Duration, opts ...Option) *Center {
	c := &Center{
		ttl:    ttl,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "notification_center"))
	return c
}

// Subscribe registers h to receive notifications published from now on.
func (c *Center) Subscribe(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// Publish records a notification and hands it to every handler.
func (c *Center) Publish(ctx context.Context, kind Kind, message string) Notification {
	c.mu.Lock()
	now := c.now()
	c.seq++
	n := Notification{
		ID:        c.newID(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}
	if c.ttl > 0 {
		n.ExpiresAt = now.Add(c.ttl)
	}
	c.items = append(c.pruneLocked(now), n)
	handlers := make([]Handler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	logger.FromContextOrDefault(ctx, c.logger).Debug("notification published",
		slog.String("id", n.ID),
		slog.String("kind", string(kind)),
		slog.Int("handler_count", len(handlers)))

	for _, h := range handlers {
		h.HandleNotification(ctx, n)
	}
	return n
}

// PublishError classifies err and publishes its message.
func (c *Center) PublishError(ctx context.Context, err error) Notification {
	return c.Publish(ctx, Classify(err), err.Error())
}

// Active returns the unexpired notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.pruneLocked(c.now())
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Dismiss removes the notification with id. It reports whether one was found.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every notification.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Center) pruneLocked(now time.Time) []Notification {
	kept := c.items[:0]
	for _, n := range c.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	return kept
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newID returns a short lowercase token that is easy to type back into
// "notices dismiss".
func (c *Center) newID() string {
	id, err := gonanoid.Generate(idAlphabet, 10)
	if err != nil {
		return "n" + strconv.Itoa(c.seq)
	}
	return id
}
