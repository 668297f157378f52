package controller

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

type notifierKey struct{}

// WithNotifier routes the notifications of calls made with ctx to n instead
// of the controller's default notifier. The console API uses it to return a
// request's notifications in its response.
func WithNotifier(ctx context.Context, n ports.Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// NotifierFunc adapts a function to ports.Notifier.
type NotifierFunc func(n domain.Notification)

func (f NotifierFunc) Notify(n domain.Notification) { f(n) }

// Collector records notifications in emission order.
type Collector struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (c *Collector) Notify(n domain.Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

// Notifications returns a copy of everything collected so far, never nil.
func (c *Collector) Notifications() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// notifier is embedded by every controller.
type notifier struct {
	fallback ports.Notifier
	log      zerolog.Logger
}

func (n notifier) notify(ctx context.Context, t domain.NotificationType, message string) {
	target := n.fallback
	if fromCtx, ok := ctx.Value(notifierKey{}).(ports.Notifier); ok && fromCtx != nil {
		target = fromCtx
	}
	if target == nil {
		return
	}
	target.Notify(domain.NewNotification(t, message))
}

func (n notifier) success(ctx context.Context, message string) {
	n.notify(ctx, domain.NotificationSuccess, message)
}

// fail logs err and shows the user its message, or the generic fallback.
func (n notifier) fail(ctx context.Context, op string, err error) {
	n.log.Warn().Err(err).Str("op", op).Str("kind", string(domain.KindOf(err))).Msg("operation failed")
	n.notify(ctx, domain.NotificationError, domain.UserMessage(err))
}
