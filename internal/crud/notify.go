package crud

import "context"

// NotificationKind distinguishes success feedback from failure feedback.
type NotificationKind string

const (
	NotifySuccess     NotificationKind = "success"
	NotifyDestructive NotificationKind = "destructive"
)

// Notification is one piece of user-visible feedback. Delivery is
// fire-and-forget; no result is consumed.
type Notification struct {
	Kind        NotificationKind
	Title       string
	Description string
}

// Notifier is the sink all success/failure feedback flows through. It is
// injected into the orchestrator rather than reached through any global.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// NopNotifier discards all notifications.
var NopNotifier = NotifierFunc(func(context.Context, Notification) {})
