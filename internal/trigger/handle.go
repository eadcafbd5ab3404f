// Package trigger maps alarm definitions onto platform-level scheduled
// triggers and tracks the resulting handles.
package trigger

// HandleKind tags a handle with the platform mechanism that realizes it.
// Cancellation semantics differ per kind, so downstream code switches on the
// tag instead of parsing handle values.
type HandleKind int

const (
	// KindNone marks the zero Handle: no trigger registered.
	KindNone HandleKind = iota
	// KindNotification marks a cancellable local scheduled notification.
	KindNotification
	// KindSystemAlarm marks a native system alarm, which has no cancel
	// primitive.
	KindSystemAlarm
)

// String returns a stable label for logging.
func (k HandleKind) String() string {
	switch k {
	case KindNotification:
		return "notification"
	case KindSystemAlarm:
		return "system_alarm"
	default:
		return "none"
	}
}

// Handle is an opaque reference to a registered platform trigger.
type Handle struct {
	Kind  HandleKind
	Value string
}

// IsZero reports whether no trigger is registered behind the handle.
func (h Handle) IsZero() bool {
	return h.Kind == KindNone
}
