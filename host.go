package kai

import "context"

// Host owns the real chat data. The widget calls Handle off the UI
// goroutine for every event it emits and applies the returned updates in
// order. Handle returns error for infrastructure failures; the widget
// surfaces them in its status line and keeps running.
type Host interface {
	Handle(ctx context.Context, e Event) ([]Update, error)
}

// HostFunc adapts a function to the Host interface.
type HostFunc func(ctx context.Context, e Event) ([]Update, error)

// Handle calls f.
func (f HostFunc) Handle(ctx context.Context, e Event) ([]Update, error) {
	return f(ctx, e)
}

// Interface compliance check.
var _ Host = HostFunc(nil)
