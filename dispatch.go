package tray

// Dispatcher drains a tray's event channel and invokes a host callback
// for every event.
//
// The engine never calls host code itself: application state must only be
// mutated on the application's own thread, so the dispatcher hands each
// invocation to the Defer primitive, which is expected to schedule it on
// that thread in submission order. A GUI toolkit's "run on main thread"
// or "queue on event loop" function fits directly.
type Dispatcher struct {
	// Defer schedules fn on the host application's event loop. If nil,
	// Handle is invoked inline on the dispatcher's goroutine.
	Defer func(fn func())

	// Handle receives every event. Must not be nil.
	Handle func(Event)
}

// Run forwards events until the channel is closed. It is typically run on
// its own goroutine:
//
//	go (&tray.Dispatcher{Defer: app.Queue, Handle: onEvent}).Run(t.Events())
func (d *Dispatcher) Run(events <-chan Event) {
	for ev := range events {
		if d.Defer == nil {
			d.Handle(ev)
			continue
		}

		ev := ev
		d.Defer(func() {
			d.Handle(ev)
		})
	}
}
