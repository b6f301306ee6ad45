package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher(t *testing.T) {
	t.Run("preserves submission order through the defer primitive", func(t *testing.T) {
		events := make(chan Event, 3)
		events <- MenuClickEvent{ID: "a"}
		events <- MenuClickEvent{ID: "b"}
		events <- MenuClickEvent{ID: "c"}
		close(events)

		// Model a host event loop: deferred closures run later, in
		// submission order.
		var deferred []func()
		var got []string

		d := &Dispatcher{
			Defer: func(fn func()) { deferred = append(deferred, fn) },
			Handle: func(ev Event) {
				got = append(got, ev.(MenuClickEvent).ID)
			},
		}
		d.Run(events)

		assert.Empty(t, got, "handlers only run once the host drains its queue")

		for _, fn := range deferred {
			fn()
		}
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("runs inline without a defer primitive", func(t *testing.T) {
		events := make(chan Event, 1)
		events <- ScrollEvent{DeltaY: 1}
		close(events)

		var got []Event
		d := &Dispatcher{Handle: func(ev Event) { got = append(got, ev) }}
		d.Run(events)

		assert.Equal(t, []Event{ScrollEvent{DeltaY: 1}}, got)
	})

	t.Run("returns when the channel closes", func(t *testing.T) {
		events := make(chan Event)
		close(events)

		done := make(chan struct{})
		go func() {
			(&Dispatcher{Handle: func(Event) {}}).Run(events)
			close(done)
		}()

		<-done
	})
}
