package tray

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMenu builds a dbusMenu over a fresh service state holding items.
func newTestMenu(t *testing.T, items ...MenuItem) *dbusMenu {
	t.Helper()

	state := newServiceState()
	state.apply(update{menu: buildMenuTree(items)})

	return &dbusMenu{
		state:      state,
		revision:   func() uint32 { return 7 },
		events:     newQueue[rawEvent](),
		activation: activationSet(DefaultActivationEvents),
	}
}

func recvRaw(t *testing.T, q *queue[rawEvent]) rawEvent {
	t.Helper()

	select {
	case raw := <-q.out:
		return raw
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return rawEvent{}
	}
}

func assertNoRaw(t *testing.T, q *queue[rawEvent]) {
	t.Helper()

	select {
	case raw := <-q.out:
		t.Fatalf("unexpected event: %+v", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDBusMenuGetLayout(t *testing.T) {
	menu := newTestMenu(t, sampleMenu()...)

	rev, layout, derr := menu.GetLayout(0, -1, nil)
	require.Nil(t, derr)
	assert.Equal(t, uint32(7), rev)
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6}, layoutIDs(layout))
}

func TestDBusMenuGetGroupProperties(t *testing.T) {
	menu := newTestMenu(t, sampleMenu()...)

	groups, derr := menu.GetGroupProperties([]int32{1, 2, 42}, []string{"type"})
	require.Nil(t, derr)
	require.Len(t, groups, 3)

	assert.Equal(t, int32(1), groups[0].ID)
	assert.Equal(t, dbus.MakeVariant(menuTypeStandard), groups[0].Properties["type"])

	assert.Equal(t, dbus.MakeVariant(menuTypeSeparator), groups[1].Properties["type"])

	assert.Equal(t, int32(42), groups[2].ID)
	assert.Empty(t, groups[2].Properties, "unknown ids yield empty property maps")
}

func TestDBusMenuGetProperty(t *testing.T) {
	menu := newTestMenu(t, sampleMenu()...)

	t.Run("known property", func(t *testing.T) {
		v, derr := menu.GetProperty(1, "label")
		require.Nil(t, derr)
		assert.Equal(t, dbus.MakeVariant("Notifications"), v)
	})

	t.Run("unknown id", func(t *testing.T) {
		v, derr := menu.GetProperty(42, "label")
		require.Nil(t, derr)
		assert.Equal(t, dbus.MakeVariant(""), v)
	})

	t.Run("unknown name", func(t *testing.T) {
		v, derr := menu.GetProperty(1, "shortcut")
		require.Nil(t, derr)
		assert.Equal(t, dbus.MakeVariant(""), v)
	})
}

func TestDBusMenuEvent(t *testing.T) {
	t.Run("activation spellings", func(t *testing.T) {
		for _, eventID := range []string{"clicked", "activate", "activated", "toggled", "CLICKED", "Activate"} {
			menu := newTestMenu(t, NewCheckbox("X", "Toggle", false))

			derr := menu.Event(1, eventID, dbus.MakeVariant(0), 0)
			require.Nil(t, derr)

			raw := recvRaw(t, menu.events)
			assert.Equal(t, rawMenuClick, raw.kind, "event id %q", eventID)
			assert.Equal(t, "X", raw.userID)
		}
	})

	t.Run("advisory events are ignored", func(t *testing.T) {
		menu := newTestMenu(t, NewCheckbox("X", "Toggle", false))

		for _, eventID := range []string{"somethingelse", "opened", "closed", "hovered", "about-to-show"} {
			require.Nil(t, menu.Event(1, eventID, dbus.MakeVariant(0), 0))
		}

		assertNoRaw(t, menu.events)
	})

	t.Run("nodes without caller ids do not dispatch", func(t *testing.T) {
		menu := newTestMenu(t, NewSeparator())

		require.Nil(t, menu.Event(1, "clicked", dbus.MakeVariant(0), 0))
		require.Nil(t, menu.Event(0, "clicked", dbus.MakeVariant(0), 0))
		require.Nil(t, menu.Event(42, "clicked", dbus.MakeVariant(0), 0))

		assertNoRaw(t, menu.events)
	})

	t.Run("event group routes through the same mapping", func(t *testing.T) {
		menu := newTestMenu(t,
			NewCheckbox("first", "First", false),
			NewCheckbox("second", "Second", false),
		)

		derr := menu.EventGroup([]menuEvent{
			{ID: 1, EventID: "opened"},
			{ID: 1, EventID: "Toggled"},
			{ID: 2, EventID: "clicked"},
			{ID: 2, EventID: "somethingelse"},
		})
		require.Nil(t, derr)

		assert.Equal(t, "first", recvRaw(t, menu.events).userID)
		assert.Equal(t, "second", recvRaw(t, menu.events).userID)
		assertNoRaw(t, menu.events)
	})

	t.Run("custom activation set", func(t *testing.T) {
		menu := newTestMenu(t, NewCheckbox("X", "Toggle", false))
		menu.activation = activationSet([]string{"x-vendor-fire"})

		require.Nil(t, menu.Event(1, "clicked", dbus.MakeVariant(0), 0))
		assertNoRaw(t, menu.events)

		require.Nil(t, menu.Event(1, "X-Vendor-Fire", dbus.MakeVariant(0), 0))
		assert.Equal(t, "X", recvRaw(t, menu.events).userID)
	})
}

func TestDBusMenuAboutToShow(t *testing.T) {
	menu := newTestMenu(t, sampleMenu()...)

	needUpdate, derr := menu.AboutToShow(0)
	require.Nil(t, derr)
	assert.False(t, needUpdate)
}
