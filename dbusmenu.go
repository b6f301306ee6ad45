package tray

import (
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

const (
	MenuInterface = "com.canonical.dbusmenu"
	MenuPath      = "/MenuBar"
)

// MenuVersion is the advertised com.canonical.dbusmenu version.
// libdbusmenu uses 4; some hosts won't populate menus without it.
const MenuVersion = uint32(4)

// DefaultActivationEvents are the event ids treated as an activation of a
// menu entry. Different hosts use different spellings; the list was
// collected from observed host behavior rather than a written
// specification and can be overridden with [WithActivationEvents].
var DefaultActivationEvents = []string{"clicked", "activate", "activated", "toggled"}

// groupProperties is one element of the GetGroupProperties reply,
// marshalled as (ia{sv}).
type groupProperties struct {
	ID         int32
	Properties map[string]dbus.Variant
}

// menuEvent is one element of the EventGroup argument, marshalled as
// (isvu).
type menuEvent struct {
	ID        int32
	EventID   string
	Data      dbus.Variant
	Timestamp uint32
}

// dbusMenu serves com.canonical.dbusmenu for the current menu tree.
// Queries are answered from a lock-guarded snapshot of engine state and
// never wait on the synchronization loop.
type dbusMenu struct {
	state      *serviceState
	revision   func() uint32
	events     *queue[rawEvent]
	activation map[string]struct{}
}

// GetLayout provides the layout and the properties attached to the nodes
// in it, starting from parentID. A recursionDepth of -1 means unlimited;
// an empty propertyNames slice means all properties.
func (m *dbusMenu) GetLayout(parentID, recursionDepth int32, propertyNames []string) (uint32, layoutNode, *dbus.Error) {
	tree := m.state.menuSnapshot()
	return m.revision(), tree.layout(parentID, recursionDepth, propertyNames), nil
}

// GetGroupProperties returns the properties of every requested node.
// Unknown ids yield an entry with an empty property map.
func (m *dbusMenu) GetGroupProperties(ids []int32, propertyNames []string) ([]groupProperties, *dbus.Error) {
	tree := m.state.menuSnapshot()

	out := make([]groupProperties, 0, len(ids))
	for _, id := range ids {
		props := map[string]dbus.Variant{}
		if node, ok := tree.nodes[id]; ok {
			props = node.props.variants(propertyNames)
		}

		out = append(out, groupProperties{ID: id, Properties: props})
	}

	return out, nil
}

// GetProperty returns a single property of a single node. Hosts tend to
// treat missing properties as unset, so an unknown id or name yields an
// empty string variant rather than an error.
func (m *dbusMenu) GetProperty(id int32, name string) (dbus.Variant, *dbus.Error) {
	tree := m.state.menuSnapshot()

	if node, ok := tree.nodes[id]; ok {
		if v, ok := node.props.lookup(name); ok {
			return dbus.MakeVariant(v), nil
		}
	}

	return dbus.MakeVariant(""), nil
}

// Event reports that an event happened to a single node.
func (m *dbusMenu) Event(id int32, eventID string, data dbus.Variant, timestamp uint32) *dbus.Error {
	m.dispatch(id, eventID)
	return nil
}

// EventGroup reports a batch of events. Some hosts only send click events
// through EventGroup, so it routes through the same mapping as Event.
func (m *dbusMenu) EventGroup(events []menuEvent) *dbus.Error {
	for _, ev := range events {
		m.dispatch(ev.ID, ev.EventID)
	}

	return nil
}

// AboutToShow reports whether the node needs an update before being
// shown. Menus are always published eagerly, so the answer is always
// false.
func (m *dbusMenu) AboutToShow(id int32) (bool, *dbus.Error) {
	return false, nil
}

// normalizeEventID folds an event id for whitelist matching. Hosts are
// inconsistent about casing.
func normalizeEventID(id string) string {
	return strings.ToLower(id)
}

// dispatch maps an activation event to the caller id of the target node
// and enqueues it. Event ids outside the activation set are advisory
// (e.g. "opened") and are ignored.
func (m *dbusMenu) dispatch(id int32, eventID string) {
	if _, ok := m.activation[normalizeEventID(eventID)]; !ok {
		return
	}

	tree := m.state.menuSnapshot()
	if userID, ok := tree.userID(id); ok {
		m.events.push(rawEvent{kind: rawMenuClick, userID: userID})
	}
}

// menuProps builds the property table served at /MenuBar.
func menuProps() map[string]*prop.Prop {
	readonly := func(v any) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitFalse}
	}

	return map[string]*prop.Prop{
		"Version":       readonly(MenuVersion),
		"Status":        readonly("normal"),
		"TextDirection": readonly("ltr"),
		"IconThemePath": readonly([]string{}),
	}
}

// menuIntrospection describes the /MenuBar object for hosts that discover
// members via Introspect.
var menuIntrospection = &introspect.Node{
	Name: MenuPath,
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		prop.IntrospectData,
		{
			Name: MenuInterface,
			Methods: []introspect.Method{
				{Name: "GetLayout", Args: []introspect.Arg{
					{Name: "parentId", Type: "i", Direction: "in"},
					{Name: "recursionDepth", Type: "i", Direction: "in"},
					{Name: "propertyNames", Type: "as", Direction: "in"},
					{Name: "revision", Type: "u", Direction: "out"},
					{Name: "layout", Type: "(ia{sv}av)", Direction: "out"},
				}},
				{Name: "GetGroupProperties", Args: []introspect.Arg{
					{Name: "ids", Type: "ai", Direction: "in"},
					{Name: "propertyNames", Type: "as", Direction: "in"},
					{Name: "properties", Type: "a(ia{sv})", Direction: "out"},
				}},
				{Name: "GetProperty", Args: []introspect.Arg{
					{Name: "id", Type: "i", Direction: "in"},
					{Name: "name", Type: "s", Direction: "in"},
					{Name: "value", Type: "v", Direction: "out"},
				}},
				{Name: "Event", Args: []introspect.Arg{
					{Name: "id", Type: "i", Direction: "in"},
					{Name: "eventId", Type: "s", Direction: "in"},
					{Name: "data", Type: "v", Direction: "in"},
					{Name: "timestamp", Type: "u", Direction: "in"},
				}},
				{Name: "EventGroup", Args: []introspect.Arg{
					{Name: "events", Type: "a(isvu)", Direction: "in"},
				}},
				{Name: "AboutToShow", Args: []introspect.Arg{
					{Name: "id", Type: "i", Direction: "in"},
					{Name: "needUpdate", Type: "b", Direction: "out"},
				}},
			},
			Properties: []introspect.Property{
				{Name: "Version", Type: "u", Access: "read"},
				{Name: "Status", Type: "s", Access: "read"},
				{Name: "TextDirection", Type: "s", Access: "read"},
				{Name: "IconThemePath", Type: "as", Access: "read"},
			},
			Signals: []introspect.Signal{
				{Name: "LayoutUpdated", Args: []introspect.Arg{
					{Name: "revision", Type: "u"},
					{Name: "parent", Type: "i"},
				}},
			},
		},
	},
}
