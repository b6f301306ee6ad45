package tray

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

const (
	StatusNotifierItemInterface = "org.kde.StatusNotifierItem"
	StatusNotifierItemPath      = "/StatusNotifierItem"
)

type ItemCategory string

// StatusNotifierItem categories.
const (
	// The item describes the status of a generic application, for instance the
	// current state of a media player.
	ItemCategoryApplicationStatus ItemCategory = "ApplicationStatus"

	// The item describes the status of communication oriented applications, like
	// an instant messenger or an email client.
	ItemCategoryCommunications ItemCategory = "Communications"

	// The item describes services of the system not seen as a stand alone
	// application by the user, such as an indicator for the activity of a disk
	// indexing service.
	ItemCategorySystemServices ItemCategory = "SystemServices"

	// The item describes the state and control of a particular hardware, such as
	// an indicator of the battery charge or sound card volume control.
	ItemCategoryHardware ItemCategory = "Hardware"
)

type ItemStatus string

// StatusNotifierItem statuses.
const (
	// The item doesn't convey important information to the user, it can be
	// considered an "idle" status and is likely that visualizations will choose
	// to hide it.
	ItemStatusPassive ItemStatus = "Passive"

	// The item is active, is more important that the item will be shown in some
	// way to the user.
	ItemStatusActive ItemStatus = "Active"

	// The item carries really important information for the user, such as battery
	// charge running out and is wants to incentive the direct user intervention.
	// Visualizations should emphasize in some way the items with NeedsAttention
	// status.
	ItemStatusNeedsAttention ItemStatus = "NeedsAttention"
)

// statusFor maps the visibility flag to the advertised item status.
func statusFor(visible bool) ItemStatus {
	if visible {
		return ItemStatusActive
	}

	return ItemStatusPassive
}

// tooltip is the wire representation of the ToolTip property, marshalled
// as (sa(iiay)ss).
type tooltip struct {
	IconName    string
	IconPixmap  []pixmap
	Title       string
	Description string
}

// statusNotifierItem serves org.kde.StatusNotifierItem. Methods are
// invoked concurrently by the bus runtime; they only ever enqueue raw
// events and never touch engine state.
type statusNotifierItem struct {
	events *queue[rawEvent]
}

// Activate handles a primary activation, typically a mouse left click
// over the graphical representation of the item. The x and y parameters
// are screen coordinates.
func (i *statusNotifierItem) Activate(x, y int32) *dbus.Error {
	i.events.push(rawEvent{kind: rawActivate, x: x, y: y})
	return nil
}

// SecondaryActivate handles a secondary and less important form of
// activation, typically a mouse middle click.
func (i *statusNotifierItem) SecondaryActivate(x, y int32) *dbus.Error {
	i.events.push(rawEvent{kind: rawSecondaryActivate, x: x, y: y})
	return nil
}

// Scroll handles a scroll over the item. Valid orientations are
// "horizontal" and "vertical".
func (i *statusNotifierItem) Scroll(delta int32, orientation string) *dbus.Error {
	i.events.push(rawEvent{kind: rawScroll, delta: delta, orientation: orientation})
	return nil
}

// itemProps builds the property table served at /StatusNotifierItem.
// Values are refreshed on every publish.
func itemProps(id string, u update) map[string]*prop.Prop {
	readonly := func(v any) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitTrue}
	}

	return map[string]*prop.Prop{
		"Category":   readonly(string(ItemCategoryApplicationStatus)),
		"Id":         readonly(id),
		"Title":      readonly(u.title),
		"Status":     readonly(string(statusFor(u.visible))),
		"IconName":   readonly(u.iconName),
		"IconPixmap": readonly(u.pixmaps),
		"ToolTip": readonly(tooltip{
			IconPixmap:  u.pixmaps,
			Title:       u.tooltip,
			Description: u.description,
		}),
		"ItemIsMenu": readonly(false),
		"Menu":       readonly(dbus.ObjectPath(MenuPath)),
	}
}

// itemIntrospection describes the /StatusNotifierItem object for hosts
// that discover members via Introspect.
var itemIntrospection = &introspect.Node{
	Name: StatusNotifierItemPath,
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		prop.IntrospectData,
		{
			Name: StatusNotifierItemInterface,
			Methods: []introspect.Method{
				{Name: "Activate", Args: []introspect.Arg{
					{Name: "x", Type: "i", Direction: "in"},
					{Name: "y", Type: "i", Direction: "in"},
				}},
				{Name: "SecondaryActivate", Args: []introspect.Arg{
					{Name: "x", Type: "i", Direction: "in"},
					{Name: "y", Type: "i", Direction: "in"},
				}},
				{Name: "Scroll", Args: []introspect.Arg{
					{Name: "delta", Type: "i", Direction: "in"},
					{Name: "orientation", Type: "s", Direction: "in"},
				}},
			},
			Properties: []introspect.Property{
				{Name: "Category", Type: "s", Access: "read"},
				{Name: "Id", Type: "s", Access: "read"},
				{Name: "Title", Type: "s", Access: "read"},
				{Name: "Status", Type: "s", Access: "read"},
				{Name: "IconName", Type: "s", Access: "read"},
				{Name: "IconPixmap", Type: "a(iiay)", Access: "read"},
				{Name: "ToolTip", Type: "(sa(iiay)ss)", Access: "read"},
				{Name: "ItemIsMenu", Type: "b", Access: "read"},
				{Name: "Menu", Type: "o", Access: "read"},
			},
			Signals: []introspect.Signal{
				{Name: "NewTitle"},
				{Name: "NewIcon"},
				{Name: "NewToolTip"},
				{Name: "NewStatus", Args: []introspect.Arg{
					{Name: "status", Type: "s"},
				}},
				{Name: "NewMenu"},
			},
		},
	},
}
