package tray

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMenu() []MenuItem {
	return []MenuItem{
		NewCheckbox("notifications", "Notifications", true),
		NewSeparator(),
		NewSubmenu("view", "View",
			NewRadio("view.list", "List", true),
			NewRadio("view.grid", "Grid", false),
		),
		NewSubmenu("quit", "Quit"),
	}
}

// walk collects numeric ids in pre-order.
func walk(t *menuTree, id int32) []int32 {
	ids := []int32{id}
	for _, child := range t.nodes[id].children {
		ids = append(ids, walk(t, child)...)
	}
	return ids
}

func TestBuildMenuTree(t *testing.T) {
	t.Run("assigns ids in traversal order", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6}, walk(tree, 0))
		assert.Equal(t, []int32{1, 2, 3, 6}, tree.nodes[0].children)
		assert.Equal(t, []int32{4, 5}, tree.nodes[3].children)
	})

	t.Run("is deterministic", func(t *testing.T) {
		first := buildMenuTree(sampleMenu())
		second := buildMenuTree(sampleMenu())

		firstIDs := walk(first, 0)
		secondIDs := walk(second, 0)
		require.Equal(t, firstIDs, secondIDs)

		for _, id := range firstIDs {
			assert.Equal(t, first.nodes[id].userID, second.nodes[id].userID)
			assert.Equal(t, first.nodes[id].props, second.nodes[id].props)
		}
	})

	t.Run("root is enabled and visible", func(t *testing.T) {
		tree := buildMenuTree(nil)

		require.Len(t, tree.nodes, 1)
		root := tree.nodes[0]
		assert.Empty(t, root.props.Type)
		assert.True(t, root.props.Enabled)
		assert.True(t, root.props.Visible)
		assert.Empty(t, root.children)
	})

	t.Run("separator node", func(t *testing.T) {
		tree := buildMenuTree([]MenuItem{NewLabeledSeparator("Session")})

		node := tree.nodes[1]
		require.NotNil(t, node)
		assert.Equal(t, menuTypeSeparator, node.props.Type)
		assert.Equal(t, "Session", node.props.Label)
		assert.Empty(t, node.userID)
	})

	t.Run("toggle nodes", func(t *testing.T) {
		tree := buildMenuTree([]MenuItem{
			NewCheckbox("a", "A", true),
			NewRadio("b", "B", false),
		})

		checkbox := tree.nodes[1].props.Toggle
		require.NotNil(t, checkbox)
		assert.Equal(t, toggleTypeCheckmark, checkbox.Type)
		assert.Equal(t, int32(1), checkbox.State)

		radio := tree.nodes[2].props.Toggle
		require.NotNil(t, radio)
		assert.Equal(t, toggleTypeRadio, radio.Type)
		assert.Equal(t, int32(0), radio.State)
	})

	t.Run("resolves caller ids", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		id, ok := tree.userID(4)
		require.True(t, ok)
		assert.Equal(t, "view.list", id)

		_, ok = tree.userID(2) // separator
		assert.False(t, ok)

		_, ok = tree.userID(0) // root
		assert.False(t, ok)

		_, ok = tree.userID(99)
		assert.False(t, ok)
	})
}

// layoutIDs collects every id reachable from a serialized layout.
func layoutIDs(l layoutNode) []int32 {
	ids := []int32{l.ID}
	for _, child := range l.Children {
		ids = append(ids, layoutIDs(child.Value().(layoutNode))...)
	}
	return ids
}

func TestMenuTreeLayout(t *testing.T) {
	t.Run("unlimited depth includes every descendant once", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		layout := tree.layout(0, -1, nil)
		assert.Equal(t, walk(tree, 0), layoutIDs(layout))
	})

	t.Run("depth zero stops recursion", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		layout := tree.layout(0, 0, nil)
		assert.Empty(t, layout.Children)
		assert.NotContains(t, layout.Properties, "children-display")
	})

	t.Run("depth one serializes a single level", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		layout := tree.layout(0, 1, nil)
		require.Len(t, layout.Children, 4)

		view := layout.Children[2].Value().(layoutNode)
		assert.Equal(t, int32(3), view.ID)
		assert.Empty(t, view.Children)
	})

	t.Run("subtree layout", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		layout := tree.layout(3, -1, nil)
		assert.Equal(t, []int32{3, 4, 5}, layoutIDs(layout))
		assert.Equal(t, dbus.MakeVariant("submenu"), layout.Properties["children-display"])
	})

	t.Run("unknown id yields an empty stub", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		layout := tree.layout(42, -1, nil)
		assert.Equal(t, int32(42), layout.ID)
		assert.Empty(t, layout.Properties)
		assert.Empty(t, layout.Children)
	})

	t.Run("filters properties to the requested names", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		layout := tree.layout(1, -1, []string{"label", "toggle-state"})
		assert.Equal(t, map[string]dbus.Variant{
			"label":        dbus.MakeVariant("Notifications"),
			"toggle-state": dbus.MakeVariant(int32(1)),
		}, layout.Properties)
	})

	t.Run("empty filter includes all properties", func(t *testing.T) {
		tree := buildMenuTree(sampleMenu())

		layout := tree.layout(1, -1, nil)
		assert.Equal(t, map[string]dbus.Variant{
			"type":         dbus.MakeVariant(menuTypeStandard),
			"label":        dbus.MakeVariant("Notifications"),
			"enabled":      dbus.MakeVariant(true),
			"visible":      dbus.MakeVariant(true),
			"toggle-type":  dbus.MakeVariant(toggleTypeCheckmark),
			"toggle-state": dbus.MakeVariant(int32(1)),
		}, layout.Properties)
	})

	t.Run("separator serializes without a label", func(t *testing.T) {
		tree := buildMenuTree([]MenuItem{NewLabeledSeparator("Session")})

		layout := tree.layout(1, -1, nil)
		assert.Equal(t, dbus.MakeVariant(menuTypeSeparator), layout.Properties["type"])
		assert.NotContains(t, layout.Properties, "label")
	})
}

func TestNodePropsLookup(t *testing.T) {
	tree := buildMenuTree(sampleMenu())

	v, ok := tree.nodes[1].props.lookup("label")
	require.True(t, ok)
	assert.Equal(t, "Notifications", v)

	v, ok = tree.nodes[1].props.lookup("toggle-type")
	require.True(t, ok)
	assert.Equal(t, toggleTypeCheckmark, v)

	_, ok = tree.nodes[2].props.lookup("label")
	assert.False(t, ok, "separators carry no wire label")

	_, ok = tree.nodes[6].props.lookup("toggle-state")
	assert.False(t, ok, "plain entries carry no toggle")

	_, ok = tree.nodes[1].props.lookup("shortcut")
	assert.False(t, ok)
}
