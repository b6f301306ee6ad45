package tray

import (
	"slices"

	"github.com/godbus/dbus/v5"
)

// Menu node types of the com.canonical.dbusmenu vocabulary.
const (
	menuTypeStandard  = "standard"
	menuTypeSeparator = "separator"
)

// Toggle types of the com.canonical.dbusmenu vocabulary.
const (
	toggleTypeCheckmark = "checkmark"
	toggleTypeRadio     = "radio"
)

// nodeToggle is the wire toggle descriptor of a node. State is 1 for
// checked and 0 for unchecked.
type nodeToggle struct {
	Type  string
	State int32
}

// nodeProps is the closed set of properties a menu node can carry. The
// protocol only ever emits this bounded vocabulary, so nodes store typed
// fields instead of a freeform string map and serialize to variants only
// at the wire boundary.
//
// An empty Type means the node is the implicit root, which exposes only
// enabled and visible. Label is part of the wire representation for
// standard nodes only.
type nodeProps struct {
	Type    string
	Label   string
	Enabled bool
	Visible bool
	Toggle  *nodeToggle
}

// variants serializes the properties present on the node, filtered to the
// requested names. An empty filter means all properties.
func (p nodeProps) variants(names []string) map[string]dbus.Variant {
	out := make(map[string]dbus.Variant)

	put := func(name string, v any) {
		if len(names) == 0 || slices.Contains(names, name) {
			out[name] = dbus.MakeVariant(v)
		}
	}

	if p.Type != "" {
		put("type", p.Type)
	}

	if p.Type == menuTypeStandard {
		put("label", p.Label)
	}

	put("enabled", p.Enabled)
	put("visible", p.Visible)

	if p.Toggle != nil {
		put("toggle-type", p.Toggle.Type)
		put("toggle-state", p.Toggle.State)
	}

	return out
}

// lookup returns the value of a single property, reporting whether the
// node carries it at all.
func (p nodeProps) lookup(name string) (any, bool) {
	switch name {
	case "type":
		if p.Type != "" {
			return p.Type, true
		}
	case "label":
		if p.Type == menuTypeStandard {
			return p.Label, true
		}
	case "enabled":
		return p.Enabled, true
	case "visible":
		return p.Visible, true
	case "toggle-type":
		if p.Toggle != nil {
			return p.Toggle.Type, true
		}
	case "toggle-state":
		if p.Toggle != nil {
			return p.Toggle.State, true
		}
	}

	return nil, false
}

// menuNode is a single addressable node of the menu tree.
//
// The numeric id is assigned by the engine in traversal order and is not
// stable across republishes. userID holds the caller-assigned id of the
// [Submenu] the node was built from and is the only identity reported
// back to the caller.
type menuNode struct {
	id       int32
	userID   string
	props    nodeProps
	children []int32
}

// menuTree is the addressable node graph built from a caller's menu. The
// implicit root has id 0. A tree is never mutated once built; publishes
// swap in a whole new tree.
type menuTree struct {
	nodes map[int32]*menuNode
}

// newMenuTree returns a tree holding only the root node. Some hosts treat
// missing properties as false, so the root is explicitly enabled and
// visible.
func newMenuTree() *menuTree {
	return &menuTree{
		nodes: map[int32]*menuNode{
			0: {props: nodeProps{Enabled: true, Visible: true}},
		},
	}
}

// buildMenuTree converts an ordered list of menu entries into a node
// graph. Numeric ids are assigned by a pre-order depth-first walk starting
// at 1, so the same input always yields the same id assignment.
func buildMenuTree(items []MenuItem) *menuTree {
	t := newMenuTree()

	next := int32(1)
	for _, item := range items {
		next = t.insert(0, item, next)
	}

	return t
}

// insert adds item under parentID using nextID as the next free numeric
// id and returns the id following the inserted subtree.
func (t *menuTree) insert(parentID int32, item MenuItem, nextID int32) int32 {
	switch it := item.(type) {
	case Separator:
		t.attach(parentID, &menuNode{
			id: nextID,
			props: nodeProps{
				Type:    menuTypeSeparator,
				Label:   it.Label,
				Enabled: true,
				Visible: true,
			},
		})
		return nextID + 1

	case Submenu:
		node := &menuNode{
			id:     nextID,
			userID: it.ID,
			props: nodeProps{
				Type:    menuTypeStandard,
				Label:   it.Label,
				Enabled: true,
				Visible: true,
			},
		}

		if it.Toggle != nil {
			toggle := &nodeToggle{Type: toggleTypeCheckmark}
			if it.Toggle.Kind == ToggleRadio {
				toggle.Type = toggleTypeRadio
			}
			if it.Toggle.Checked {
				toggle.State = 1
			}
			node.props.Toggle = toggle
		}

		t.attach(parentID, node)

		nextID++
		for _, child := range it.Children {
			nextID = t.insert(node.id, child, nextID)
		}
		return nextID
	}

	return nextID
}

func (t *menuTree) attach(parentID int32, node *menuNode) {
	t.nodes[node.id] = node
	if parent, ok := t.nodes[parentID]; ok {
		parent.children = append(parent.children, node.id)
	}
}

// userID resolves the caller-assigned id of a node. Separators and the
// root carry no caller id.
func (t *menuTree) userID(id int32) (string, bool) {
	node, ok := t.nodes[id]
	if !ok || node.userID == "" {
		return "", false
	}

	return node.userID, true
}

// layoutNode is the wire representation of a menu layout subtree. It
// marshals as (ia{sv}av), the shape com.canonical.dbusmenu.GetLayout
// returns.
type layoutNode struct {
	ID         int32
	Properties map[string]dbus.Variant
	Children   []dbus.Variant
}

// layout serializes the subtree rooted at parentID.
//
// An unknown parentID yields an empty stub with that id rather than an
// error; hosts may query stale ids right after a republish. A depth of -1
// means unlimited recursion, since each recursive call only stops at
// exactly 0. Children are serialized in insertion order.
func (t *menuTree) layout(parentID, depth int32, names []string) layoutNode {
	node, ok := t.nodes[parentID]
	if !ok {
		return layoutNode{
			ID:         parentID,
			Properties: map[string]dbus.Variant{},
			Children:   []dbus.Variant{},
		}
	}

	out := layoutNode{
		ID:         node.id,
		Properties: node.props.variants(names),
		Children:   []dbus.Variant{},
	}

	if len(node.children) > 0 && depth != 0 {
		out.Properties["children-display"] = dbus.MakeVariant("submenu")

		for _, child := range node.children {
			out.Children = append(out.Children, dbus.MakeVariant(t.layout(child, depth-1, names)))
		}
	}

	return out
}
