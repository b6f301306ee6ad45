package tray

// Icon is the visual representation of a tray item. It is either a themed
// icon reference ([IconName]) or a raw image ([IconImage]).
type Icon interface {
	isIcon()
}

// IconName is a [Freedesktop-compliant] icon name resolved against the
// host's icon theme.
//
// [Freedesktop-compliant]: https://specifications.freedesktop.org/icon-naming-spec/latest/
type IconName string

func (IconName) isIcon() {}

// IconImage is a raw RGBA32 image: 4 bytes per pixel in R, G, B, A order,
// rows top to bottom. Bytes must hold exactly Width*Height*4 bytes.
type IconImage struct {
	Width  int
	Height int
	Bytes  []byte
}

func (IconImage) isIcon() {}

// ToggleKind describes the toggle behavior of a menu entry.
type ToggleKind int

const (
	// ToggleCheckbox renders the entry with an independent check mark.
	ToggleCheckbox ToggleKind = iota

	// ToggleRadio renders the entry as part of a mutually exclusive group.
	ToggleRadio
)

// Toggle is an optional toggle descriptor of a [Submenu] entry.
type Toggle struct {
	Kind    ToggleKind
	Checked bool
}

// MenuItem is a single entry of a tray context menu. It is either a
// [Separator] or a [Submenu].
type MenuItem interface {
	isMenuItem()
}

// Separator is a horizontal rule between menu entries. The optional label
// is kept on the model but is not part of the wire representation.
type Separator struct {
	Label string
}

func (Separator) isMenuItem() {}

// Submenu is a selectable menu entry, optionally carrying a toggle
// descriptor and nested children.
//
// ID is an opaque caller-assigned string and is the only menu identity
// reported back in events. It stays stable across republishes as long as
// the caller reuses the same string.
type Submenu struct {
	ID       string
	Label    string
	Toggle   *Toggle
	Children []MenuItem
}

func (Submenu) isMenuItem() {}

// NewSeparator returns an unlabeled separator.
func NewSeparator() MenuItem {
	return Separator{}
}

// NewLabeledSeparator returns a separator with a label.
func NewLabeledSeparator(label string) MenuItem {
	return Separator{Label: label}
}

// NewSubmenu returns a plain menu entry with the given children.
func NewSubmenu(id, label string, children ...MenuItem) MenuItem {
	return Submenu{ID: id, Label: label, Children: children}
}

// NewCheckbox returns a menu entry with a check mark.
func NewCheckbox(id, label string, checked bool) MenuItem {
	return Submenu{
		ID:     id,
		Label:  label,
		Toggle: &Toggle{Kind: ToggleCheckbox, Checked: checked},
	}
}

// NewRadio returns a menu entry that is part of a radio group.
func NewRadio(id, label string, checked bool) MenuItem {
	return Submenu{
		ID:     id,
		Label:  label,
		Toggle: &Toggle{Kind: ToggleRadio, Checked: checked},
	}
}

// Item describes the desired state of the tray icon and its context menu.
//
// Item is a value: the engine copies everything it needs on publish and
// never mutates or retains the caller's menu slice.
type Item struct {
	// Whether the item should be shown by the host. Hidden items stay
	// registered with status "Passive".
	Visible bool

	// Icon of the item. May be nil, in which case only the fallback
	// theme icon is advertised.
	Icon Icon

	// Name that describes the application.
	Title string

	// Short text shown in the tooltip.
	Tooltip string

	// Extra descriptive text shown in the tooltip.
	Description string

	// Ordered entries of the context menu.
	Menu []MenuItem
}

// NewItem returns a visible item with no icon and an empty menu.
func NewItem() *Item {
	return &Item{Visible: true}
}
