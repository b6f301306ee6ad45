package tray

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"go.uber.org/zap"
)

const (
	StatusNotifierWatcherInterface = "org.kde.StatusNotifierWatcher"
	StatusNotifierWatcherPath      = "/StatusNotifierWatcher"
)

const (
	defaultItemID   = "go-tray"
	defaultIconName = "application-x-executable"
)

// ErrAlreadyStarted is returned by [Tray.Start] when the tray service was
// already registered on the bus.
var ErrAlreadyStarted = errors.New("tray already started")

// busSerial distinguishes bus names of multiple trays in one process.
var busSerial atomic.Int64

// nextBusName returns a well-known name in the conventional
// org.kde.StatusNotifierItem-<pid>-<ordinal> form hosts pattern-match.
func nextBusName() string {
	return fmt.Sprintf("org.kde.StatusNotifierItem-%d-%d", os.Getpid(), busSerial.Add(1))
}

// update is the internal form of a published [Item]: denormalized fields
// plus a freshly built menu tree, ready to swap into service state.
type update struct {
	visible     bool
	title       string
	tooltip     string
	description string
	iconName    string
	pixmaps     []pixmap
	menu        *menuTree
}

// serviceState is the lock-protected snapshot the bus objects answer
// queries from. The lock is held only to read or swap fields, never
// across an emission or any other blocking call.
type serviceState struct {
	mu sync.Mutex
	up update
}

func newServiceState() *serviceState {
	return &serviceState{up: update{menu: newMenuTree(), iconName: defaultIconName}}
}

// apply atomically replaces the state with a new publish.
func (s *serviceState) apply(u update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.up = u
}

// snapshot returns a self-consistent copy of the state. The pixmap slice
// and menu tree are shared but never mutated after a publish builds them.
func (s *serviceState) snapshot() update {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.up
}

// menuSnapshot returns the current menu tree.
func (s *serviceState) menuSnapshot() *menuTree {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.up.menu
}

// Option configures a [Tray].
type Option func(*Tray)

// WithLogger sets the logger used for best-effort paths. The default
// discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tray) { t.logger = logger }
}

// WithID sets the Id property of the item, a stable identifier for the
// application such as its name.
func WithID(id string) Option {
	return func(t *Tray) { t.id = id }
}

// WithFallbackIcon sets the theme icon advertised for hosts that ignore
// IconPixmap, used when the item carries no [IconName] of its own.
func WithFallbackIcon(name string) Option {
	return func(t *Tray) { t.fallbackIcon = name }
}

// WithActivationEvents replaces the set of menu event ids treated as an
// activation. Matching is case-insensitive. See [DefaultActivationEvents].
func WithActivationEvents(ids ...string) Option {
	return func(t *Tray) { t.activation = activationSet(ids) }
}

// WithConn makes the tray use an existing bus connection instead of
// opening a session bus connection of its own. The caller keeps ownership
// of the connection.
func WithConn(conn *dbus.Conn) Option {
	return func(t *Tray) {
		t.conn = conn
		t.ownConn = false
	}
}

func activationSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[normalizeEventID(id)] = struct{}{}
	}

	return set
}

// Tray publishes a single tray item and its menu on the session bus and
// reports user interactions on its event channel. Independent instances
// are fully isolated; each owns its own bus identity.
type Tray struct {
	mu      sync.Mutex
	started bool
	closed  bool

	id           string
	fallbackIcon string
	activation   map[string]struct{}
	logger       *zap.Logger

	conn    *dbus.Conn
	ownConn bool
	busName string
	props   *prop.Properties

	state    *serviceState
	revision atomic.Uint32
	updates  *queue[update]
	fanin    *queue[rawEvent]
	events   *queue[Event]
	done     chan struct{}
}

// New returns an unstarted tray engine.
func New(opts ...Option) *Tray {
	t := &Tray{
		id:           defaultItemID,
		fallbackIcon: defaultIconName,
		activation:   activationSet(DefaultActivationEvents),
		logger:       zap.NewNop(),
		ownConn:      true,
		state:        newServiceState(),
		updates:      newQueue[update](),
		fanin:        newQueue[rawEvent](),
		events:       newQueue[Event](),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Events returns the channel user interactions are delivered on. The
// channel is closed after [Tray.Close]; callers should drain it until
// then. See [Dispatcher] for handing events off to an application event
// loop.
func (t *Tray) Events() <-chan Event {
	return t.events.out
}

// Start connects to the session bus, registers the item and menu objects,
// and publishes the initial state of item. It fails with
// [ErrAlreadyStarted] on a second call.
//
// Registration with the desktop's tray watcher is best-effort: many
// desktop environments run no watcher at all, and the item stays
// registered on the bus regardless.
func (t *Tray) Start(item *Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return ErrAlreadyStarted
	}

	if t.closed {
		return fmt.Errorf("start: tray is closed")
	}

	// Decode the icon before touching the bus so a malformed payload
	// fails the call without leaving a half-registered service.
	u, err := t.buildUpdate(item)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	conn := t.conn
	if conn == nil {
		conn, err = dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("start: failed to connect to session bus: %w", err)
		}
	}

	name := nextBusName()

	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		t.closeConn(conn)
		return fmt.Errorf("start: failed to request name %s: %w", name, err)
	}

	if reply != dbus.RequestNameReplyPrimaryOwner {
		t.closeConn(conn)
		return fmt.Errorf("start: name %s already taken", name)
	}

	// Seed state before exporting so hosts that query between export and
	// the first publish already see the real item.
	t.state.apply(u)

	if err := t.export(conn, u); err != nil {
		conn.ReleaseName(name)
		t.closeConn(conn)
		return fmt.Errorf("start: %w", err)
	}

	t.conn = conn
	t.busName = name
	t.started = true

	if err := registerWithWatcher(conn, name); err != nil {
		t.logger.Debug("tray watcher registration failed", zap.Error(err))
	}

	go t.run()

	// The initial state goes through the update queue like any Sync, so
	// the first publish bumps the revision and fires the same signals as
	// a republish.
	t.updates.push(u)

	return nil
}

// Sync republishes item, replacing the menu tree and all denormalized
// fields. It is safe to call from any goroutine. Calling Sync on a nil or
// never-started tray is a successful no-op.
func (t *Tray) Sync(item *Item) error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.closed {
		return nil
	}

	u, err := t.buildUpdate(item)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	t.updates.push(u)

	return nil
}

// Close releases the bus name, stops the synchronization loop, and closes
// the event channel. The tray cannot be reused after Close.
func (t *Tray) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if !t.started {
		t.updates.close()
		t.fanin.close()
		t.events.close()
		return nil
	}

	var err error
	if _, rerr := t.conn.ReleaseName(t.busName); rerr != nil {
		err = rerr
	}

	t.updates.close()
	t.fanin.close()
	<-t.done

	if t.ownConn {
		if cerr := t.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// buildUpdate converts a caller item into internal state, building the
// menu tree and icon payload.
func (t *Tray) buildUpdate(item *Item) (update, error) {
	u := update{
		visible:     item.Visible,
		title:       item.Title,
		tooltip:     item.Tooltip,
		description: item.Description,
		iconName:    t.fallbackIcon,
		menu:        buildMenuTree(item.Menu),
	}

	switch icon := item.Icon.(type) {
	case IconName:
		if icon != "" {
			u.iconName = string(icon)
		}
	case IconImage:
		pixmaps, err := buildPixmaps(icon)
		if err != nil {
			return update{}, fmt.Errorf("failed to build icon payload: %w", err)
		}
		u.pixmaps = pixmaps
	}

	return u, nil
}

// itemObject returns the object served at /StatusNotifierItem.
func (t *Tray) itemObject() *statusNotifierItem {
	return &statusNotifierItem{events: t.fanin}
}

// menuObject returns the object served at /MenuBar.
func (t *Tray) menuObject() *dbusMenu {
	return &dbusMenu{
		state:      t.state,
		revision:   t.revision.Load,
		events:     t.fanin,
		activation: t.activation,
	}
}

// export registers both service objects, their properties, and their
// introspection data on conn.
func (t *Tray) export(conn *dbus.Conn, u update) error {
	if err := conn.Export(t.itemObject(), StatusNotifierItemPath, StatusNotifierItemInterface); err != nil {
		return fmt.Errorf("failed to export %s: %w", StatusNotifierItemInterface, err)
	}

	if err := conn.Export(
		introspect.NewIntrospectable(itemIntrospection),
		StatusNotifierItemPath,
		"org.freedesktop.DBus.Introspectable",
	); err != nil {
		return fmt.Errorf("failed to export item introspection: %w", err)
	}

	props, err := prop.Export(conn, StatusNotifierItemPath, prop.Map{
		StatusNotifierItemInterface: itemProps(t.id, u),
	})
	if err != nil {
		return fmt.Errorf("failed to export item properties: %w", err)
	}
	t.props = props

	if err := conn.Export(t.menuObject(), MenuPath, MenuInterface); err != nil {
		return fmt.Errorf("failed to export %s: %w", MenuInterface, err)
	}

	if err := conn.Export(
		introspect.NewIntrospectable(menuIntrospection),
		MenuPath,
		"org.freedesktop.DBus.Introspectable",
	); err != nil {
		return fmt.Errorf("failed to export menu introspection: %w", err)
	}

	if _, err := prop.Export(conn, MenuPath, prop.Map{
		MenuInterface: menuProps(),
	}); err != nil {
		return fmt.Errorf("failed to export menu properties: %w", err)
	}

	return nil
}

func (t *Tray) closeConn(conn *dbus.Conn) {
	if t.ownConn {
		conn.Close()
	}
}

// run is the synchronization loop: a single goroutine that drains the
// update queue into service state and the event fan-in into the outbound
// event channel. It exits once both queues are closed.
func (t *Tray) run() {
	defer close(t.done)
	defer t.events.close()

	updates := t.updates.out
	raws := t.fanin.out

	for updates != nil || raws != nil {
		select {
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			t.publish(u)

		case raw, ok := <-raws:
			if !ok {
				raws = nil
				continue
			}
			if ev := raw.normalize(); ev != nil {
				t.events.push(ev)
			}
		}
	}
}

// publish swaps in new state, bumps the revision, and notifies hosts. The
// revision reported by LayoutUpdated is captured from the same increment,
// so delivered revisions are monotone.
func (t *Tray) publish(u update) {
	t.state.apply(u)
	rev := t.revision.Add(1)
	t.notifyPublished(u, rev)
}

// notifyPublished refreshes the property cache and fires the change
// signals. Emission is fire-and-forget; hosts re-query properties on
// their own schedule.
func (t *Tray) notifyPublished(u update, rev uint32) {
	if t.conn == nil || t.props == nil {
		return
	}

	t.props.SetMust(StatusNotifierItemInterface, "Title", u.title)
	t.props.SetMust(StatusNotifierItemInterface, "Status", string(statusFor(u.visible)))
	t.props.SetMust(StatusNotifierItemInterface, "IconName", u.iconName)
	t.props.SetMust(StatusNotifierItemInterface, "IconPixmap", u.pixmaps)
	t.props.SetMust(StatusNotifierItemInterface, "ToolTip", tooltip{
		IconPixmap:  u.pixmaps,
		Title:       u.tooltip,
		Description: u.description,
	})

	emit := func(name string, values ...any) {
		if err := t.conn.Emit(dbus.ObjectPath(StatusNotifierItemPath), StatusNotifierItemInterface+"."+name, values...); err != nil {
			t.logger.Debug("tray signal emission failed", zap.String("signal", name), zap.Error(err))
		}
	}

	emit("NewTitle")
	emit("NewIcon")
	emit("NewToolTip")
	emit("NewStatus", string(statusFor(u.visible)))
	emit("NewMenu")

	if err := t.conn.Emit(dbus.ObjectPath(MenuPath), MenuInterface+".LayoutUpdated", rev, int32(0)); err != nil {
		t.logger.Debug("tray signal emission failed", zap.String("signal", "LayoutUpdated"), zap.Error(err))
	}
}

// registerWithWatcher announces the service to the desktop's tray
// watcher.
func registerWithWatcher(conn *dbus.Conn, name string) error {
	call := conn.Object(StatusNotifierWatcherInterface, StatusNotifierWatcherPath).Call(
		StatusNotifierWatcherInterface+".RegisterStatusNotifierItem",
		0,
		name,
	)

	return call.Err
}
