// Package tray is a toolkit-agnostic implementation of the application
// side of the [StatusNotifierItem] specification. It lets a process own a
// system tray icon with a context menu by publishing the item and its
// menu as D-Bus services on the session bus. This package does not
// provide capabilities for building system trays themselves (hosts).
//
// # Usage
//
// A [Tray] owns one bus identity serving two objects:
//   - org.kde.StatusNotifierItem at /StatusNotifierItem describes the
//     icon, title, tooltip, and status, and receives activation and
//     scroll requests.
//   - com.canonical.dbusmenu at /MenuBar serves the context menu layout
//     and receives click events.
//
// The desired state is described declaratively with an [Item] and
// published with [Tray.Start]; every subsequent [Tray.Sync] republishes a
// new item wholesale. User interactions arrive as [Event] values on
// [Tray.Events]; [Dispatcher] hands them off to the application's own
// event loop.
//
// Menu entries are identified by caller-assigned string ids, which are
// the only identity reported back in [MenuClickEvent] and remain stable
// across republishes.
//
// [StatusNotifierItem]: https://www.freedesktop.org/wiki/Specifications/StatusNotifierItem/
package tray
