// Package notify sends desktop notifications over D-Bus using the
// org.freedesktop.Notifications interface. Notifications are cosmetic
// and best-effort: every failure is logged and swallowed.
package notify

import (
	"github.com/godbus/dbus/v5"

	"github.com/yllada/wg-manager/common"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	method     = "org.freedesktop.Notifications.Notify"
)

// Notifier sends desktop notifications. The zero value is usable and
// connects lazily on first send.
type Notifier struct {
	conn *dbus.Conn
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Send displays a desktop notification. Errors are returned for
// logging only; callers are expected to ignore them.
func (n *Notifier) Send(title, body string) error {
	if n.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return common.WrapError(err, "session bus unavailable")
		}
		n.conn = conn
	}

	// Arguments per the Desktop Notifications spec: app_name,
	// replaces_id, app_icon, summary, body, actions, hints,
	// expire_timeout.
	obj := n.conn.Object(busName, dbus.ObjectPath(objectPath))
	call := obj.Call(method, 0,
		common.AppName,
		uint32(0),
		"network-vpn",
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		int32(common.NotificationExpiry.Milliseconds()),
	)
	if call.Err != nil {
		return common.WrapError(call.Err, "notification failed")
	}
	return nil
}
