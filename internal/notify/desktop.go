package notify

import (
	"github.com/gen2brain/beeep"

	"github.com/minidrive/minidrive/internal/logging"
	"github.com/minidrive/minidrive/internal/util/strings"
)

const desktopTitle = "Mini Drive"

// Desktop forwards terminal outcomes to the OS notification center via
// beeep, and passes every call through to next. Pending notices stay in next.
type Desktop struct {
	next   Notifier
	logger *logging.Logger
	notify func(title, message string) error
	alert  func(title, message string) error
}

// NewDesktop wraps next with desktop notifications.
func NewDesktop(next Notifier, logger *logging.Logger) *Desktop {
	return &Desktop{
		next:   next,
		logger: logging.OrNop(logger),
		// beeep.Notify is cross-platform:
		// - Windows: toast notifications
		// - macOS: NSUserNotificationCenter
		// - Linux: D-Bus notifications
		notify: func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:  func(title, message string) error { return beeep.Alert(title, message, "") },
	}
}

func (d *Desktop) Begin(msg string) Handle {
	return d.next.Begin(msg)
}

func (d *Desktop) Resolve(h Handle, outcome Outcome, msg string) {
	d.next.Resolve(h, outcome, msg)
	d.send(outcome, msg)
}

func (d *Desktop) Success(msg string) {
	d.next.Success(msg)
	d.send(Success, msg)
}

func (d *Desktop) Error(msg string) {
	d.next.Error(msg)
	d.send(Failure, msg)
}

func (d *Desktop) send(outcome Outcome, msg string) {
	msg = strings.Truncate(msg, 100)

	if outcome == Failure {
		// Alert is more prominent on some platforms; fall back to a regular notice
		if err := d.alert(desktopTitle, msg); err == nil {
			return
		}
	}
	if err := d.notify(desktopTitle, msg); err != nil {
		d.logger.Warn().Err(err).Str("message", msg).Msg("Failed to send desktop notification")
	}
}
