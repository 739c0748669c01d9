// Package panichandler recovers panics, records them in the panic log and
// keeps the console running.
package panichandler

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mobcash/backoffice/app/paniclogger"
)

// Recover logs a panic with its stack trace.
// Usage: defer panichandler.Recover("context")
func Recover(context string) {
	if r := recover(); r != nil {
		Report(context, r, debug.Stack())
	}
}

// RecoverWithCallback is Recover followed by callback, which runs only when a
// panic was caught.
func RecoverWithCallback(context string, callback func()) {
	if r := recover(); r != nil {
		Report(context, r, debug.Stack())
		runCallback(context, callback)
	}
}

// Report records an already recovered panic. Its signature matches the
// query cache panic hook.
func Report(context string, recovered any, stack []byte) {
	paniclogger.LogPanic(context, recovered, string(stack))

	slog.Error("caught panic",
		slog.String("context", context),
		slog.Any("error", recovered),
		slog.String("stack", string(stack)),
	)
}

// SafeGo runs fn in a goroutine. A panic in fn is logged and does not
// bring the process down.
func SafeGo(context string, fn func()) {
	SafeGoWithCallback(context, fn, nil)
}

// SafeGoWithCallback is SafeGo with a callback that runs only after a panic.
func SafeGoWithCallback(context string, fn func(), callback func()) {
	go func() {
		defer RecoverWithCallback(fmt.Sprintf("goroutine: %s", context), callback)
		fn()
	}()
}

func runCallback(context string, callback func()) {
	if callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in panic callback",
				slog.String("original_context", context),
				slog.Any("callback_error", r),
			)
		}
	}()
	callback()
}
