// Package notify is the user-facing notification surface of the navigator.
// The repository and projection layers report outcomes through a Notifier;
// the host front end decides how to present them.
package notify

import "go.uber.org/zap"

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Notifier receives localized, human-readable notifications.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a function to the Notifier interface.
type Func func(level Level, message string)

// Notify implements Notifier.
func (f Func) Notify(level Level, message string) { f(level, message) }

// Nop returns a Notifier that discards everything.
func Nop() Notifier {
	return Func(func(Level, string) {})
}

// Zap returns a Notifier that writes notifications to a zap logger.
func Zap(log *zap.Logger) Notifier {
	return Func(func(level Level, message string) {
		switch level {
		case LevelError:
			log.Error(message)
		case LevelWarn:
			log.Warn(message)
		default:
			log.Info(message)
		}
	})
}
