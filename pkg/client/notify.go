package client

import "github.com/sirupsen/logrus"

// Notifier receives the user-visible outcome of mutations: the toast layer.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier writes notifications to the logger; the CLI uses it directly.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Success(message string) {
	n.Logger.Info(message)
}

func (n LogNotifier) Error(message string) {
	n.Logger.Error(message)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// notifyError routes a mutation failure: validation errors are rendered
// inline by the form, so they never produce the generic notification too.
func notifyError(n Notifier, err error) {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Kind == KindValidation {
		return
	}
	n.Error(err.Error())
}
