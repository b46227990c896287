package admin

import applog "storefront/internal/log"

// LogNotifier reports action outcomes as log entries.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) {
	applog.Info(nil, "notify.success", map[string]any{"message": msg})
}

func (LogNotifier) Error(msg string) {
	applog.Error(nil, "notify.error", nil, map[string]any{"message": msg})
}
