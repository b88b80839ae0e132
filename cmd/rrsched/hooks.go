package main

import (
	"log/slog"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/schedule"
)

// logHook reports every scheduling decision at debug level.
type logHook struct {
	logger *slog.Logger
}

func (h logHook) OnResume(e schedule.Entry) {
	h.logger.Debug("resumed", "program", e.Name, "pid", e.PID, "turn", e.Status.Turns)
}

func (h logHook) OnSuspend(e schedule.Entry) {
	h.logger.Debug("suspended", "program", e.Name, "pid", e.PID)
}

func (h logHook) OnExit(e schedule.Entry) {
	h.logger.Debug("reaped", "program", e.Name, "pid", e.PID, "result", result(e))
}
