package tracing

import "log/slog"

// LogTracer writes the life of every task to a logger at debug level.
type LogTracer struct {
	log *slog.Logger
}

// NewLogTracer creates a LogTracer writing to logger.
func NewLogTracer(logger *slog.Logger) *LogTracer {
	return &LogTracer{log: logger}
}

// StartTask logs the task start.
func (t *LogTracer) StartTask(task Task) {
	t.log.Debug("task started",
		"id", task.ID,
		"kind", task.Kind,
		"what", task.What,
		"where", task.Where)
}

// StepTask logs the step.
func (t *LogTracer) StepTask(task Task) {
	t.log.Debug("task step", "id", task.ID, "step", task.Steps[0].What)
}

// EndTask logs the task end with its detail.
func (t *LogTracer) EndTask(task Task) {
	t.log.Debug("task ended", "id", task.ID, "detail", task.Detail)
}
