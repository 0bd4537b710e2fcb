package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики движка выполнения. Регистрируются в default registry,
// наружу отдаются через promhttp.Handler на /metrics.
var (
	// ExecutionsStarted — количество запущенных executions.
	ExecutionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civils_executions_started_total",
		Help: "Total number of workflow executions started",
	})

	// ExecutionsCompleted — количество успешно завершённых executions.
	ExecutionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civils_executions_completed_total",
		Help: "Total number of workflow executions completed successfully",
	})

	// ExecutionsFailed — количество упавших executions,
	// включая внутренние сбои до первого task.
	ExecutionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civils_executions_failed_total",
		Help: "Total number of workflow executions failed",
	})

	// TasksExecuted — количество выполненных tasks
	// по режиму (sync/async) и результату (success/failure).
	TasksExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civils_tasks_executed_total",
		Help: "Total number of tasks executed by mode and result",
	}, []string{"mode", "result"})
)
