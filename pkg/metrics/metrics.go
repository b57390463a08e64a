// Package metrics exposes Prometheus counters for workflow operations.
package metrics

import (
	"net/http"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation names recorded by WorkflowOperation.
const (
	OperationCreate  = "create"
	OperationUpdate  = "update"
	OperationDelete  = "delete"
	OperationExecute = "execute"
)

// Recorder receives workflow measurements.
type Recorder interface {
	WorkflowExecuted(status models.WorkflowStatus)
	WorkflowOperation(operation string)
}

// Metrics records into its own Prometheus registry.
type Metrics struct {
	registry   *prometheus.Registry
	executions *prometheus.CounterVec
	operations *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepflow_workflow_executions_total",
			Help: "Workflow executions by outcome",
		}, []string{"status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepflow_workflow_operations_total",
			Help: "Successful workflow mutations by operation",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.executions,
		m.operations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) WorkflowExecuted(status models.WorkflowStatus) {
	m.executions.With(prometheus.Labels{"status": string(status)}).Inc()
}

func (m *Metrics) WorkflowOperation(operation string) {
	m.operations.With(prometheus.Labels{"operation": operation}).Inc()
}

// Registry returns the registry the counters live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) WorkflowExecuted(models.WorkflowStatus) {}

func (Nop) WorkflowOperation(string) {}
