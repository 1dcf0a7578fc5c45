// Package metrics expone contadores Prometheus del ledger: movimientos confirmados
// y operaciones rechazadas por tipo de error.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.Observer = (*Recorder)(nil)

const namespace = "stock_ledger"

// Recorder implementa inventory.Observer sobre un registro Prometheus propio.
type Recorder struct {
	registry  *prometheus.Registry
	movements *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewRecorder crea el registro con los contadores del ledger y los colectores de proceso y runtime.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Movimientos confirmados por tipo.",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_rejected_total",
			Help:      "Operaciones rechazadas por operación y tipo de error.",
		}, []string{"op", "kind"}),
	}
	r.registry.MustRegister(
		r.movements,
		r.rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// MovementsRecorded suma n movimientos del tipo t.
func (r *Recorder) MovementsRecorded(t entity.MovementType, n int) {
	r.movements.WithLabelValues(string(t)).Add(float64(n))
}

// OperationRejected cuenta un rechazo. Los errores sin Kind cuentan como INTERNAL.
func (r *Recorder) OperationRejected(op string, err error) {
	r.rejected.WithLabelValues(op, domain.KindOf(err).String()).Inc()
}

// Registry devuelve el registro (tests y colectores adicionales).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler sirve el formato de exposición de Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
