// Package metrics keeps the client's Prometheus counters. A nil *Registry
// is valid and records nothing.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Registry struct {
	registry     *prometheus.Registry
	remoteCalls  *prometheus.CounterVec
	reconciles   *prometheus.CounterVec
	dispatches   *prometheus.CounterVec
	inconsistent *prometheus.CounterVec
}

func New() *Registry {
	remote := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealwatch_remote_requests_total",
		Help: "Requests sent to the chain node, by protocol and method",
	}, []string{"protocol", "method", "outcome"})

	reconciles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealwatch_reconcile_total",
		Help: "Reconciliation runs by operation",
	}, []string{"operation", "outcome"})

	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealwatch_dispatch_total",
		Help: "Actions handed to the signer",
	}, []string{"action", "outcome"})

	inconsistent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealwatch_inconsistent_deals_total",
		Help: "Deleted deals seen without a terminal event",
	}, []string{"kind"})

	r := prometheus.NewRegistry()
	r.MustRegister(remote, reconciles, dispatches, inconsistent)

	return &Registry{
		registry:     r,
		remoteCalls:  remote,
		reconciles:   reconciles,
		dispatches:   dispatches,
		inconsistent: inconsistent,
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

func (m *Registry) Remote(protocol, method string, err error) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(protocol, method, outcome(err)).Inc()
}

func (m *Registry) Reconcile(operation string, err error) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Registry) Dispatch(action string, err error) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(action, outcome(err)).Inc()
}

func (m *Registry) Inconsistent(kind string) {
	if m == nil {
		return
	}
	m.inconsistent.WithLabelValues(kind).Inc()
}

func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteSummary prints every non-zero counter as "name{labels} value",
// sorted, for the REPL's stats command.
func (m *Registry) WriteSummary(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			v := metric.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), v))
		}
	}
	sort.Strings(lines)

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
