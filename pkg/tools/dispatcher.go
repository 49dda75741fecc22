package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/k8s"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/metrics"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/worker"
)

// call carries the per-invocation inputs of a handler.
type call struct {
	ctx       context.Context
	client    *k8s.ClusterClient
	namespace string
}

// Dispatcher routes tool calls by name to report builders. It never fails a
// call: unknown names and errors are answered with text.
type Dispatcher struct {
	descs    []Descriptor
	byName   map[string]Descriptor
	provider *k8s.Provider
	pool     *worker.Pool
	log      *zap.SugaredLogger
}

// NewDispatcher validates descs against the handler table and returns a
// dispatcher that fetches through provider on pool.
func NewDispatcher(descs []Descriptor, provider *k8s.Provider, pool *worker.Pool, log *zap.SugaredLogger) (*Dispatcher, error) {
	if err := checkDrift(descs); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("nil client provider")
	}
	if pool == nil {
		pool = worker.New(util.DefaultWorkers)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	byName := make(map[string]Descriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}
	return &Dispatcher{
		descs:    descs,
		byName:   byName,
		provider: provider,
		pool:     pool,
		log:      log,
	}, nil
}

// Descriptors returns the exposed tools in registration order.
func (d *Dispatcher) Descriptors() []Descriptor {
	out := make([]Descriptor, len(d.descs))
	copy(out, d.descs)
	return out
}

// Has reports whether name is an exposed tool.
func (d *Dispatcher) Has(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Call runs the named tool and returns its text.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) string {
	desc, ok := d.byName[name]
	if !ok {
		metrics.ToolCallsTotal.WithLabelValues("", metrics.OutcomeUnknown).Inc()
		d.log.Warnw("unknown tool", "tool", name)
		return util.UnknownToolText(name)
	}

	var ns string
	if desc.Namespaced {
		ns = namespaceArg(args)
	}

	start := time.Now()
	var text string
	err := d.pool.Do(ctx, func(ctx context.Context) error {
		client, err := d.provider.Client()
		if err != nil {
			return err
		}
		text, err = handlers[name](d, call{ctx: ctx, client: client, namespace: ns})
		return err
	})
	elapsed := time.Since(start)
	metrics.ToolCallDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(name, metrics.OutcomeError).Inc()
		d.log.Warnw("tool call failed", "tool", name, "namespace", ns, "duration", elapsed, "error", err)
		return util.ErrorText(err)
	}
	metrics.ToolCallsTotal.WithLabelValues(name, metrics.OutcomeOK).Inc()
	d.log.Infow("tool call", "tool", name, "namespace", ns, "duration", elapsed)
	return text
}

// unavailable records data the cluster does not serve.
func (d *Dispatcher) unavailable(source string, err error) {
	metrics.DataUnavailableTotal.WithLabelValues(source).Inc()
	d.log.Debugw("data not available", "source", source, "error", err)
}

// namespaceArg extracts the optional namespace. Absent, empty or non-string
// values mean all namespaces.
func namespaceArg(args map[string]any) string {
	if v, ok := args["namespace"].(string); ok {
		return v
	}
	return ""
}
