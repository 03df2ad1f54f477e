// Package dispatch executes planner output against the loaded ontology. It
// validates the function name and arguments, resolves class names, runs the
// query and classifies the outcome. Every failure is returned as text.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semfibo/metric"
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/planner"
	"github.com/c360studio/semfibo/query"
)

// Result statuses.
const (
	StatusOK          = "ok"
	StatusNotFound    = "not_found"
	StatusAmbiguous   = "ambiguous"
	StatusBadRequest  = "bad_request"
	StatusUnsupported = "unsupported"
	StatusUnavailable = "unavailable"
)

// Result is the outcome of one plan.
type Result struct {
	Function  string   `json:"function"`
	Arguments []string `json:"arguments"`
	Output    string   `json:"output"`
	Status    string   `json:"status"`
}

// OK reports whether the operation ran.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Source supplies the current graph and the module set it came from.
// *ontology.Store implements it.
type Source interface {
	Graph() *ontology.Graph
	Current() ontology.ModuleSet
}

// Dispatcher routes plans to query operations.
type Dispatcher struct {
	source  Source
	ops     map[string]operation
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics records dispatch counters and latencies.
func WithMetrics(m *metric.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a dispatcher reading graphs from source.
func New(source Source, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		source: source,
		ops:    make(map[string]operation, len(catalog)),
		logger: slog.Default(),
	}
	for _, op := range catalog {
		d.ops[op.tool.Name] = op
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tools returns the operation catalog in planner order.
func Tools() []planner.Tool {
	tools := make([]planner.Tool, len(catalog))
	for i, op := range catalog {
		tools[i] = op.tool
	}
	return tools
}

// Execute runs one plan. The graph is read once, so a concurrent reload
// never changes the ontology under a running query.
func (d *Dispatcher) Execute(ctx context.Context, plan planner.Plan) Result {
	start := time.Now()
	res := d.execute(ctx, plan)
	d.metrics.RecordDispatch(metricName(res), res.Status, time.Since(start))
	d.logger.Debug("Dispatched plan",
		"function", res.Function,
		"arguments", res.Arguments,
		"status", res.Status)
	return res
}

func (d *Dispatcher) execute(ctx context.Context, plan planner.Plan) Result {
	args := make([]string, len(plan.Arguments))
	for i, a := range plan.Arguments {
		args[i] = strings.TrimSpace(a)
	}
	res := Result{Function: plan.Function, Arguments: args}

	op, ok := d.ops[plan.Function]
	if !ok {
		return res.with(StatusUnsupported, "Unsupported function: "+plan.Function)
	}
	if n := op.tool.Required; len(args) < n || blank(args[:n]) {
		return res.with(StatusBadRequest, fmt.Sprintf("%s requires %d argument(s)", plan.Function, n))
	}
	if err := ctx.Err(); err != nil {
		return res.with(StatusUnavailable, "Request cancelled: "+err.Error())
	}

	g := d.source.Graph()
	if g == nil {
		return res.with(StatusUnavailable, "No ontology loaded.")
	}

	for i := 0; i < op.classArgs; i++ {
		canonical, err := g.ResolveClass(args[i])
		if err != nil {
			status := StatusNotFound
			if errors.Is(err, ontology.ErrAmbiguous) {
				status = StatusAmbiguous
			}
			return res.with(status, query.ResolveMessage(args[i], err))
		}
		if canonical != args[i] {
			d.logger.Debug("Resolved class name", "from", args[i], "to", canonical)
			args[i] = canonical
		}
	}

	ops := query.New(g, query.WithModuleSet(d.source.Current()))
	out, err := op.run(ops, args)
	if err != nil {
		return res.with(StatusBadRequest, err.Error())
	}
	return res.with(StatusOK, out)
}

func (r Result) with(status, output string) Result {
	r.Status = status
	r.Output = output
	return r
}

func blank(args []string) bool {
	for _, a := range args {
		if a == "" {
			return true
		}
	}
	return false
}

// metricName keeps label cardinality bounded: planner-invented names are
// counted together.
func metricName(r Result) string {
	if r.Status == StatusUnsupported {
		return "unsupported"
	}
	return r.Function
}
