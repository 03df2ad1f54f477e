// Package agent answers free-text questions end to end. Module-set requests
// ("switch to banking", "available modules", "compare modules") are handled
// locally; everything else goes to the planner, whose plan is parsed and
// dispatched. Every outcome, including failures, is returned as text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semfibo/audit"
	"github.com/c360studio/semfibo/dispatch"
	"github.com/c360studio/semfibo/llm"
	"github.com/c360studio/semfibo/metric"
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/planner"
)

// Routes an answer can take.
const (
	RouteModuleSwitch  = "module_switch"
	RouteModuleInfo    = "module_info"
	RouteModuleCompare = "module_compare"
	RoutePlan          = "plan"
	RouteMultiStep     = "multi_step"
)

// Statuses beyond the dispatcher's.
const (
	StatusLLMError    = "llm_error"
	StatusParseError  = "parse_error"
	StatusInvalidPlan = "invalid_plan"
	StatusPartial     = "partial"
	StatusError       = "error"
)

// Answer is the text shown to the user plus what produced it.
type Answer struct {
	Text      string   `json:"answer"`
	Route     string   `json:"route"`
	Status    string   `json:"status"`
	RawPlan   string   `json:"raw_plan,omitempty"`
	Function  string   `json:"function,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
}

// Planner is the part of *planner.Planner the agent uses.
type Planner interface {
	Plan(ctx context.Context, question string, multiStep bool) (string, error)
	Synthesize(ctx context.Context, instruction string, results []planner.StepResult) (string, error)
}

// Agent wires the store, planner and dispatcher together.
type Agent struct {
	store      *ontology.Store
	planner    Planner
	dispatcher *dispatch.Dispatcher
	recorder   *audit.Recorder
	metrics    *metric.Metrics
	logger     *slog.Logger
	multiStep  bool
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithRecorder writes an audit entry per question.
func WithRecorder(r *audit.Recorder) Option {
	return func(a *Agent) {
		a.recorder = r
	}
}

// WithMetrics counts questions by route and status.
func WithMetrics(m *metric.Metrics) Option {
	return func(a *Agent) {
		a.metrics = m
	}
}

// WithMultiStep enables or disables multi-step planning for complex
// questions. It is enabled by default.
func WithMultiStep(enabled bool) Option {
	return func(a *Agent) {
		a.multiStep = enabled
	}
}

// New creates an agent.
func New(store *ontology.Store, p Planner, d *dispatch.Dispatcher, opts ...Option) *Agent {
	a := &Agent{
		store:      store,
		planner:    p,
		dispatcher: d,
		logger:     slog.Default(),
		multiStep:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers a question and returns the text.
func (a *Agent) Ask(ctx context.Context, question string) string {
	return a.Answer(ctx, question).Text
}

// Answer answers a question, recording it when auditing is enabled.
func (a *Agent) Answer(ctx context.Context, question string) Answer {
	start := time.Now()
	question = strings.TrimSpace(question)

	ans := a.answer(ctx, question)

	a.metrics.RecordQuestion(ans.Route, ans.Status)
	a.recorder.Record(ctx, audit.Entry{
		Question:   question,
		Route:      ans.Route,
		RawPlan:    ans.RawPlan,
		Function:   ans.Function,
		Arguments:  ans.Arguments,
		Output:     ans.Text,
		Status:     ans.Status,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return ans
}

func (a *Agent) answer(ctx context.Context, question string) Answer {
	if question == "" {
		return Answer{Text: "Please ask a question.", Route: RoutePlan, Status: dispatch.StatusBadRequest}
	}
	if ans, ok := a.moduleRequest(ctx, question); ok {
		return ans
	}
	return a.plan(ctx, question)
}

func (a *Agent) plan(ctx context.Context, question string) Answer {
	multi := a.multiStep && planner.IsComplexQuery(question)
	route := RoutePlan
	if multi {
		route = RouteMultiStep
	}
	a.logger.Debug("Planning question", "question", question, "multi_step", multi)

	raw, err := a.planner.Plan(ctx, question, multi)
	if err != nil {
		a.logger.Warn("Planner call failed", "error", err)
		return Answer{Text: llm.Describe(err), Route: route, Status: StatusLLMError}
	}

	parsed, err := planner.Parse(raw)
	if err != nil {
		status := StatusInvalidPlan
		var pe *planner.ParseError
		if errors.As(err, &pe) {
			status = StatusParseError
		}
		return Answer{Text: err.Error(), Route: route, Status: status, RawPlan: raw}
	}

	if !parsed.MultiStep() {
		res := a.dispatcher.Execute(ctx, *parsed.Single)
		return Answer{
			Text:      res.Output,
			Route:     RoutePlan,
			Status:    res.Status,
			RawPlan:   raw,
			Function:  res.Function,
			Arguments: res.Arguments,
		}
	}

	text, status := a.runSteps(ctx, parsed.Steps)
	return Answer{Text: text, Route: RouteMultiStep, Status: status, RawPlan: raw}
}

// runSteps executes every call in order, runs the analysis step over the
// results collected so far, and lays the results out one block per call.
func (a *Agent) runSteps(ctx context.Context, steps []planner.Step) (string, string) {
	var (
		results  []planner.StepResult
		analysis string
		failed   int
	)
	for i, step := range steps {
		switch {
		case step.IsCall():
			res := a.dispatcher.Execute(ctx, step.Plan)
			if !res.OK() {
				failed++
			}
			results = append(results, planner.StepResult{Function: res.Function, Output: res.Output})

		case step.IsAnalysis():
			instruction := step.Instruction
			if strings.TrimSpace(instruction) == "" {
				instruction = "Analyze and synthesize the results"
			}
			out, err := a.planner.Synthesize(ctx, instruction, results)
			if err != nil {
				a.logger.Warn("Synthesis failed", "error", err)
				analysis = "Analysis error: " + err.Error()
			} else {
				analysis = "Analysis:\n\n" + out
			}

		default:
			a.logger.Debug("Skipping unrecognised plan step", "index", i, "step", step.Step)
		}
	}

	parts := []string{"Individual Results:\n"}
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("### %d. %s", i+1, r.Function), r.Output, "")
	}
	if analysis != "" {
		parts = append(parts, strings.Repeat("=", 60), analysis)
	}

	status := dispatch.StatusOK
	if failed > 0 {
		status = StatusPartial
	}
	return strings.Join(parts, "\n"), status
}
