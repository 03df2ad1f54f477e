package planner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semfibo/llm"
)

// Default sampling settings.
const (
	DefaultTemperature          = 0.3
	DefaultSynthesisTemperature = 0.4
	DefaultSynthesisMaxTokens   = 1000
)

// complexIndicators mark questions that benefit from a multi-step plan.
var complexIndicators = []string{
	"compare", "analyze", "structure", "complete", "comprehensive",
	"differences", "similarities", "relationship between", "all about",
	"overview of", "breakdown", "in detail", "thorough", "full analysis",
}

// IsComplexQuery reports whether a question reads as needing several calls.
func IsComplexQuery(question string) bool {
	q := strings.ToLower(question)
	for _, ind := range complexIndicators {
		if strings.Contains(q, ind) {
			return true
		}
	}
	return false
}

// StepResult is the output of one executed call, fed to Synthesize.
type StepResult struct {
	Function string
	Output   string
}

// Observer receives the outcome and latency of each model call.
type Observer func(kind, outcome string, d time.Duration)

// Planner asks a language model for query plans.
type Planner struct {
	client      llm.Completer
	tools       []Tool
	temperature float64
	logger      *slog.Logger
	observe     Observer
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithTemperature overrides the planning temperature.
func WithTemperature(t float64) Option {
	return func(p *Planner) {
		p.temperature = t
	}
}

// WithObserver registers a latency observer, typically a metrics recorder.
func WithObserver(fn Observer) Option {
	return func(p *Planner) {
		p.observe = fn
	}
}

// New creates a planner over the given tool catalog.
func New(client llm.Completer, tools []Tool, opts ...Option) *Planner {
	p := &Planner{
		client:      client,
		tools:       tools,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tools returns the catalog the planner offers the model.
func (p *Planner) Tools() []Tool {
	return p.tools
}

// Plan asks the model for a plan and returns its raw reply. multiStep selects
// the prompt that allows call arrays and analysis steps. Errors are the llm
// client's, unwrapped, so callers can show them as they are.
func (p *Planner) Plan(ctx context.Context, question string, multiStep bool) (string, error) {
	system := SimplePrompt(p.tools)
	if multiStep {
		system = MultiStepPrompt(p.tools)
	}
	temp := p.temperature

	start := time.Now()
	resp, err := p.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: question},
		},
		Temperature: &temp,
	})
	p.record("plan", err, time.Since(start))
	if err != nil {
		return "", err
	}

	p.logger.Debug("Planner output", "multi_step", multiStep, "raw", resp.Content)
	return resp.Content, nil
}

// Synthesize asks the model to analyse the results of a multi-step plan.
func (p *Planner) Synthesize(ctx context.Context, instruction string, results []StepResult) (string, error) {
	temp := DefaultSynthesisTemperature

	start := time.Now()
	resp, err := p.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "user", Content: SynthesisPrompt(instruction, results)},
		},
		Temperature: &temp,
		MaxTokens:   DefaultSynthesisMaxTokens,
	})
	p.record("synthesis", err, time.Since(start))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

func (p *Planner) record(kind string, err error, d time.Duration) {
	if p.observe == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.observe(kind, outcome, d)
}
