// Package battery runs scripted question suites through the agent and
// reports which answers contain the expected content.
package battery

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semfibo/agent"
)

//go:embed default.yaml
var defaultSuite []byte

// MultiStep is the expected function of cases that should be planned as a
// multi-step sequence.
const MultiStep = "multi_step"

// Case is one scripted question.
type Case struct {
	Name              string   `yaml:"name"`
	Query             string   `yaml:"query"`
	ExpectedFunction  string   `yaml:"expected_function,omitempty"`
	ExpectedArguments []string `yaml:"expected_arguments,omitempty"`
	ShouldContain     []string `yaml:"should_contain,omitempty"`
	ShouldNotContain  []string `yaml:"should_not_contain,omitempty"`
	Category          string   `yaml:"category,omitempty"`
}

// Suite is an ordered list of cases.
type Suite struct {
	Cases []Case `yaml:"cases"`
}

// Parse decodes a YAML suite. Cases without a category are "general".
func Parse(data []byte) (Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Suite{}, fmt.Errorf("parse suite: %w", err)
	}
	for i := range s.Cases {
		c := &s.Cases[i]
		if strings.TrimSpace(c.Query) == "" {
			return Suite{}, fmt.Errorf("parse suite: case %d (%s) has no query", i+1, c.Name)
		}
		if c.Name == "" {
			c.Name = c.Query
		}
		if c.Category == "" {
			c.Category = "general"
		}
	}
	return s, nil
}

// LoadFile reads a YAML suite from disk.
func LoadFile(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("read suite: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in suite.
func Default() Suite {
	s, err := Parse(defaultSuite)
	if err != nil {
		panic(err)
	}
	return s
}

// Categories returns the distinct categories with their case counts.
func (s Suite) Categories() map[string]int {
	out := make(map[string]int)
	for _, c := range s.Cases {
		out[c.Category]++
	}
	return out
}

// Filter keeps the cases in any of the given categories. No categories keeps
// every case.
func (s Suite) Filter(categories ...string) Suite {
	if len(categories) == 0 {
		return s
	}
	var out Suite
	for _, c := range s.Cases {
		if slices.Contains(categories, c.Category) {
			out.Cases = append(out.Cases, c)
		}
	}
	return out
}

// Head keeps the first n cases.
func (s Suite) Head(n int) Suite {
	if n < 0 || n >= len(s.Cases) {
		return s
	}
	return Suite{Cases: s.Cases[:n]}
}

// Answerer answers one question.
type Answerer interface {
	Answer(ctx context.Context, question string) agent.Answer
}

// Result is the outcome of one case.
type Result struct {
	Case     Case
	Passed   bool
	Response string
	Duration time.Duration
	Error    string

	// PlanMatched reports whether the planner chose the expected function
	// and arguments. It only fails the case in strict mode.
	PlanMatched bool
}

// Runner executes suites.
type Runner struct {
	answerer Answerer
	strict   bool
	progress func(Result)
}

// Option configures a Runner.
type Option func(*Runner)

// WithStrictPlans fails cases whose plan differs from the expected function
// or arguments, even when the answer content matches.
func WithStrictPlans(strict bool) Option {
	return func(r *Runner) {
		r.strict = strict
	}
}

// WithProgress calls fn after each case.
func WithProgress(fn func(Result)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a runner.
func NewRunner(a Answerer, opts ...Option) *Runner {
	r := &Runner{answerer: a}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every case in order. Cancelling ctx stops before the next
// case and returns the partial report.
func (r *Runner) Run(ctx context.Context, s Suite) Report {
	var results []Result
	for _, c := range s.Cases {
		if ctx.Err() != nil {
			break
		}
		res := r.runCase(ctx, c)
		if r.progress != nil {
			r.progress(res)
		}
		results = append(results, res)
	}
	return NewReport(results)
}

func (r *Runner) runCase(ctx context.Context, c Case) Result {
	start := time.Now()
	ans := r.answerer.Answer(ctx, c.Query)
	res := Result{
		Case:        c,
		Response:    ans.Text,
		Duration:    time.Since(start),
		Passed:      true,
		PlanMatched: planMatches(c, ans),
	}

	lower := strings.ToLower(ans.Text)
	for _, want := range c.ShouldContain {
		if !strings.Contains(lower, strings.ToLower(want)) {
			return res.fail(fmt.Sprintf("Missing expected content: '%s'", want))
		}
	}
	for _, bad := range c.ShouldNotContain {
		if strings.Contains(lower, strings.ToLower(bad)) {
			return res.fail(fmt.Sprintf("Contains forbidden content: '%s'", bad))
		}
	}
	if r.strict && !res.PlanMatched {
		return res.fail(fmt.Sprintf("Planned %s%v, expected %s%v",
			planned(ans), ans.Arguments, c.ExpectedFunction, c.ExpectedArguments))
	}
	return res
}

func (r Result) fail(msg string) Result {
	r.Passed = false
	r.Error = msg
	return r
}

func planned(ans agent.Answer) string {
	if ans.Route == agent.RouteMultiStep {
		return MultiStep
	}
	return ans.Function
}

// planMatches compares the plan with the expectation. Multi-step cases only
// check the route; their argument lists are labels, not plan arguments.
// Arguments compare case-insensitively.
func planMatches(c Case, ans agent.Answer) bool {
	if c.ExpectedFunction == "" {
		return true
	}
	if c.ExpectedFunction == MultiStep {
		return ans.Route == agent.RouteMultiStep
	}
	if ans.Function != c.ExpectedFunction {
		return false
	}
	if len(ans.Arguments) < len(c.ExpectedArguments) {
		return false
	}
	for i, want := range c.ExpectedArguments {
		if !strings.EqualFold(strings.TrimSpace(ans.Arguments[i]), want) {
			return false
		}
	}
	return true
}
