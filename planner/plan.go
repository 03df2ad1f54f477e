// Package planner turns questions into query plans with a language model and
// parses the model's JSON reply.
//
// A simple plan is one call:
//
//	{"function": "get_properties", "arguments": ["ShareholdersEquity"]}
//
// A multi-step plan is an array of calls, optionally ending in an analysis
// step whose instruction drives a synthesis over the collected results:
//
//	[
//	  {"function": "get_all_superclasses", "arguments": ["RetainedEarnings"]},
//	  {"step": "analysis", "instruction": "compare the chains"}
//	]
package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StepAnalysis marks a multi-step entry that asks for synthesis.
const StepAnalysis = "analysis"

// ErrMissingFunction is returned for a single-object plan without a function.
var ErrMissingFunction = errors.New("plan has no function")

// Plan is one operation call.
type Plan struct {
	Function  string    `json:"function"`
	Arguments Arguments `json:"arguments"`
}

// Arg returns argument i, or the empty string.
func (p Plan) Arg(i int) string {
	if i < 0 || i >= len(p.Arguments) {
		return ""
	}
	return p.Arguments[i]
}

// Arguments is a positional argument list. Models sometimes emit numbers,
// booleans or a bare string instead of an array of strings; those are
// accepted and stringified.
type Arguments []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Arguments) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*a = nil
	case []any:
		out := make(Arguments, 0, len(v))
		for i, e := range v {
			s, ok := scalar(e)
			if !ok {
				return fmt.Errorf("argument %d is not a scalar", i)
			}
			out = append(out, s)
		}
		*a = out
	default:
		s, ok := scalar(v)
		if !ok {
			return fmt.Errorf("arguments must be an array")
		}
		*a = Arguments{s}
	}
	return nil
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "", true
	}
	return "", false
}

// Step is one entry of a multi-step plan: a call, or an analysis instruction.
type Step struct {
	Plan
	Step        string `json:"step,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// IsCall reports whether the step invokes an operation.
func (s Step) IsCall() bool {
	return s.Function != ""
}

// IsAnalysis reports whether the step requests synthesis.
func (s Step) IsAnalysis() bool {
	return s.Function == "" && s.Step == StepAnalysis
}

// Parsed is a decoded planner reply: either Single or Steps is set.
type Parsed struct {
	Single *Plan
	Steps  []Step
}

// MultiStep reports whether the reply was an array.
func (p Parsed) MultiStep() bool {
	return p.Single == nil
}

// ParseError reports planner output that is not valid JSON.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "Failed to parse LLM output as JSON:\n" + e.Raw
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FormatError reports valid JSON that is not a plan.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return "Invalid plan format: " + e.Raw
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// StripFences removes markdown code-fence markers around a reply.
func StripFences(raw string) string {
	if strings.Contains(raw, "```") {
		raw = strings.ReplaceAll(raw, "```json", "")
		raw = strings.ReplaceAll(raw, "```JSON", "")
		raw = strings.ReplaceAll(raw, "```", "")
	}
	return strings.TrimSpace(raw)
}

// Parse decodes a planner reply. Code fences are stripped first; nothing
// else is repaired, so a reply with trailing commas or comments fails with a
// *ParseError carrying the text. Valid JSON that is not a plan fails with a
// *FormatError.
func Parse(raw string) (Parsed, error) {
	cleaned := StripFences(raw)
	if !json.Valid([]byte(cleaned)) {
		var probe any
		err := json.Unmarshal([]byte(cleaned), &probe)
		return Parsed{}, &ParseError{Raw: cleaned, Err: err}
	}

	switch cleaned[0] {
	case '{':
		var step Step
		if err := json.Unmarshal([]byte(cleaned), &step); err != nil {
			return Parsed{}, &FormatError{Raw: cleaned, Err: err}
		}
		if step.Function == "" {
			return Parsed{}, &FormatError{Raw: cleaned, Err: ErrMissingFunction}
		}
		return Parsed{Single: &step.Plan}, nil

	case '[':
		var steps []Step
		if err := json.Unmarshal([]byte(cleaned), &steps); err != nil {
			return Parsed{}, &FormatError{Raw: cleaned, Err: err}
		}
		return Parsed{Steps: steps}, nil
	}
	return Parsed{}, &FormatError{Raw: cleaned, Err: errors.New("expected an object or array")}
}
