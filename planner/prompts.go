package planner

import (
	"fmt"
	"strings"
)

// SimplePrompt builds the system prompt for single-call plans.
func SimplePrompt(tools []Tool) string {
	var b strings.Builder
	b.WriteString("You are an assistant that maps questions about the FIBO financial ontology ")
	b.WriteString("to exactly one ontology query function.\n\n")
	b.WriteString("Available functions:\n")
	writeTools(&b, tools)
	b.WriteString(`
Rules:
- Respond with a single JSON object and nothing else.
- Use the exact class and property names as they appear in FIBO, in CamelCase.
- Arguments are always a JSON array of strings.

Format:
{"function": "<function name>", "arguments": ["<arg1>", "<arg2>"]}

Examples:
Question: What are the superclasses of OwnersEquity?
{"function": "get_superclasses", "arguments": ["OwnersEquity"]}

Question: Find classes about equity
{"function": "search_classes_by_keyword", "arguments": ["equity"]}

Question: How is Shareholder related to ShareholdersEquity?
{"function": "explain_relationship", "arguments": ["Shareholder", "ShareholdersEquity"]}
`)
	return b.String()
}

// MultiStepPrompt builds the system prompt for plans that may chain several
// calls and finish with an analysis step.
func MultiStepPrompt(tools []Tool) string {
	var b strings.Builder
	b.WriteString("You are an assistant that answers questions about the FIBO financial ontology ")
	b.WriteString("by planning one or more ontology query function calls.\n\n")
	b.WriteString("Available functions:\n")
	writeTools(&b, tools)
	b.WriteString(`
Rules:
- For a simple question respond with a single JSON object:
  {"function": "<function name>", "arguments": ["<arg1>"]}
- For a complex question (comparisons, overviews, detailed analysis) respond
  with a JSON array of calls, optionally ending with an analysis step:
  {"step": "analysis", "instruction": "<what to conclude from the results>"}
- Respond with JSON only. Use exact FIBO class names in CamelCase.

Complex example:
Question: Compare RetainedEarnings and ShareholdersEquity
[
  {"function": "get_class_info", "arguments": ["RetainedEarnings"]},
  {"function": "get_class_info", "arguments": ["ShareholdersEquity"]},
  {"function": "explain_relationship", "arguments": ["RetainedEarnings", "ShareholdersEquity"]},
  {"step": "analysis", "instruction": "compare the two classes and explain how they relate"}
]

Simple example:
Question: What are the properties of Shareholder?
{"function": "get_properties", "arguments": ["Shareholder"]}
`)
	return b.String()
}

// SynthesisPrompt builds the user prompt asking the model to analyse results.
func SynthesisPrompt(instruction string, results []StepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a FIBO ontology expert. Analyze these ontology query results and %s.\n\n", instruction)
	b.WriteString("ONTOLOGY RESULTS:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "--- Result %d (%s) ---\n%s\n\n", i+1, r.Function, r.Output)
	}
	fmt.Fprintf(&b, "INSTRUCTIONS: %s\n\n", instruction)
	b.WriteString(`Provide an analysis that:
1. Synthesizes the key insights from all results
2. Explains relationships and patterns
3. Highlights important financial concepts
4. Provides practical context where relevant

Use headers and bullet points. Rely only on the results above.`)
	return b.String()
}
