package battery

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// responsePreview bounds failed responses in printed reports.
const responsePreview = 200

// CategoryStats counts results in one category.
type CategoryStats struct {
	Total  int
	Passed int
	Failed int
}

// Report summarises a run.
type Report struct {
	Results    []Result
	Passed     int
	Failed     int
	Categories map[string]*CategoryStats

	Average time.Duration
	Fastest time.Duration
	Slowest time.Duration
}

// NewReport aggregates results.
func NewReport(results []Result) Report {
	r := Report{Results: results, Categories: make(map[string]*CategoryStats)}
	var total time.Duration
	for i, res := range results {
		stats := r.Categories[res.Case.Category]
		if stats == nil {
			stats = &CategoryStats{}
			r.Categories[res.Case.Category] = stats
		}
		stats.Total++
		if res.Passed {
			r.Passed++
			stats.Passed++
		} else {
			r.Failed++
			stats.Failed++
		}

		total += res.Duration
		if i == 0 || res.Duration < r.Fastest {
			r.Fastest = res.Duration
		}
		if res.Duration > r.Slowest {
			r.Slowest = res.Duration
		}
	}
	if len(results) > 0 {
		r.Average = total / time.Duration(len(results))
	}
	return r
}

// Total returns the number of executed cases.
func (r Report) Total() int {
	return len(r.Results)
}

// SuccessRate returns the pass percentage.
func (r Report) SuccessRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.Passed) / float64(len(r.Results)) * 100
}

// Summary returns the one-line outcome, e.g. "8 passed / 2 failed".
func (r Report) Summary() string {
	return fmt.Sprintf("%d passed / %d failed", r.Passed, r.Failed)
}

// Print writes the formatted report.
func (r Report) Print(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nFIBO ONTOLOGY AGENT TEST REPORT\n%s\n", rule, rule)

	fmt.Fprintf(w, "\nSUMMARY:\n")
	fmt.Fprintf(w, "   Total Tests: %d\n", r.Total())
	fmt.Fprintf(w, "   Passed: %d\n", r.Passed)
	fmt.Fprintf(w, "   Failed: %d\n", r.Failed)
	fmt.Fprintf(w, "   Success Rate: %.1f%%\n", r.SuccessRate())

	fmt.Fprintf(w, "\nPERFORMANCE:\n")
	fmt.Fprintf(w, "   Average: %.3fs\n", r.Average.Seconds())
	fmt.Fprintf(w, "   Fastest: %.3fs\n", r.Fastest.Seconds())
	fmt.Fprintf(w, "   Slowest: %.3fs\n", r.Slowest.Seconds())

	fmt.Fprintf(w, "\nCATEGORY BREAKDOWN:\n")
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.Categories[name]
		fmt.Fprintf(w, "   %s: %d/%d (%.1f%%)\n", name, s.Passed, s.Total, float64(s.Passed)/float64(s.Total)*100)
	}

	n := 0
	for _, res := range r.Results {
		if res.Passed {
			continue
		}
		if n == 0 {
			fmt.Fprintf(w, "\nFAILED TESTS:\n")
		}
		n++
		resp := res.Response
		if len(resp) > responsePreview {
			resp = resp[:responsePreview] + "..."
		}
		fmt.Fprintf(w, "   %d. %s\n", n, res.Case.Name)
		fmt.Fprintf(w, "      Query: '%s'\n", res.Case.Query)
		fmt.Fprintf(w, "      Error: %s\n", res.Error)
		fmt.Fprintf(w, "      Response: %s\n\n", resp)
	}

	fmt.Fprintf(w, "\n%s\n", r.Summary())
}

// PrintResult writes the one-line progress entry for a case.
func PrintResult(w io.Writer, res Result) {
	status := "PASS"
	if !res.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s (%.2fs)\n", status, res.Case.Name, res.Duration.Seconds())
	if !res.Passed && res.Error != "" {
		fmt.Fprintf(w, "   Error: %s\n", res.Error)
	}
}
