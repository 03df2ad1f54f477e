package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/semfibo/dispatch"
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/query"
)

// maxAdditional caps the "additional in" list of a comparison.
const maxAdditional = 5

// switchPhrases map request phrases to module sets, checked in order.
var switchPhrases = []struct {
	phrase string
	set    string
}{
	{"switch to comprehensive", ontology.SetComprehensive},
	{"use comprehensive", ontology.SetComprehensive},
	{"load comprehensive", ontology.SetComprehensive},
	{"switch to banking", ontology.SetBanking},
	{"use banking", ontology.SetBanking},
	{"load banking", ontology.SetBanking},
	{"switch to securities", ontology.SetSecurities},
	{"use securities", ontology.SetSecurities},
	{"load securities", ontology.SetSecurities},
	{"switch to core", ontology.SetCore},
	{"use core", ontology.SetCore},
	{"load core", ontology.SetCore},
}

var infoPhrases = []string{"available modules", "module sets", "what modules", "current module"}

// moduleRequest answers module-set requests. ok is false for anything else.
func (a *Agent) moduleRequest(ctx context.Context, question string) (Answer, bool) {
	q := strings.ToLower(question)

	for _, sp := range switchPhrases {
		if strings.Contains(q, sp.phrase) {
			return a.switchSet(ctx, sp.set), true
		}
	}

	for _, phrase := range infoPhrases {
		if strings.Contains(q, phrase) {
			return Answer{Text: a.moduleInfo(), Route: RouteModuleInfo, Status: dispatch.StatusOK}, true
		}
	}

	if strings.Contains(q, "compare") && (strings.Contains(q, "modules") || strings.Contains(q, "sets")) {
		if text, ok := a.compareWithComprehensive(); ok {
			return Answer{Text: text, Route: RouteModuleCompare, Status: dispatch.StatusOK}, true
		}
	}
	return Answer{}, false
}

func (a *Agent) switchSet(ctx context.Context, name string) Answer {
	ans := Answer{Route: RouteModuleSwitch, Function: "switch_module_set", Arguments: []string{name}}

	if _, ok := a.store.Set(name); !ok {
		ans.Status = dispatch.StatusBadRequest
		ans.Text = fmt.Sprintf("Invalid module set '%s'. Available: %s", name, strings.Join(a.setNames(), ", "))
		return ans
	}

	summary, err := a.store.Switch(ctx, name)
	if err != nil {
		a.logger.Warn("Module set switch failed", "set", name, "error", err)
		ans.Status = StatusError
		ans.Text = "Error switching module set: " + err.Error()
		if errors.Is(err, ontology.ErrModuleMissing) {
			ans.Text += "\nThe previous module set is still loaded."
		}
		return ans
	}

	stats := query.New(a.store.Graph(), query.WithModuleSet(a.store.Current())).Stats()
	ans.Status = dispatch.StatusOK
	ans.Text = "Module set switched.\n\n" + summary + "\n\nNew stats:\n" + stats
	return ans
}

func (a *Agent) moduleInfo() string {
	current := a.store.Current()

	var b strings.Builder
	fmt.Fprintf(&b, "Current module set: %s (%s)\n", current.Title(), current.Name)
	if g := a.store.Graph(); g != nil {
		b.WriteString("Current stats:\n")
		b.WriteString(query.New(g, query.WithModuleSet(current)).Stats())
		b.WriteString("\n")
	}

	b.WriteString("\nAvailable module sets:")
	for _, set := range a.store.Sets() {
		marker := " "
		if set.Name == current.Name {
			marker = "*"
		}
		fmt.Fprintf(&b, "\n  %s %s: %s (%d modules)", marker, set.Name, set.Title(), len(set.Modules))
		if set.Description != "" {
			fmt.Fprintf(&b, "\n      %s", set.Description)
		}
	}
	b.WriteString("\n\nTo switch, try 'switch to comprehensive' or 'use banking modules'.")
	return b.String()
}

// compareWithComprehensive compares the current set with the comprehensive
// set. ok is false when comprehensive is current or not configured.
func (a *Agent) compareWithComprehensive() (string, bool) {
	current := a.store.Current()
	full, ok := a.store.Set(ontology.SetComprehensive)
	if !ok || current.Name == "" || current.Name == full.Name {
		return "", false
	}

	cmp := ontology.CompareModuleSets(current, full)

	var b strings.Builder
	fmt.Fprintf(&b, "Module set comparison: %s vs %s\n", cmp.A, cmp.B)
	fmt.Fprintf(&b, "  %s: %d modules\n", cmp.A, cmp.TotalA)
	fmt.Fprintf(&b, "  %s: %d modules\n", cmp.B, cmp.TotalB)
	fmt.Fprintf(&b, "  Common modules: %d\n", len(cmp.Common))
	fmt.Fprintf(&b, "  Overlap: %.1f%%", cmp.Overlap)

	if len(cmp.OnlyB) > 0 {
		fmt.Fprintf(&b, "\n\nAdditional in %s:", cmp.B)
		for _, m := range cmp.OnlyB[:min(len(cmp.OnlyB), maxAdditional)] {
			fmt.Fprintf(&b, "\n  - %s", m)
		}
		if extra := len(cmp.OnlyB) - maxAdditional; extra > 0 {
			fmt.Fprintf(&b, "\n  ... and %d more", extra)
		}
	}
	return b.String(), true
}

func (a *Agent) setNames() []string {
	sets := a.store.Sets()
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return names
}
