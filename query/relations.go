package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/c360studio/semfibo/ontology"
)

// Properties lists the properties that apply to a class: those whose domain
// contains the class or one of its ancestors. Object and data properties are
// listed on separate lines.
func (o *Ops) Properties(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	direct, inherited := o.g.PropertiesOf(c)
	var objects, data []string
	for _, p := range append(direct, inherited...) {
		if p.Kind == ontology.DataProperty {
			data = append(data, p.Name)
		} else {
			objects = append(objects, p.Name)
		}
	}
	if len(objects) == 0 && len(data) == 0 {
		return fmt.Sprintf("No properties found for '%s'.", c.Name)
	}
	slices.Sort(objects)
	slices.Sort(data)
	return fmt.Sprintf("Object properties of '%s': %s\nData properties of '%s': %s",
		c.Name, joinOr(objects, "none"), c.Name, joinOr(data, "none"))
}

// InferredProperties separates the properties declared on a class from those
// it inherits, naming the ancestor each inherited one comes from.
func (o *Ops) InferredProperties(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	direct, inherited := o.g.PropertiesOf(c)
	if len(direct) == 0 && len(inherited) == 0 {
		return fmt.Sprintf("No properties found for '%s' (direct or inherited).", c.Name)
	}
	ancestors := o.g.Ancestors(c)

	var b strings.Builder
	fmt.Fprintf(&b, "Property inheritance for '%s':", c.Name)
	if len(direct) > 0 {
		fmt.Fprintf(&b, "\nDirect properties (%d):", len(direct))
		for _, p := range direct {
			fmt.Fprintf(&b, "\n  - %s (%s)", p.Name, p.Kind)
		}
	}
	if len(inherited) > 0 {
		fmt.Fprintf(&b, "\nInherited properties (%d):", len(inherited))
		for _, p := range inherited {
			var from []string
			for _, d := range p.DomainClasses() {
				if slices.Contains(ancestors, d) {
					from = append(from, d.Name)
				}
			}
			fmt.Fprintf(&b, "\n  - %s (%s, from %s)", p.Name, p.Kind, strings.Join(from, ", "))
		}
	}
	return b.String()
}

// PropertyDetails describes one property. The name is resolved
// case-insensitively here since the planner passes property names through
// unresolved.
func (o *Ops) PropertyDetails(name string) string {
	canonical, err := o.g.ResolveProperty(name)
	if err != nil {
		msg := fmt.Sprintf("Property '%s' not found.", strings.TrimSpace(name))
		if s := o.SuggestProperties(name, MaxSuggestions); len(s) > 0 {
			msg += fmt.Sprintf(" Did you mean: %s?", strings.Join(s, ", "))
		}
		return msg
	}
	p, ok := o.g.Property(canonical)
	if !ok {
		return fmt.Sprintf("Property '%s' not found.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Property '%s' (%s)", p.Name, p.Kind)
	if len(p.Labels) > 0 {
		fmt.Fprintf(&b, "\nLabel: %s", strings.Join(p.Labels, ", "))
	}
	if d := append(slices.Clone(p.Definitions), p.Comments...); len(d) > 0 {
		fmt.Fprintf(&b, "\nDefinition: %s", strings.Join(d, " | "))
	}
	fmt.Fprintf(&b, "\nDomain: %s", joinOr(p.Domain, "unspecified"))
	fmt.Fprintf(&b, "\nRange: %s", joinOr(p.Range, "unspecified"))
	if p.Functional {
		b.WriteString("\nFunctional: yes")
	}
	return b.String()
}

// Related returns the classes reachable from c within depth hops over direct
// superclass, subclass and property domain/range edges, with the depth at
// which each was first reached. c itself is never included.
func (o *Ops) Related(c *ontology.Class, depth int) map[*ontology.Class]int {
	found := make(map[*ontology.Class]int)
	visited := map[*ontology.Class]bool{c: true}
	frontier := []*ontology.Class{c}
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []*ontology.Class
		for _, n := range frontier {
			for _, m := range o.g.Neighbors(n) {
				if visited[m] {
					continue
				}
				visited[m] = true
				found[m] = d
				next = append(next, m)
			}
		}
		frontier = next
	}
	return found
}

// RelatedConcepts formats Related, sorted by name and capped at MaxRelated.
func (o *Ops) RelatedConcepts(name string, depth int) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	found := o.Related(c, depth)
	if len(found) == 0 {
		return fmt.Sprintf("No related concepts found for '%s' within depth %d.", c.Name, depth)
	}
	classes := make([]*ontology.Class, 0, len(found))
	for rc := range found {
		classes = append(classes, rc)
	}
	slices.SortFunc(classes, func(a, b *ontology.Class) int {
		if r := strings.Compare(a.Name, b.Name); r != 0 {
			return r
		}
		return strings.Compare(a.IRI, b.IRI)
	})
	lines := make([]string, len(classes))
	for i, rc := range classes {
		lines[i] = fmt.Sprintf("%s (depth %d)", rc.Name, found[rc])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Related concepts for '%s' (max depth: %d):", c.Name, depth)
	bullets(&b, lines, MaxRelated)
	return b.String()
}

// ExplainRelationship reports how two classes relate: subclass relation,
// properties linking them in either direction, and common ancestors. The same
// facts are reported whichever order the classes are given in.
func (o *Ops) ExplainRelationship(name1, name2 string) string {
	a, msg := o.class(name1)
	if a == nil {
		return msg
	}
	b, msg := o.class(name2)
	if b == nil {
		return msg
	}
	if a == b {
		return fmt.Sprintf("'%s' and '%s' are the same class.", a.Name, b.Name)
	}

	var lines []string
	switch {
	case o.g.IsAncestor(b, a):
		lines = append(lines, subclassLine(a, b))
	case o.g.IsAncestor(a, b):
		lines = append(lines, subclassLine(b, a))
	}

	var links []string
	for _, p := range o.g.Properties() {
		dom, rng := p.DomainClasses(), p.RangeClasses()
		if slices.Contains(dom, a) && slices.Contains(rng, b) {
			links = append(links, fmt.Sprintf("Property '%s' links '%s' -> '%s'", p.Name, a.Name, b.Name))
		}
		if slices.Contains(dom, b) && slices.Contains(rng, a) {
			links = append(links, fmt.Sprintf("Property '%s' links '%s' -> '%s'", p.Name, b.Name, a.Name))
		}
	}
	slices.Sort(links)
	lines = append(lines, links...)

	if common := commonAncestors(o.g, a, b); len(common) > 0 {
		if len(common) > MaxCommonAncestors {
			common = common[:MaxCommonAncestors]
		}
		lines = append(lines, "Common ancestors: "+strings.Join(ontology.Names(common), ", "))
	}

	if len(lines) == 0 {
		return fmt.Sprintf("No direct relationship found between '%s' and '%s'.", a.Name, b.Name)
	}
	return fmt.Sprintf("Relationship between '%s' and '%s':\n", a.Name, b.Name) + strings.Join(lines, "\n")
}

func subclassLine(sub, super *ontology.Class) string {
	how := "indirect"
	if slices.Contains(sub.Superclasses(), super) {
		how = "direct"
	}
	return fmt.Sprintf("'%s' is a subclass of '%s' (%s)", sub.Name, super.Name, how)
}

// commonAncestors returns the shared ancestors of a and b, excluding both,
// sorted by name so the result does not depend on argument order.
func commonAncestors(g *ontology.Graph, a, b *ontology.Class) []*ontology.Class {
	ofB := make(map[*ontology.Class]bool)
	for _, c := range g.Ancestors(b) {
		ofB[c] = true
	}
	var out []*ontology.Class
	for _, c := range g.Ancestors(a) {
		if ofB[c] && c != a && c != b {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(x, y *ontology.Class) int { return strings.Compare(x.Name, y.Name) })
	return out
}

// ReasoningChain shows the subclass path between two classes, or failing
// that the paths from both to their nearest common ancestor.
func (o *Ops) ReasoningChain(name1, name2 string) string {
	a, msg := o.class(name1)
	if a == nil {
		return msg
	}
	b, msg := o.class(name2)
	if b == nil {
		return msg
	}
	header := fmt.Sprintf("Reasoning chain between '%s' and '%s':", a.Name, b.Name)

	if path := o.g.PathUp(a, b); path != nil {
		return fmt.Sprintf("%s\n'%s' is a '%s': %s", header, a.Name, b.Name, chain(path))
	}
	if path := o.g.PathUp(b, a); path != nil {
		return fmt.Sprintf("%s\n'%s' is a '%s': %s", header, b.Name, a.Name, chain(path))
	}

	var (
		best         *ontology.Class
		pathA, pathB []*ontology.Class
	)
	for _, c := range commonAncestors(o.g, a, b) {
		pa, pb := o.g.PathUp(a, c), o.g.PathUp(b, c)
		if best == nil || len(pa)+len(pb) < len(pathA)+len(pathB) {
			best, pathA, pathB = c, pa, pb
		}
	}
	if best == nil {
		return fmt.Sprintf("%s\nNo inheritance relationship found.", header)
	}
	return fmt.Sprintf("%s\nNearest common ancestor: '%s'\n  %s\n  %s",
		header, best.Name, chain(pathA), chain(pathB))
}

func chain(path []*ontology.Class) string {
	return strings.Join(ontology.Names(path), " -> ")
}
