// Package ontology holds the in-memory ontology graph: classes, properties and
// individuals merged from one or more RDF/XML modules.
//
// A Graph is built once by a Builder (usually through Load) and never mutated
// afterwards, so any number of goroutines may query it. Store swaps whole
// graphs when the module set changes.
package ontology

import (
	"slices"
	"strings"
)

// PropertyKind tags a property as relating classes or carrying literal data.
type PropertyKind int

// Property kinds.
const (
	ObjectProperty PropertyKind = iota
	DataProperty
)

// String returns the kind in user-facing form.
func (k PropertyKind) String() string {
	if k == DataProperty {
		return "data property"
	}
	return "object property"
}

// Restriction is an owl:Restriction a class is declared a subclass of.
type Restriction struct {
	Property string
	Kind     string
	Filler   string
}

// String renders the restriction in Manchester-like syntax.
func (r Restriction) String() string {
	if r.Filler == "" {
		return r.Property + " " + r.Kind
	}
	return r.Property + " " + r.Kind + " " + r.Filler
}

// Class is a named ontology class.
type Class struct {
	Name         string
	IRI          string
	Labels       []string
	Comments     []string
	Definitions  []string
	Equivalents  []string
	Restrictions []Restriction

	// EquivalentIRIs holds the full IRIs behind Equivalents.
	EquivalentIRIs []string

	Module string

	// Declared is false for classes known only because another class names
	// them as a superclass, usually from a module that is not loaded. They
	// take part in the hierarchy and resolve by name, but are not counted,
	// listed or searched.
	Declared bool

	supers []*Class
	subs   []*Class
}

// Superclasses returns the direct named superclasses, sorted by name.
func (c *Class) Superclasses() []*Class { return slices.Clone(c.supers) }

// Subclasses returns the direct named subclasses, sorted by name.
func (c *Class) Subclasses() []*Class { return slices.Clone(c.subs) }

// Label returns the first label, or the empty string.
func (c *Class) Label() string {
	if len(c.Labels) == 0 {
		return ""
	}
	return c.Labels[0]
}

// Property is an object or data property.
type Property struct {
	Name        string
	IRI         string
	Labels      []string
	Comments    []string
	Definitions []string
	Kind        PropertyKind
	Functional  bool
	Module      string

	// Domain and Range hold local names; Range may name datatypes.
	Domain []string
	Range  []string

	// DomainIRIs and RangeIRIs hold the full IRIs behind Domain and Range.
	DomainIRIs []string
	RangeIRIs  []string

	domain []*Class
	rng    []*Class
}

// DomainClasses returns the domain members that are classes in the graph.
func (p *Property) DomainClasses() []*Class { return slices.Clone(p.domain) }

// RangeClasses returns the range members that are classes in the graph.
func (p *Property) RangeClasses() []*Class { return slices.Clone(p.rng) }

// Individual is a named instance.
type Individual struct {
	Name     string
	IRI      string
	Labels   []string
	Types    []string
	TypeIRIs []string
}

// Stats counts the named entities of a graph. Classes counts declared
// classes only.
type Stats struct {
	Classes     int `json:"classes"`
	Properties  int `json:"properties"`
	Individuals int `json:"individuals"`
	Modules     int `json:"modules"`
}

// Graph is an immutable merged ontology.
type Graph struct {
	classes     []*Class
	nodes       []*Class
	classByIRI  map[string]*Class
	classByName map[string][]*Class
	classByFold map[string][]*Class
	classNames  []string

	properties []*Property
	propByIRI  map[string]*Property
	propByName map[string][]*Property
	propByFold map[string][]*Property

	individuals []*Individual
	modules     []string
	ontologies  []string
}

// Classes returns the declared classes sorted by name.
func (g *Graph) Classes() []*Class { return slices.Clone(g.classes) }

// Undeclared returns the classes known only as superclass targets, sorted by
// name.
func (g *Graph) Undeclared() []*Class {
	var out []*Class
	for _, c := range g.nodes {
		if !c.Declared {
			out = append(out, c)
		}
	}
	return out
}

// ClassNames returns the distinct declared class names, sorted.
func (g *Graph) ClassNames() []string { return slices.Clone(g.classNames) }

// Class returns the class with exactly this name. It reports false when no
// class or more than one class carries the name.
func (g *Graph) Class(name string) (*Class, bool) {
	cs := g.classByName[name]
	if len(cs) != 1 {
		return nil, false
	}
	return cs[0], true
}

// ClassByIRI returns the class with the given IRI.
func (g *Graph) ClassByIRI(iri string) (*Class, bool) {
	c, ok := g.classByIRI[iri]
	return c, ok
}

// Properties returns every property sorted by name.
func (g *Graph) Properties() []*Property { return slices.Clone(g.properties) }

// Property returns the property with exactly this name.
func (g *Graph) Property(name string) (*Property, bool) {
	ps := g.propByName[name]
	if len(ps) != 1 {
		return nil, false
	}
	return ps[0], true
}

// Individuals returns every named individual sorted by name.
func (g *Graph) Individuals() []*Individual { return slices.Clone(g.individuals) }

// Modules returns the loaded module paths in load order.
func (g *Graph) Modules() []string { return slices.Clone(g.modules) }

// Ontologies returns the IRIs of the owl:Ontology headers seen while loading.
func (g *Graph) Ontologies() []string { return slices.Clone(g.ontologies) }

// Stats returns entity counts.
func (g *Graph) Stats() Stats {
	return Stats{
		Classes:     len(g.classes),
		Properties:  len(g.properties),
		Individuals: len(g.individuals),
		Modules:     len(g.modules),
	}
}

// Ancestors returns the transitive superclasses of c, nearest first and
// alphabetical within a level. c itself is never included.
func (g *Graph) Ancestors(c *Class) []*Class {
	return walk(c, func(n *Class) []*Class { return n.supers })
}

// Descendants returns the transitive subclasses of c, nearest first.
func (g *Graph) Descendants(c *Class) []*Class {
	return walk(c, func(n *Class) []*Class { return n.subs })
}

// AncestorLevels groups the ancestors of c by their shortest distance.
func (g *Graph) AncestorLevels(c *Class) [][]*Class {
	return levels(c, func(n *Class) []*Class { return n.supers })
}

// DescendantLevels groups the descendants of c by their shortest distance.
func (g *Graph) DescendantLevels(c *Class) [][]*Class {
	return levels(c, func(n *Class) []*Class { return n.subs })
}

// IsAncestor reports whether anc is a transitive superclass of c.
func (g *Graph) IsAncestor(anc, c *Class) bool {
	if anc == c {
		return false
	}
	return slices.Contains(g.Ancestors(c), anc)
}

// PathUp returns the shortest superclass chain from c to anc, both included,
// or nil when anc is not an ancestor of c.
func (g *Graph) PathUp(c, anc *Class) []*Class {
	parent := map[*Class]*Class{c: nil}
	queue := []*Class{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == anc && cur != c {
			var path []*Class
			for n := cur; n != nil; n = parent[n] {
				path = append(path, n)
			}
			slices.Reverse(path)
			return path
		}
		for _, s := range cur.supers {
			if _, seen := parent[s]; !seen {
				parent[s] = cur
				queue = append(queue, s)
			}
		}
	}
	return nil
}

// PropertiesOf splits the properties applicable to c into those whose domain
// names c directly and those inherited through an ancestor in the domain.
func (g *Graph) PropertiesOf(c *Class) (direct, inherited []*Property) {
	ancestors := make(map[*Class]bool)
	for _, a := range g.Ancestors(c) {
		ancestors[a] = true
	}
	for _, p := range g.properties {
		switch {
		case slices.Contains(p.domain, c):
			direct = append(direct, p)
		case slices.ContainsFunc(p.domain, func(d *Class) bool { return ancestors[d] }):
			inherited = append(inherited, p)
		}
	}
	return direct, inherited
}

// Neighbors returns the classes one hop from c: direct superclasses, direct
// subclasses, and classes linked through a property whose domain or range
// contains c. The result is deduplicated and sorted.
func (g *Graph) Neighbors(c *Class) []*Class {
	seen := map[*Class]bool{c: true}
	var out []*Class
	add := func(cs []*Class) {
		for _, n := range cs {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(c.supers)
	add(c.subs)
	for _, p := range g.properties {
		if slices.Contains(p.domain, c) {
			add(p.rng)
		}
		if slices.Contains(p.rng, c) {
			add(p.domain)
		}
	}
	sortClasses(out)
	return out
}

func walk(start *Class, next func(*Class) []*Class) []*Class {
	var out []*Class
	for _, level := range levels(start, next) {
		out = append(out, level...)
	}
	return out
}

func levels(start *Class, next func(*Class) []*Class) [][]*Class {
	seen := map[*Class]bool{start: true}
	var out [][]*Class
	frontier := []*Class{start}
	for len(frontier) > 0 {
		var level []*Class
		for _, n := range frontier {
			for _, m := range next(n) {
				if !seen[m] {
					seen[m] = true
					level = append(level, m)
				}
			}
		}
		if len(level) == 0 {
			break
		}
		sortClasses(level)
		out = append(out, level)
		frontier = level
	}
	return out
}

func sortClasses(cs []*Class) {
	slices.SortFunc(cs, func(a, b *Class) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.IRI, b.IRI)
	})
}

// Names returns the names of cs in order.
func Names(cs []*Class) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}
