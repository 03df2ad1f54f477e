package ontology

import (
	"slices"
	"sort"
	"strings"

	"github.com/c360studio/semfibo/rdf"
	"github.com/c360studio/semfibo/vocabulary/fibo"
)

// node collects the outgoing edges of one subject.
type node struct {
	props map[string][]rdf.Term
}

func (n *node) objects(pred string) []rdf.Term {
	if n == nil {
		return nil
	}
	return n.props[pred]
}

func (n *node) first(pred string) (rdf.Term, bool) {
	objs := n.objects(pred)
	if len(objs) == 0 {
		return rdf.Term{}, false
	}
	return objs[0], true
}

// Builder accumulates triples from one or more modules and interprets them
// into a Graph. Later modules merge into what earlier ones declared.
type Builder struct {
	nodes    map[string]*node
	order    []string
	moduleOf map[string]string
	modules  []string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:    make(map[string]*node),
		moduleOf: make(map[string]string),
	}
}

// Add merges the triples of one module.
func (b *Builder) Add(module string, triples []rdf.Triple) {
	b.modules = append(b.modules, module)
	for _, t := range triples {
		key := t.Subject.Key()
		n, ok := b.nodes[key]
		if !ok {
			n = &node{props: make(map[string][]rdf.Term)}
			b.nodes[key] = n
			b.order = append(b.order, key)
		}
		n.props[t.Predicate.Value] = append(n.props[t.Predicate.Value], t.Object)
		if t.Predicate.Value == fibo.RDFType {
			if _, ok := b.moduleOf[key]; !ok {
				b.moduleOf[key] = module
			}
		}
	}
}

// Build interprets the accumulated triples. The builder must not be reused.
func (b *Builder) Build() *Graph {
	g := &Graph{
		classByIRI:  make(map[string]*Class),
		classByName: make(map[string][]*Class),
		classByFold: make(map[string][]*Class),
		propByIRI:   make(map[string]*Property),
		propByName:  make(map[string][]*Property),
		propByFold:  make(map[string][]*Property),
		modules:     slices.Clone(b.modules),
	}

	datatypes := make(map[string]bool)
	for _, key := range b.order {
		if b.hasType(key, fibo.RDFSDatatype) {
			datatypes[key] = true
		}
	}
	isDatatype := func(iri string) bool { return fibo.IsDatatype(iri) || datatypes[iri] }

	// Classes: declared ones first, then anything named in rdfs:subClassOf.
	for _, key := range b.order {
		if isIRIKey(key) && (b.hasType(key, fibo.OWLClass) || b.hasType(key, fibo.RDFSClass)) && !isDatatype(key) {
			b.class(g, key).Declared = true
		}
	}
	for _, key := range b.order {
		n := b.nodes[key]
		supers := n.objects(fibo.RDFSSubClassOf)
		if len(supers) == 0 || !isIRIKey(key) {
			continue
		}
		b.class(g, key)
		for _, s := range supers {
			if s.IsIRI() && !isDatatype(s.Value) {
				b.class(g, s.Value)
			}
		}
	}

	for _, c := range g.classByIRI {
		n := b.nodes[c.IRI]
		c.Labels = b.labels(n)
		c.Comments = literals(n, fibo.RDFSComment)
		c.Definitions = literals(n, fibo.SKOSDefinition)
		for _, s := range n.objects(fibo.RDFSSubClassOf) {
			switch {
			case s.IsIRI():
				if sup, ok := g.classByIRI[s.Value]; ok && sup != c {
					c.supers = appendUnique(c.supers, sup)
				}
			case s.IsBlank():
				if r, ok := b.restriction(s); ok {
					c.Restrictions = append(c.Restrictions, r)
				}
			}
		}
		for _, e := range n.objects(fibo.OWLEquivalentClass) {
			if e.IsIRI() {
				c.Equivalents = appendUniqueString(c.Equivalents, rdf.LocalName(e.Value))
				c.EquivalentIRIs = appendUniqueString(c.EquivalentIRIs, e.Value)
			}
		}
		sort.Strings(c.Equivalents)
		sort.Strings(c.EquivalentIRIs)
	}
	for _, c := range g.classByIRI {
		for _, s := range c.supers {
			s.subs = appendUnique(s.subs, c)
		}
	}

	// Properties.
	isProperty := make(map[string]bool)
	for _, key := range b.order {
		if !isIRIKey(key) {
			continue
		}
		declaredData := b.hasType(key, fibo.OWLDatatypeProperty)
		declaredObject := b.hasType(key, fibo.OWLObjectProperty)
		functional := b.hasType(key, fibo.OWLFunctionalProperty)
		if !declaredData && !declaredObject && !functional && !b.hasType(key, fibo.RDFProperty) {
			continue
		}
		if b.hasType(key, fibo.OWLAnnotationProperty) {
			continue
		}
		n := b.nodes[key]
		p := &Property{
			Name:        rdf.LocalName(key),
			IRI:         key,
			Labels:      b.labels(n),
			Comments:    literals(n, fibo.RDFSComment),
			Definitions: literals(n, fibo.SKOSDefinition),
			Functional:  functional,
			Module:      b.moduleOf[key],
		}
		domain := b.members(n.objects(fibo.RDFSDomain))
		rng := b.members(n.objects(fibo.RDFSRange))
		p.Domain = localNames(domain)
		p.Range = localNames(rng)
		p.DomainIRIs = domain
		p.RangeIRIs = rng
		for _, iri := range domain {
			if c, ok := g.classByIRI[iri]; ok {
				p.domain = appendUnique(p.domain, c)
			}
		}
		for _, iri := range rng {
			if c, ok := g.classByIRI[iri]; ok {
				p.rng = appendUnique(p.rng, c)
			}
		}
		allData := len(rng) > 0 && !slices.ContainsFunc(rng, func(iri string) bool { return !isDatatype(iri) })
		if declaredData || allData {
			p.Kind = DataProperty
		}
		sortClasses(p.domain)
		sortClasses(p.rng)
		g.properties = append(g.properties, p)
		isProperty[key] = true
	}

	// Individuals and ontology headers.
	for _, key := range b.order {
		if !isIRIKey(key) {
			continue
		}
		if b.hasType(key, fibo.OWLOntology) {
			g.ontologies = append(g.ontologies, key)
			continue
		}
		if _, isClass := g.classByIRI[key]; isClass || isProperty[key] {
			continue
		}
		n := b.nodes[key]
		var types, typeIRIs []string
		for _, t := range n.objects(fibo.RDFType) {
			if c, ok := g.classByIRI[t.Value]; ok {
				types = appendUniqueString(types, c.Name)
				typeIRIs = appendUniqueString(typeIRIs, c.IRI)
			}
		}
		if len(types) == 0 && !b.hasType(key, fibo.OWLNamedIndividual) {
			continue
		}
		sort.Strings(types)
		sort.Strings(typeIRIs)
		g.individuals = append(g.individuals, &Individual{
			Name:     rdf.LocalName(key),
			IRI:      key,
			Labels:   b.labels(n),
			Types:    types,
			TypeIRIs: typeIRIs,
		})
	}

	g.index()
	return g
}

func (b *Builder) class(g *Graph, iri string) *Class {
	if c, ok := g.classByIRI[iri]; ok {
		return c
	}
	c := &Class{
		Name:   rdf.LocalName(iri),
		IRI:    iri,
		Module: b.moduleOf[iri],
	}
	if iri == fibo.OWLThing {
		// owl:Thing is implicit everywhere and never reported.
		return c
	}
	g.classByIRI[iri] = c
	return c
}

func (b *Builder) hasType(key, typ string) bool {
	n := b.nodes[key]
	return slices.ContainsFunc(n.objects(fibo.RDFType), func(t rdf.Term) bool { return t.Value == typ })
}

func (b *Builder) labels(n *node) []string {
	out := literals(n, fibo.RDFSLabel)
	for _, l := range literals(n, fibo.SKOSPrefLabel) {
		out = appendUniqueString(out, l)
	}
	return out
}

// members flattens a domain or range: named IRIs are kept as they are and
// owl:unionOf class expressions are expanded to their named members.
func (b *Builder) members(objs []rdf.Term) []string {
	var out []string
	for _, o := range objs {
		switch {
		case o.IsIRI():
			out = appendUniqueString(out, o.Value)
		case o.IsBlank():
			n := b.nodes[o.Key()]
			if head, ok := n.first(fibo.OWLUnionOf); ok {
				for _, m := range b.list(head) {
					if m.IsIRI() {
						out = appendUniqueString(out, m.Value)
					}
				}
			}
		}
	}
	return out
}

func (b *Builder) list(head rdf.Term) []rdf.Term {
	var out []rdf.Term
	seen := make(map[string]bool)
	for cur := head; cur.IsBlank() && !seen[cur.Key()]; {
		seen[cur.Key()] = true
		n := b.nodes[cur.Key()]
		if f, ok := n.first(rdf.RDFFirst); ok {
			out = append(out, f)
		}
		next, ok := n.first(rdf.RDFRest)
		if !ok {
			break
		}
		cur = next
	}
	return out
}

func (b *Builder) restriction(t rdf.Term) (Restriction, bool) {
	n := b.nodes[t.Key()]
	onProp, ok := n.first(fibo.OWLOnProperty)
	if !ok || !onProp.IsIRI() {
		return Restriction{}, false
	}
	r := Restriction{Property: rdf.LocalName(onProp.Value)}

	filler := func() string {
		for _, pred := range []string{fibo.OWLOnClass, fibo.OWLOnDataRange} {
			if f, ok := n.first(pred); ok && f.IsIRI() {
				return rdf.LocalName(f.Value)
			}
		}
		return ""
	}
	named := func(o rdf.Term) string {
		switch {
		case o.IsIRI():
			return rdf.LocalName(o.Value)
		case o.IsLiteral():
			return o.Value
		}
		return "(anonymous)"
	}

	switch {
	case len(n.objects(fibo.OWLSomeValuesFrom)) > 0:
		o, _ := n.first(fibo.OWLSomeValuesFrom)
		r.Kind, r.Filler = "some", named(o)
	case len(n.objects(fibo.OWLAllValuesFrom)) > 0:
		o, _ := n.first(fibo.OWLAllValuesFrom)
		r.Kind, r.Filler = "only", named(o)
	case len(n.objects(fibo.OWLHasValue)) > 0:
		o, _ := n.first(fibo.OWLHasValue)
		r.Kind, r.Filler = "value", named(o)
	default:
		cards := []struct{ pred, word string }{
			{fibo.OWLCardinality, "exactly"},
			{fibo.OWLQualifiedCard, "exactly"},
			{fibo.OWLMinCardinality, "min"},
			{fibo.OWLMinQualifiedCard, "min"},
			{fibo.OWLMaxCardinality, "max"},
			{fibo.OWLMaxQualifiedCard, "max"},
		}
		for _, card := range cards {
			if o, ok := n.first(card.pred); ok {
				r.Kind = card.word + " " + strings.TrimSpace(o.Value)
				r.Filler = filler()
				return r, true
			}
		}
		return Restriction{}, false
	}
	return r, true
}

func (g *Graph) index() {
	for _, c := range g.classByIRI {
		g.nodes = append(g.nodes, c)
		sortClasses(c.supers)
		sortClasses(c.subs)
	}
	sortClasses(g.nodes)
	for _, c := range g.nodes {
		g.classByName[c.Name] = append(g.classByName[c.Name], c)
		fold := strings.ToLower(c.Name)
		g.classByFold[fold] = append(g.classByFold[fold], c)
		if !c.Declared {
			continue
		}
		g.classes = append(g.classes, c)
		if n := len(g.classNames); n == 0 || g.classNames[n-1] != c.Name {
			g.classNames = append(g.classNames, c.Name)
		}
	}

	sort.Slice(g.properties, func(i, j int) bool {
		if g.properties[i].Name != g.properties[j].Name {
			return g.properties[i].Name < g.properties[j].Name
		}
		return g.properties[i].IRI < g.properties[j].IRI
	})
	for _, p := range g.properties {
		g.propByIRI[p.IRI] = p
		g.propByName[p.Name] = append(g.propByName[p.Name], p)
		fold := strings.ToLower(p.Name)
		g.propByFold[fold] = append(g.propByFold[fold], p)
	}

	sort.Slice(g.individuals, func(i, j int) bool {
		return g.individuals[i].Name < g.individuals[j].Name
	})
}

func literals(n *node, pred string) []string {
	var out []string
	for _, o := range n.objects(pred) {
		if o.IsLiteral() {
			out = appendUniqueString(out, strings.TrimSpace(o.Value))
		}
	}
	return out
}

func localNames(iris []string) []string {
	out := make([]string, 0, len(iris))
	for _, iri := range iris {
		out = appendUniqueString(out, rdf.LocalName(iri))
	}
	sort.Strings(out)
	return out
}

func isIRIKey(key string) bool {
	return !strings.HasPrefix(key, "_:")
}

func appendUnique(cs []*Class, c *Class) []*Class {
	if slices.Contains(cs, c) {
		return cs
	}
	return append(cs, c)
}

func appendUniqueString(ss []string, s string) []string {
	if slices.Contains(ss, s) {
		return ss
	}
	return append(ss, s)
}
