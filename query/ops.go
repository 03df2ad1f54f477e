// Package query implements the ontology question catalog: direct hierarchy
// lookups, property listings, keyword search, bounded related-concept
// discovery and pairwise relationship explanation.
//
// Every operation returns user-facing text. Names that do not resolve produce
// a not-found message rather than an error, so callers can print whatever
// comes back.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/semfibo/ontology"
)

// Output caps.
const (
	MaxSearchResults   = 10
	MaxRelated         = 15
	MaxListed          = 100
	MaxCommonAncestors = 3
	MaxSiblings        = 5
	MaxDomainExamples  = 5
	MaxSuggestions     = 3

	// DefaultDepth is the related-concepts depth used when none is given.
	DefaultDepth = 2

	maxMatchText = 100
)

// Ops runs catalog operations against one graph.
type Ops struct {
	g   *ontology.Graph
	set ontology.ModuleSet
}

// Option configures Ops.
type Option func(*Ops)

// WithModuleSet names the module set the graph was loaded from, for stats and
// domain overviews.
func WithModuleSet(set ontology.ModuleSet) Option {
	return func(o *Ops) {
		o.set = set
	}
}

// New creates Ops over g.
func New(g *ontology.Graph, opts ...Option) *Ops {
	o := &Ops{g: g}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Graph returns the graph the operations read.
func (o *Ops) Graph() *ontology.Graph {
	return o.g
}

// NotFound is the message returned for a class name that does not resolve.
func NotFound(name string) string {
	return fmt.Sprintf("Class '%s' not found. Try another or check spelling.", name)
}

// Ambiguous is the message returned for a class name that folds onto several
// classes.
func Ambiguous(err *ontology.AmbiguousError) string {
	return fmt.Sprintf("Class name '%s' is ambiguous. Candidates: %s.",
		err.Name, strings.Join(err.Candidates, ", "))
}

// display is the class name, followed by the IRI when the name does not
// identify one class.
func (o *Ops) display(name, iri string) string {
	if _, unique := o.g.Class(name); unique {
		return name
	}
	return name + " <" + iri + ">"
}

// ResolveMessage turns a resolution error into user-facing text.
func ResolveMessage(name string, err error) string {
	var amb *ontology.AmbiguousError
	if errors.As(err, &amb) {
		return Ambiguous(amb)
	}
	return NotFound(name)
}

// class looks name up exactly, then case-insensitively. On failure the
// returned string is the message to show.
func (o *Ops) class(name string) (*ontology.Class, string) {
	if c, ok := o.g.Class(name); ok {
		return c, ""
	}
	canonical, err := o.g.ResolveClass(name)
	if err != nil {
		return nil, ResolveMessage(name, err)
	}
	c, ok := o.g.Class(canonical)
	if !ok {
		return nil, NotFound(name)
	}
	return c, ""
}

func joinOr(names []string, empty string) string {
	if len(names) == 0 {
		return empty
	}
	return strings.Join(names, ", ")
}

func bullets(b *strings.Builder, names []string, limit int) {
	for i, n := range names {
		if limit > 0 && i == limit {
			fmt.Fprintf(b, "\n  ... and %d more", len(names)-limit)
			return
		}
		b.WriteString("\n  - ")
		b.WriteString(n)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func descriptions(c *ontology.Class) []string {
	out := make([]string, 0, len(c.Comments)+len(c.Definitions))
	out = append(out, c.Definitions...)
	out = append(out, c.Comments...)
	return out
}
