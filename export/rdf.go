// Package export serialises a loaded ontology graph, or the neighbourhood of
// one class, as Turtle, N-Triples or JSON-LD.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/vocabulary/fibo"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// Triple is one predicate-object pair of an entity. Predicate is a dotted
// vocabulary name that PredicateIRI maps to its W3C IRI.
type Triple struct {
	Predicate string
	Object    string
}

// IsIRI reports whether the object is an IRI rather than a literal.
func (t Triple) IsIRI() bool {
	return fibo.IsObjectPredicate(t.Predicate)
}

// Entity is an exportable subject with its types and triples.
type Entity struct {
	IRI     string
	Kind    Kind
	Types   []string
	Triples []Triple
}

func (e *Entity) add(predicate, object string) {
	e.Triples = append(e.Triples, Triple{Predicate: predicate, Object: object})
}

// RDFExporter collects entities and serialises them.
type RDFExporter struct {
	profile  ProfileConfig
	entities []Entity
	seen     map[string]bool
	prefixes map[string]string
}

// NewRDFExporter creates an exporter with the given profile.
func NewRDFExporter(profile Profile) *RDFExporter {
	return &RDFExporter{
		profile:  GetProfileConfig(profile),
		seen:     make(map[string]bool),
		prefixes: defaultPrefixes(),
	}
}

// defaultPrefixes returns the namespace prefixes used in Turtle and JSON-LD.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  fibo.RDFNamespace,
		"rdfs": fibo.RDFSNamespace,
		"owl":  fibo.OWLNamespace,
		"xsd":  fibo.XSDNamespace,
		"skos": fibo.SKOSNamespace,
		"fibo": fibo.Namespace,
	}
}

// AddEntity adds an entity. Entities are keyed by IRI; later duplicates are
// ignored.
func (e *RDFExporter) AddEntity(entity Entity) {
	if e.seen[entity.IRI] {
		return
	}
	e.seen[entity.IRI] = true
	e.entities = append(e.entities, entity)
}

// Len returns the number of collected entities.
func (e *RDFExporter) Len() int {
	return len(e.entities)
}

// AddGraph adds every class and property of g, and its individuals when the
// profile includes them.
func (e *RDFExporter) AddGraph(g *ontology.Graph) {
	for _, c := range g.Classes() {
		e.AddEntity(classEntity(c, e.profile))
	}
	for _, p := range g.Properties() {
		e.AddEntity(propertyEntity(p, e.profile))
	}
	if e.profile.IncludeIndividuals {
		for _, ind := range g.Individuals() {
			e.AddEntity(individualEntity(ind))
		}
	}
}

// AddNeighbourhood adds c, its direct declared superclasses and subclasses,
// and the properties whose domain includes c.
func (e *RDFExporter) AddNeighbourhood(g *ontology.Graph, c *ontology.Class) {
	e.AddEntity(classEntity(c, e.profile))
	for _, s := range c.Superclasses() {
		if s.Declared {
			e.AddEntity(classEntity(s, e.profile))
		}
	}
	for _, s := range c.Subclasses() {
		e.AddEntity(classEntity(s, e.profile))
	}
	direct, _ := g.PropertiesOf(c)
	for _, p := range direct {
		e.AddEntity(propertyEntity(p, e.profile))
	}
}

// Export serializes all entities to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// Write serializes to w.
func (e *RDFExporter) Write(w io.Writer, format Format) error {
	out, err := e.Export(format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// toTurtle serializes to Turtle format.
func (e *RDFExporter) toTurtle() string {
	w := NewTurtleWriter()
	for prefix, iri := range e.prefixes {
		w.SetPrefix(prefix, iri)
	}
	w.WritePrefixes()

	for _, entity := range e.entities {
		w.WriteSubject(entity.IRI)
		for i, t := range entity.Types {
			w.WriteType(t, i == len(entity.Types)-1 && len(entity.Triples) == 0)
		}
		for i, t := range entity.Triples {
			w.WritePredicate(fibo.PredicateIRI(t.Predicate), t.Object, t.IsIRI(), i == len(entity.Triples)-1)
		}
		w.WriteBlank()
	}
	return w.String()
}

// toNTriples serializes to N-Triples format.
func (e *RDFExporter) toNTriples() string {
	w := NewNTriplesWriter()
	for _, entity := range e.entities {
		for _, t := range entity.Types {
			w.WriteTypeTriple(entity.IRI, t)
		}
		for _, t := range entity.Triples {
			w.WriteTriple(entity.IRI, fibo.PredicateIRI(t.Predicate), t.Object, t.IsIRI())
		}
	}
	return w.String()
}

// toJSONLD serializes to JSON-LD. Repeated predicates become arrays.
func (e *RDFExporter) toJSONLD() (string, error) {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)

	for _, entity := range e.entities {
		props := make(map[string]any)
		for _, t := range entity.Triples {
			key := compactIRI(fibo.PredicateIRI(t.Predicate), e.prefixes)
			var val any = t.Object
			if t.IsIRI() {
				val = map[string]string{"@id": t.Object}
			}
			switch existing := props[key].(type) {
			case nil:
				props[key] = val
			case []any:
				props[key] = append(existing, val)
			default:
				props[key] = []any{existing, val}
			}
		}
		types := make([]string, len(entity.Types))
		for i, t := range entity.Types {
			types[i] = compactIRI(t, e.prefixes)
		}
		w.AddNode(entity.IRI, types, props)
	}
	return w.String()
}

// compactIRI shortens iri with the longest matching prefix. IRIs whose local
// part contains a path separator stay absolute.
func compactIRI(iri string, prefixes map[string]string) string {
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return len(prefixes[keys[i]]) > len(prefixes[keys[j]])
	})
	for _, k := range keys {
		if local, ok := strings.CutPrefix(iri, prefixes[k]); ok && local != "" && !strings.ContainsAny(local, "/#") {
			return k + ":" + local
		}
	}
	return iri
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
