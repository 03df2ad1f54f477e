// Package rdf decodes RDF/XML documents into flat triples.
//
// The decoder covers the subset of RDF/XML that ontology publishers such as
// FIBO actually emit: DOCTYPE entity declarations, typed node elements,
// rdf:about/rdf:ID/rdf:nodeID subjects, rdf:resource objects, nested node
// elements, the Resource, Collection and Literal parse types, language tags,
// datatypes, xml:base and property attributes.
package rdf

import (
	"fmt"
	"strings"
)

// Namespace IRIs used while decoding.
const (
	RDFNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XMLNS = "http://www.w3.org/XML/1998/namespace"

	RDFType  = RDFNS + "type"
	RDFFirst = RDFNS + "first"
	RDFRest  = RDFNS + "rest"
	RDFNil   = RDFNS + "nil"

	RDFXMLLiteral = RDFNS + "XMLLiteral"
)

// TermKind distinguishes IRIs, blank nodes and literals.
type TermKind int

// Term kinds.
const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Term is a node in an RDF graph.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Blank returns a blank node term.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: id} }

// Literal returns a literal term. lang and datatype may be empty.
func Literal(v, lang, datatype string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: lang, Datatype: datatype}
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether t is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// Key returns a string that identifies the term among subjects.
func (t Term) Key() string {
	if t.Kind == KindBlank {
		return "_:" + t.Value
	}
	return t.Value
}

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		s := `"` + EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// String renders the triple as one N-Triples line without the newline.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// LocalName returns the fragment after '#', or the last path segment.
func LocalName(iri string) string {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	trimmed := strings.TrimRight(iri, "/#")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// EscapeLiteral escapes a literal for N-Triples and Turtle output.
func EscapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
