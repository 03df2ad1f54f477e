// Package fibo holds the IRIs the ontology loader interprets and the dotted
// predicate vocabulary used when the loaded graph is exported.
package fibo

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"
)

// W3C namespaces.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	SKOSNamespace = "http://www.w3.org/2004/02/skos/core#"
)

// Namespace is the base IRI of the published FIBO ontology.
const Namespace = "https://spec.edmcouncil.org/fibo/ontology/"

// RDF and RDFS terms.
const (
	RDFType         = RDFNamespace + "type"
	RDFList         = RDFNamespace + "List"
	RDFProperty     = RDFNamespace + "Property"
	RDFPlainLiteral = RDFNamespace + "PlainLiteral"
	RDFLangString   = RDFNamespace + "langString"
	RDFXMLLiteral   = RDFNamespace + "XMLLiteral"

	RDFSClass      = RDFSNamespace + "Class"
	RDFSDatatype   = RDFSNamespace + "Datatype"
	RDFSLiteral    = RDFSNamespace + "Literal"
	RDFSSubClassOf = RDFSNamespace + "subClassOf"
	RDFSDomain     = RDFSNamespace + "domain"
	RDFSRange      = RDFSNamespace + "range"
	RDFSLabel      = vocabulary.RdfsLabel
	RDFSComment    = vocabulary.RdfsComment
)

// OWL terms.
const (
	OWLOntology           = OWLNamespace + "Ontology"
	OWLClass              = OWLNamespace + "Class"
	OWLThing              = OWLNamespace + "Thing"
	OWLNamedIndividual    = OWLNamespace + "NamedIndividual"
	OWLObjectProperty     = OWLNamespace + "ObjectProperty"
	OWLDatatypeProperty   = OWLNamespace + "DatatypeProperty"
	OWLAnnotationProperty = OWLNamespace + "AnnotationProperty"
	OWLFunctionalProperty = OWLNamespace + "FunctionalProperty"
	OWLRestriction        = OWLNamespace + "Restriction"
	OWLOnProperty         = OWLNamespace + "onProperty"
	OWLOnClass            = OWLNamespace + "onClass"
	OWLOnDataRange        = OWLNamespace + "onDataRange"
	OWLSomeValuesFrom     = OWLNamespace + "someValuesFrom"
	OWLAllValuesFrom      = OWLNamespace + "allValuesFrom"
	OWLHasValue           = OWLNamespace + "hasValue"
	OWLCardinality        = OWLNamespace + "cardinality"
	OWLMinCardinality     = OWLNamespace + "minCardinality"
	OWLMaxCardinality     = OWLNamespace + "maxCardinality"
	OWLQualifiedCard      = OWLNamespace + "qualifiedCardinality"
	OWLMinQualifiedCard   = OWLNamespace + "minQualifiedCardinality"
	OWLMaxQualifiedCard   = OWLNamespace + "maxQualifiedCardinality"
	OWLUnionOf            = OWLNamespace + "unionOf"
	OWLImports            = OWLNamespace + "imports"
	OWLEquivalentClass    = vocabulary.OwlEquivalentClass
)

// SKOS terms. FIBO carries its definitions in skos:definition.
const (
	SKOSDefinition = SKOSNamespace + "definition"
	SKOSPrefLabel  = vocabulary.SkosPrefLabel
)

// IsDatatype reports whether iri names a literal datatype rather than a class.
func IsDatatype(iri string) bool {
	switch {
	case strings.HasPrefix(iri, XSDNamespace):
		return true
	case iri == RDFSLiteral, iri == RDFPlainLiteral, iri == RDFLangString, iri == RDFXMLLiteral:
		return true
	case iri == OWLNamespace+"rational", iri == OWLNamespace+"real":
		return true
	}
	return false
}

// Domain is a top-level FIBO domain, identified by the first IRI segment after
// the FIBO namespace.
type Domain struct {
	Code string
	Name string
}

// Domains lists the FIBO domains in display order.
var Domains = []Domain{
	{Code: "FND", Name: "Foundations"},
	{Code: "BE", Name: "Business Entities"},
	{Code: "FBC", Name: "Financial Business and Commerce"},
	{Code: "SEC", Name: "Securities"},
	{Code: "DER", Name: "Derivatives"},
	{Code: "LOAN", Name: "Loans"},
	{Code: "IND", Name: "Indices and Indicators"},
	{Code: "BP", Name: "Business Process"},
	{Code: "CAE", Name: "Corporate Actions and Events"},
	{Code: "MD", Name: "Market Data"},
}

// OtherDomain groups IRIs outside the FIBO namespace.
const OtherDomain = "Other"

// DomainOf returns the display name of the FIBO domain an IRI belongs to, or
// OtherDomain.
func DomainOf(iri string) string {
	rest, ok := strings.CutPrefix(iri, Namespace)
	if !ok {
		return OtherDomain
	}
	code, _, _ := strings.Cut(rest, "/")
	for _, d := range Domains {
		if d.Code == code {
			return d.Name
		}
	}
	return OtherDomain
}
