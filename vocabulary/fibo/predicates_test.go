package fibo

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
	"github.com/stretchr/testify/assert"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		ClassLabel,
		ClassComment,
		ClassDefinition,
		ClassSubClassOf,
		ClassEquivalentTo,
		PropertyLabel,
		PropertyComment,
		PropertyDefinition,
		PropertyDomain,
		PropertyRange,
	}

	for _, pred := range predicates {
		t.Run(pred, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(pred)
			if assert.NotNil(t, meta, "predicate %s not registered", pred) {
				assert.NotEmpty(t, meta.Description)
				assert.NotEmpty(t, meta.StandardIRI)
				assert.Equal(t, "fibo", meta.Domain)
			}
		})
	}
}

func TestPredicateIRI(t *testing.T) {
	assert.Equal(t, "http://www.w3.org/2000/01/rdf-schema#subClassOf", PredicateIRI(ClassSubClassOf))
	assert.Equal(t, SKOSDefinition, PredicateIRI(PropertyDefinition))
	assert.Equal(t, "unregistered.predicate.name", PredicateIRI("unregistered.predicate.name"))

	assert.True(t, IsObjectPredicate(PropertyRange))
	assert.False(t, IsObjectPredicate(ClassLabel))
}

func TestIsDatatype(t *testing.T) {
	tests := []struct {
		iri  string
		want bool
	}{
		{XSDNamespace + "decimal", true},
		{XSDNamespace + "string", true},
		{RDFSLiteral, true},
		{RDFLangString, true},
		{Namespace + "FND/Accounting/CurrencyAmount/MonetaryAmount", false},
		{OWLThing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDatatype(tt.iri), tt.iri)
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		iri  string
		want string
	}{
		{Namespace + "FND/Accounting/AccountingEquity/ShareholdersEquity", "Foundations"},
		{Namespace + "SEC/Equities/EquityInstruments/Share", "Securities"},
		{Namespace + "FBC/FinancialInstruments/FinancialInstruments/FinancialInstrument", "Financial Business and Commerce"},
		{Namespace + "XYZ/Unknown/Thing", OtherDomain},
		{"https://www.omg.org/spec/Commons/Designators/Name", OtherDomain},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DomainOf(tt.iri), tt.iri)
	}
}
