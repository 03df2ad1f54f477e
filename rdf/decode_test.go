package rdf_test

import (
	"strings"
	"testing"

	"github.com/c360studio/semfibo/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE rdf:RDF [
	<!ENTITY ex "https://example.org/onto/">
	<!ENTITY ex-acc "&ex;Accounting/">
	<!ENTITY owl "http://www.w3.org/2002/07/owl#">
	<!ENTITY rdfs "http://www.w3.org/2000/01/rdf-schema#">
	<!ENTITY xsd "http://www.w3.org/2001/XMLSchema#">
]>
<rdf:RDF xml:base="https://example.org/onto/Accounting/"
	xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
	xmlns:owl="http://www.w3.org/2002/07/owl#"
	xmlns:skos="http://www.w3.org/2004/02/skos/core#">
	<owl:Class rdf:about="&ex-acc;Equity">
		<rdfs:label xml:lang="en">equity</rdfs:label>
		<rdfs:subClassOf rdf:resource="&ex-acc;Asset"/>
		<rdfs:subClassOf>
			<owl:Restriction>
				<owl:onProperty rdf:resource="&ex-acc;hasAmount"/>
				<owl:someValuesFrom rdf:resource="&xsd;decimal"/>
			</owl:Restriction>
		</rdfs:subClassOf>
	</owl:Class>
	<rdf:Description rdf:ID="Local" rdfs:comment="attribute literal">
		<rdf:type rdf:resource="&owl;Class"/>
		<rdfs:seeAlso rdf:parseType="Resource">
			<rdfs:label>nested</rdfs:label>
		</rdfs:seeAlso>
	</rdf:Description>
	<owl:ObjectProperty rdf:about="relative">
		<rdfs:domain>
			<owl:Class>
				<owl:unionOf rdf:parseType="Collection">
					<rdf:Description rdf:about="&ex-acc;Equity"/>
					<rdf:Description rdf:about="&ex-acc;Asset"/>
				</owl:unionOf>
			</owl:Class>
		</rdfs:domain>
		<rdfs:range rdf:nodeID="r1"/>
		<skos:definition rdf:datatype="&xsd;string">typed text</skos:definition>
		<rdfs:comment rdf:parseType="Literal"><b>bold</b> text</rdfs:comment>
	</owl:ObjectProperty>
</rdf:RDF>`

func find(triples []rdf.Triple, subj, pred string) []rdf.Term {
	var out []rdf.Term
	for _, t := range triples {
		if t.Subject.Key() == subj && t.Predicate.Value == pred {
			out = append(out, t.Object)
		}
	}
	return out
}

func TestDecode(t *testing.T) {
	triples, err := rdf.Decode(strings.NewReader(sampleDoc), "")
	require.NoError(t, err)
	require.NotEmpty(t, triples)

	const (
		acc    = "https://example.org/onto/Accounting/"
		rdfs   = "http://www.w3.org/2000/01/rdf-schema#"
		owl    = "http://www.w3.org/2002/07/owl#"
		equity = acc + "Equity"
	)

	t.Run("entities and typed node elements", func(t *testing.T) {
		types := find(triples, equity, rdf.RDFType)
		require.Len(t, types, 1)
		assert.Equal(t, owl+"Class", types[0].Value)
	})

	t.Run("language tagged literal", func(t *testing.T) {
		labels := find(triples, equity, rdfs+"label")
		require.Len(t, labels, 1)
		assert.Equal(t, "equity", labels[0].Value)
		assert.Equal(t, "en", labels[0].Lang)
	})

	t.Run("resource and nested blank node objects", func(t *testing.T) {
		supers := find(triples, equity, rdfs+"subClassOf")
		require.Len(t, supers, 2)
		assert.True(t, supers[0].IsIRI())
		assert.Equal(t, acc+"Asset", supers[0].Value)
		require.True(t, supers[1].IsBlank())

		onProp := find(triples, supers[1].Key(), owl+"onProperty")
		require.Len(t, onProp, 1)
		assert.Equal(t, acc+"hasAmount", onProp[0].Value)
	})

	t.Run("rdf:ID against xml:base", func(t *testing.T) {
		local := acc + "#Local"
		assert.Equal(t, []rdf.Term{rdf.IRI(owl + "Class")}, find(triples, local, rdf.RDFType))
		comments := find(triples, local, rdfs+"comment")
		require.Len(t, comments, 1)
		assert.Equal(t, "attribute literal", comments[0].Value)
	})

	t.Run("parseType Resource", func(t *testing.T) {
		seeAlso := find(triples, acc+"#Local", rdfs+"seeAlso")
		require.Len(t, seeAlso, 1)
		require.True(t, seeAlso[0].IsBlank())
		labels := find(triples, seeAlso[0].Key(), rdfs+"label")
		require.Len(t, labels, 1)
		assert.Equal(t, "nested", labels[0].Value)
	})

	t.Run("relative about and collection", func(t *testing.T) {
		prop := acc + "relative"
		domain := find(triples, prop, rdfs+"domain")
		require.Len(t, domain, 1)
		union := find(triples, domain[0].Key(), owl+"unionOf")
		require.Len(t, union, 1)

		var members []string
		for cell := union[0]; cell.Value != rdf.RDFNil; {
			first := find(triples, cell.Key(), rdf.RDFFirst)
			require.Len(t, first, 1)
			members = append(members, first[0].Value)
			rest := find(triples, cell.Key(), rdf.RDFRest)
			require.Len(t, rest, 1)
			cell = rest[0]
		}
		assert.Equal(t, []string{equity, acc + "Asset"}, members)
	})

	t.Run("nodeID datatype and XML literal", func(t *testing.T) {
		prop := acc + "relative"
		rng := find(triples, prop, rdfs+"range")
		require.Len(t, rng, 1)
		assert.Equal(t, rdf.Blank("bid-r1"), rng[0])

		def := find(triples, prop, "http://www.w3.org/2004/02/skos/core#definition")
		require.Len(t, def, 1)
		assert.Equal(t, "http://www.w3.org/2001/XMLSchema#string", def[0].Datatype)

		comment := find(triples, prop, rdfs+"comment")
		require.Len(t, comment, 1)
		assert.Equal(t, rdf.RDFXMLLiteral, comment[0].Datatype)
		assert.Contains(t, comment[0].Value, "bold")
		assert.Contains(t, comment[0].Value, "text")
	})
}

func TestDecode_BlankPrefix(t *testing.T) {
	doc := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="https://example.org/">
		<rdf:Description><ex:p>v</ex:p></rdf:Description>
	</rdf:RDF>`

	triples, err := rdf.Decode(strings.NewReader(doc), "", rdf.WithBlankPrefix("m7_"))
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.True(t, strings.HasPrefix(triples[0].Subject.Value, "m7_"))
	assert.Equal(t, "https://example.org/p", triples[0].Predicate.Value)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty document", doc: ""},
		{name: "undeclared entity", doc: `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description rdf:about="&missing;X"/></rdf:RDF>`},
		{name: "truncated", doc: `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rdf.Decode(strings.NewReader(tt.doc), "")
			assert.Error(t, err)
		})
	}
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		iri  string
		want string
	}{
		{"https://spec.edmcouncil.org/fibo/ontology/FND/Accounting/AccountingEquity/ShareholdersEquity", "ShareholdersEquity"},
		{"http://www.w3.org/2001/XMLSchema#decimal", "decimal"},
		{"https://example.org/onto/", "onto"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rdf.LocalName(tt.iri), tt.iri)
	}
}

func TestTerm_String(t *testing.T) {
	assert.Equal(t, "<https://example.org/a>", rdf.IRI("https://example.org/a").String())
	assert.Equal(t, "_:b1", rdf.Blank("b1").String())
	assert.Equal(t, `"say \"hi\""@en`, rdf.Literal(`say "hi"`, "en", "").String())
	assert.Equal(t, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`,
		rdf.Literal("1", "", "http://www.w3.org/2001/XMLSchema#integer").String())
}
