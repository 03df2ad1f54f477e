package query_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/ontology/ontologytest"
	"github.com/c360studio/semfibo/query"
	"github.com/c360studio/semfibo/rdf"
	"github.com/c360studio/semfibo/vocabulary/fibo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coreOps(t *testing.T) *query.Ops {
	t.Helper()
	return query.New(ontologytest.Core(t), query.WithModuleSet(ontologytest.CoreSet))
}

func TestSuperclasses_DirectOnly(t *testing.T) {
	ops := coreOps(t)

	got := ops.Superclasses("ShareholdersEquity")
	assert.Equal(t, "Superclasses of 'ShareholdersEquity':\n  - OwnersEquity", got)
	assert.NotContains(t, got, "MonetaryAmount")
	assert.NotContains(t, got, "- Equity")

	got = ops.Subclasses("ShareholdersEquity")
	assert.Equal(t, "Subclasses of 'ShareholdersEquity':\n  - PaidInCapital\n  - RetainedEarnings\n  - TreasuryStock", got)
	assert.NotContains(t, got, "CapitalSurplus")

	assert.Equal(t, "No superclasses found for 'Party'.", ops.Superclasses("Party"))
	assert.Equal(t, "No subclasses found for 'CapitalSurplus'.", ops.Subclasses("CapitalSurplus"))
}

func TestOps_NotFound(t *testing.T) {
	ops := coreOps(t)
	want := "Class 'OwnersEquit' not found. Try another or check spelling."

	assert.Equal(t, want, query.NotFound("OwnersEquit"))
	assert.Equal(t, want, ops.Superclasses("OwnersEquit"))
	assert.Equal(t, want, ops.Properties("OwnersEquit"))
	assert.Equal(t, want, ops.RelatedConcepts("OwnersEquit", 2))
	assert.Equal(t, want, ops.ExplainRelationship("Equity", "OwnersEquit"))
}

func TestOps_CaseInsensitiveNames(t *testing.T) {
	ops := coreOps(t)
	assert.Equal(t, ops.Superclasses("ShareholdersEquity"), ops.Superclasses("sharEholdersEquity"))
}

func TestProperties(t *testing.T) {
	ops := coreOps(t)

	assert.Equal(t,
		"Object properties of 'ShareholdersEquity': hasReportingCurrency, isEquityOf\n"+
			"Data properties of 'ShareholdersEquity': hasRetainedAmount",
		ops.Properties("ShareholdersEquity"))

	assert.Equal(t,
		"Object properties of 'Share': hasShareholder, isEvidenceOf\n"+
			"Data properties of 'Share': hasParValue",
		ops.Properties("Share"))

	assert.Equal(t, "No properties found for 'Currency'.", ops.Properties("Currency"))
}

func TestInferredProperties(t *testing.T) {
	ops := coreOps(t)

	got := ops.InferredProperties("ShareholdersEquity")
	assert.Contains(t, got, "Direct properties (1):\n  - hasRetainedAmount (data property)")
	assert.Contains(t, got, "Inherited properties (2):")
	assert.Contains(t, got, "  - hasReportingCurrency (object property, from OwnersEquity)")
	assert.Contains(t, got, "  - isEquityOf (object property, from OwnersEquity)")
}

func TestDescribeAndExplainClass(t *testing.T) {
	ops := coreOps(t)

	assert.Equal(t,
		"ShareholdersEquity\nSuperclasses: OwnersEquity\nSubclasses: PaidInCapital, RetainedEarnings, TreasuryStock",
		ops.DescribeClass("ShareholdersEquity"))
	assert.Equal(t, "Party\nSuperclasses: none\nSubclasses: Organization, Owner", ops.DescribeClass("party"))

	got := ops.ExplainClass("ShareholdersEquity")
	assert.True(t, strings.HasPrefix(got, "ShareholdersEquity\n"))
	assert.Contains(t, got, "Label: shareholders' equity")
	assert.Contains(t, got, "Definition: equity of a corporation attributable to its shareholders")
	assert.Contains(t, got, "Superclasses: OwnersEquity")
	assert.Contains(t, got, "Restrictions: hasRetainedAmount some decimal")
	assert.NotContains(t, ops.DescribeClass("ShareholdersEquity"), "Label:")

	got = ops.ExplainClass("Share")
	assert.Contains(t, got, "Equivalent to: Stock")
	assert.Contains(t, got, "Module: SEC/Equities/EquityInstruments.rdf")

	got = ops.ExplainClass("OwnersEquity")
	assert.Contains(t, got, "Definition: net worth of a business, representing what the owners hold after liabilities are settled | Also known as net worth for sole proprietorships.")
}

func TestClassInfo(t *testing.T) {
	ops := coreOps(t)

	got := ops.ClassInfo("RetainedEarnings")
	assert.Contains(t, got, "Class info: 'RetainedEarnings'")
	assert.Contains(t, got, "Direct parents: ShareholdersEquity")
	assert.Contains(t, got, "Direct children: none")
	assert.Contains(t, got, "Direct properties: none")
	assert.Contains(t, got, "Inherited properties: hasReportingCurrency, hasRetainedAmount, isEquityOf")
	assert.Contains(t, got, "Related concepts: PaidInCapital, TreasuryStock")

	assert.NotContains(t, ops.ClassInfo("Shareholder"), "Related concepts:")
}

func TestClassInfo_SiblingCap(t *testing.T) {
	var pairs [][2]string
	for i := 1; i <= 8; i++ {
		pairs = append(pairs, [2]string{fmt.Sprintf("Child%d", i), "Root"})
	}
	ops := query.New(ontologytest.Hierarchy(pairs...))

	got := ops.ClassInfo("Child1")
	assert.Contains(t, got, "Related concepts: Child2, Child3, Child4, Child5, Child6")
	assert.NotContains(t, got, "Child7")
}

func TestAllSuperAndSubclasses(t *testing.T) {
	ops := coreOps(t)

	assert.Equal(t,
		"Inheritance chain for 'ShareholdersEquity':\nLevel 1: OwnersEquity\nLevel 2: Equity\nLevel 3: MonetaryAmount\nTotal ancestors: 3",
		ops.AllSuperclasses("ShareholdersEquity"))
	assert.Equal(t,
		"Descendants of 'OwnersEquity':\nLevel 1: ShareholdersEquity\nLevel 2: PaidInCapital, RetainedEarnings, TreasuryStock\nLevel 3: CapitalSurplus\nTotal descendants: 5",
		ops.AllSubclasses("OwnersEquity"))
	assert.Equal(t, "No superclasses found for 'Currency'.", ops.AllSuperclasses("Currency"))
}

func TestSearchByKeyword(t *testing.T) {
	ops := coreOps(t)

	matches := ops.Search("equity")
	var got []string
	for _, m := range matches {
		got = append(got, m.Class+":"+m.Type)
	}
	assert.Equal(t, []string{
		"CapitalSurplus:definition",
		"CommonShare:comment",
		"Equity:name",
		"EquityInstrument:name",
		"OwnersEquity:name",
		"Ownership:comment",
		"PreferredShare:comment",
		"Share:definition",
		"ShareholdersEquity:name",
	}, got)

	out := ops.SearchByKeyword("EQUITY")
	assert.True(t, strings.HasPrefix(out, "Found 9 classes matching 'EQUITY':"))
	assert.Contains(t, out, "  - Ownership (comment: Situation in which an owner holds an asset, such as an equity stake.)")
	assert.NotContains(t, out, "more")

	assert.Equal(t, "No classes found matching 'zebra'.", ops.SearchByKeyword("zebra"))
	assert.Equal(t, "Please provide a keyword to search for.", ops.SearchByKeyword("  "))

	label := ops.Search("paid-in")
	require.Len(t, label, 1)
	assert.Equal(t, query.Match{Class: "PaidInCapital", IRI: "https://spec.edmcouncil.org/fibo/ontology/FND/Accounting/AccountingEquity/PaidInCapital", Type: query.MatchLabel, Text: "paid-in capital"}, label[0])
}

func TestSearch_ResultsResolve(t *testing.T) {
	ops := coreOps(t)
	g := ops.Graph()

	for _, kw := range []string{"equity", "share", "owner", "a"} {
		for _, m := range ops.Search(kw) {
			name, err := g.ResolveClass(m.Class)
			require.NoError(t, err, "keyword %q returned %q", kw, m.Class)
			assert.Equal(t, m.Class, name)
		}
	}
}

func TestSearchByKeyword_Overflow(t *testing.T) {
	var pairs [][2]string
	for i := 1; i <= 12; i++ {
		pairs = append(pairs, [2]string{fmt.Sprintf("Item%02d", i), ""})
	}
	ops := query.New(ontologytest.Hierarchy(pairs...))

	out := ops.SearchByKeyword("item")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 1+query.MaxSearchResults+1)
	assert.Equal(t, "Found 12 classes matching 'item':", lines[0])
	assert.Equal(t, "  - Item10 (name: Item10)", lines[10])
	assert.Equal(t, "  ... and 2 more", lines[11])
}

func TestRelatedConcepts(t *testing.T) {
	ops := coreOps(t)
	g := ops.Graph()
	se, ok := g.Class("ShareholdersEquity")
	require.True(t, ok)

	depthOne := ops.Related(se, 1)
	var names []string
	for c := range depthOne {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"OwnersEquity", "PaidInCapital", "RetainedEarnings", "Share", "TreasuryStock"}, names)

	depthTwo := ops.Related(se, 2)
	assert.Len(t, depthTwo, 14)
	equity, _ := g.Class("Equity")
	assert.Equal(t, 2, depthTwo[equity])
	share, _ := g.Class("Share")
	assert.Equal(t, 1, depthTwo[share])
	_, self := depthTwo[se]
	assert.False(t, self)

	out := ops.RelatedConcepts("ShareholdersEquity", 1)
	assert.Equal(t, "Related concepts for 'ShareholdersEquity' (max depth: 1):\n"+
		"  - OwnersEquity (depth 1)\n"+
		"  - PaidInCapital (depth 1)\n"+
		"  - RetainedEarnings (depth 1)\n"+
		"  - Share (depth 1)\n"+
		"  - TreasuryStock (depth 1)", out)
}

func TestRelatedConcepts_ZeroDepth(t *testing.T) {
	ops := coreOps(t)

	for _, name := range ops.Graph().ClassNames() {
		assert.Equal(t,
			fmt.Sprintf("No related concepts found for '%s' within depth 0.", name),
			ops.RelatedConcepts(name, 0))
	}
}

func TestRelatedConcepts_Cap(t *testing.T) {
	var pairs [][2]string
	for i := 1; i <= 20; i++ {
		pairs = append(pairs, [2]string{fmt.Sprintf("Leaf%02d", i), "Root"})
	}
	ops := query.New(ontologytest.Hierarchy(pairs...))

	lines := strings.Split(ops.RelatedConcepts("Root", 2), "\n")
	require.Len(t, lines, 1+query.MaxRelated+1)
	assert.Equal(t, "  - Leaf15 (depth 1)", lines[15])
	assert.Equal(t, "  ... and 5 more", lines[16])

	for _, name := range []string{"Root", "Leaf01"} {
		for depth := 0; depth <= 3; depth++ {
			out := ops.RelatedConcepts(name, depth)
			entries := strings.Count(out, "\n  - ")
			assert.LessOrEqual(t, entries, query.MaxRelated)
		}
	}
}

func TestExplainRelationship(t *testing.T) {
	ops := coreOps(t)

	tests := []struct {
		a, b string
		want []string
	}{
		{a: "Share", b: "ShareholdersEquity", want: []string{"Property 'isEvidenceOf' links 'Share' -> 'ShareholdersEquity'"}},
		{a: "ShareholdersEquity", b: "Equity", want: []string{
			"'ShareholdersEquity' is a subclass of 'Equity' (indirect)",
			"Common ancestors: MonetaryAmount",
		}},
		{a: "Owner", b: "Shareholder", want: []string{
			"'Shareholder' is a subclass of 'Owner' (direct)",
			"Common ancestors: Party",
		}},
		{a: "Shareholder", b: "Organization", want: []string{"Common ancestors: Party"}},
		{a: "OwnersEquity", b: "Organization", want: []string{"Property 'isEquityOf' links 'OwnersEquity' -> 'Organization'"}},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			got := ops.ExplainRelationship(tt.a, tt.b)
			assert.Equal(t, fmt.Sprintf("Relationship between '%s' and '%s':\n", tt.a, tt.b)+strings.Join(tt.want, "\n"), got)

			reversed := ops.ExplainRelationship(tt.b, tt.a)
			assert.Equal(t, body(got), body(reversed), "content is symmetric")
		})
	}

	assert.Equal(t, "No direct relationship found between 'Currency' and 'Party'.", ops.ExplainRelationship("Currency", "Party"))
	assert.Equal(t, "No direct relationship found between 'Party' and 'Currency'.", ops.ExplainRelationship("Party", "Currency"))
}

func body(s string) []string {
	lines := strings.Split(s, "\n")
	return lines[1:]
}

func TestExplainRelationship_CommonAncestorCap(t *testing.T) {
	ops := query.New(ontologytest.Hierarchy(
		[2]string{"A", "P1"}, [2]string{"A", "P2"}, [2]string{"A", "P3"}, [2]string{"A", "P4"},
		[2]string{"B", "P1"}, [2]string{"B", "P2"}, [2]string{"B", "P3"}, [2]string{"B", "P4"},
	))
	got := ops.ExplainRelationship("A", "B")
	assert.Contains(t, got, "Common ancestors: P1, P2, P3")
	assert.NotContains(t, got, "P4")
}

func TestReasoningChain(t *testing.T) {
	ops := coreOps(t)

	assert.Equal(t,
		"Reasoning chain between 'CapitalSurplus' and 'Equity':\n"+
			"'CapitalSurplus' is a 'Equity': CapitalSurplus -> PaidInCapital -> ShareholdersEquity -> OwnersEquity -> Equity",
		ops.ReasoningChain("CapitalSurplus", "Equity"))

	assert.Contains(t, ops.ReasoningChain("Equity", "CapitalSurplus"),
		"'CapitalSurplus' is a 'Equity': CapitalSurplus -> PaidInCapital")

	assert.Equal(t,
		"Reasoning chain between 'Shareholder' and 'Organization':\n"+
			"Nearest common ancestor: 'Party'\n"+
			"  Shareholder -> Owner -> Party\n"+
			"  Organization -> Party",
		ops.ReasoningChain("Shareholder", "Organization"))

	assert.Contains(t, ops.ReasoningChain("Currency", "Share"), "No inheritance relationship found.")
}

func TestPropertyDetails(t *testing.T) {
	ops := coreOps(t)

	assert.Equal(t,
		"Property 'hasRetainedAmount' (data property)\nLabel: has retained amount\nDomain: ShareholdersEquity\nRange: decimal\nFunctional: yes",
		ops.PropertyDetails("HASRETAINEDAMOUNT"))

	got := ops.PropertyDetails("isEquityOf")
	assert.Contains(t, got, "Property 'isEquityOf' (object property)")
	assert.Contains(t, got, "Definition: relates equity to the organization it is held in")
	assert.Contains(t, got, "Domain: OwnersEquity\nRange: Organization")
	assert.NotContains(t, got, "Functional")

	assert.Contains(t, ops.PropertyDetails("hasReportingCurrency"), "Domain: OwnersEquity, Ownership")

	missing := ops.PropertyDetails("hasOwnr")
	assert.True(t, strings.HasPrefix(missing, "Property 'hasOwnr' not found."))
	assert.Contains(t, missing, "Did you mean: hasOwner")
}

func TestStatsAndListClasses(t *testing.T) {
	ops := coreOps(t)

	assert.Equal(t,
		"Ontology statistics (Core Financial Concepts):\nClasses: 17\nProperties: 9\nIndividuals: 2\nLoaded modules: 3",
		ops.Stats())
	assert.True(t, strings.HasPrefix(query.New(ops.Graph()).Stats(), "Ontology statistics:\n"))

	list := ops.ListClasses()
	assert.True(t, strings.HasPrefix(list, "Classes (17):\n  - CapitalSurplus\n  - CommonShare\n"))
	assert.NotContains(t, list, "more")
}

func TestListClasses_Cap(t *testing.T) {
	var pairs [][2]string
	for i := 1; i <= 105; i++ {
		pairs = append(pairs, [2]string{fmt.Sprintf("C%03d", i), ""})
	}
	ops := query.New(ontologytest.Hierarchy(pairs...))

	lines := strings.Split(ops.ListClasses(), "\n")
	require.Len(t, lines, 1+query.MaxListed+1)
	assert.Equal(t, "Classes (105):", lines[0])
	assert.Equal(t, "  - C100", lines[100])
	assert.Equal(t, "  ... and 5 more", lines[101])
}

func TestExploreDomains(t *testing.T) {
	ops := coreOps(t)

	got := ops.ExploreDomains()
	assert.True(t, strings.HasPrefix(got, "FIBO domains (Core Financial Concepts):"))
	assert.Contains(t, got, "Foundations (13 classes):\n  - CapitalSurplus\n  - Currency\n  - Equity\n  - Organization\n  - Owner\n  ... and 8 more")
	assert.NotContains(t, got, "Financial Business and Commerce")
	assert.Contains(t, got, "Securities (4 classes):")
	assert.Less(t, strings.Index(got, "Foundations"), strings.Index(got, "Securities"))
	assert.NotContains(t, got, "Other")
}

func TestSuggest(t *testing.T) {
	ops := coreOps(t)

	s := ops.Suggest("OwnersEquit", query.MaxSuggestions)
	require.NotEmpty(t, s)
	assert.Equal(t, "OwnersEquity", s[0])

	assert.Equal(t, []string{"Share", "Shareholder", "ShareholdersEquity"}, ops.Suggest("Shar", 3))
	assert.Equal(t, []string{"Equity"}, ops.Suggest("EQUITY", 3))
	assert.Empty(t, ops.Suggest("xyzzy", 3))

	assert.Equal(t, "Class 'Equity' exists.", ops.SuggestClasses("equity"))
	assert.Equal(t, "Did you mean one of these?\n  - Share\n  - Shareholder\n  - ShareholdersEquity", ops.SuggestClasses("Shar"))
	assert.Equal(t, "Did you mean 'Currency'?", ops.SuggestClasses("Curency"))
	assert.Equal(t, "No similar classes found for 'xyzzy'. Try 'list classes' to see available options.", ops.SuggestClasses("xyzzy"))
}

func TestOps_Ambiguous(t *testing.T) {
	g := ontologytest.Hierarchy([2]string{"Asset", ""}, [2]string{"ASSET", ""})
	ops := query.New(g)

	got := ops.Superclasses("asset")
	assert.True(t, strings.HasPrefix(got, "Class name 'asset' is ambiguous."), got)
	assert.Equal(t, "No superclasses found for 'Asset'.", ops.Superclasses("Asset"))

	_, err := g.ResolveClass("asset")
	assert.ErrorIs(t, err, ontology.ErrAmbiguous)
}

func TestSharedNames_ShowIRI(t *testing.T) {
	var triples []rdf.Triple
	for _, iri := range []string{"https://a.example/Equity", "https://b.example/Equity", "https://a.example/Share"} {
		triples = append(triples, rdf.Triple{Subject: rdf.IRI(iri), Predicate: rdf.IRI(fibo.RDFType), Object: rdf.IRI(fibo.OWLClass)})
	}
	b := ontology.NewBuilder()
	b.Add("dup", triples)
	g := b.Build()
	ops := query.New(g)

	assert.Equal(t, "Found 2 classes matching 'equity':\n"+
		"  - Equity <https://a.example/Equity> (name: Equity)\n"+
		"  - Equity <https://b.example/Equity> (name: Equity)", ops.SearchByKeyword("equity"))

	assert.Equal(t, 3, g.Stats().Classes)
	assert.Equal(t, "Classes (3):\n"+
		"  - Equity <https://a.example/Equity>\n"+
		"  - Equity <https://b.example/Equity>\n"+
		"  - Share", ops.ListClasses())

	_, err := g.ResolveClass("Equity")
	assert.ErrorIs(t, err, ontology.ErrAmbiguous)
	name, err := g.ResolveClass("share")
	require.NoError(t, err)
	assert.Equal(t, "Share", name)
}

func TestUndeclaredClasses_NotListed(t *testing.T) {
	ops := coreOps(t)

	assert.NotContains(t, ops.ListClasses(), "MonetaryAmount")
	assert.Empty(t, ops.Search("monetaryamount"))
	assert.Empty(t, ops.Search("financialinstrument"))
	assert.Contains(t, ops.AllSuperclasses("ShareholdersEquity"), "MonetaryAmount")
}
