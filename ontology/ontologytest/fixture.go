// Package ontologytest provides fixture ontologies for tests.
//
// The embedded testdata mirrors the layout of the FIBO "core" module set at a
// much smaller scale: three modules with DOCTYPE entities, labels,
// definitions, restrictions, unionOf domains and datatype ranges.
package ontologytest

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/rdf"
	"github.com/c360studio/semfibo/vocabulary/fibo"
)

//go:embed testdata
var fixtures embed.FS

// CoreModules lists the fixture modules in load order.
var CoreModules = []string{
	"FND/Accounting/AccountingEquity.rdf",
	"FND/OwnershipAndControl/Ownership.rdf",
	"SEC/Equities/EquityInstruments.rdf",
}

// CoreSet is a module set over the fixture modules.
var CoreSet = ontology.ModuleSet{
	Name:        ontology.SetCore,
	DisplayName: "Core Financial Concepts",
	Modules:     CoreModules,
}

// WriteModules copies the fixture modules into a temporary directory and
// returns it, for tests that load from disk.
func WriteModules(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	err := fs.WalkDir(fixtures, "testdata", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fixtures.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("testdata", filepath.FromSlash(path))
		if err != nil {
			return err
		}
		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		t.Fatalf("write fixture modules: %v", err)
	}
	return dir
}

// Core builds the fixture graph straight from the embedded modules.
func Core(t testing.TB) *ontology.Graph {
	t.Helper()
	b := ontology.NewBuilder()
	for i, m := range CoreModules {
		f, err := fixtures.Open("testdata/" + m)
		if err != nil {
			t.Fatalf("open fixture %s: %v", m, err)
		}
		triples, err := rdf.Decode(f, "", rdf.WithBlankPrefix(string(rune('a'+i))+"_"))
		f.Close()
		if err != nil {
			t.Fatalf("decode fixture %s: %v", m, err)
		}
		b.Add(m, triples)
	}
	return b.Build()
}

// Namespace is the IRI prefix used by Hierarchy.
const Namespace = "https://example.org/test/"

// Hierarchy builds a graph from (subclass, superclass) name pairs. A pair with
// an empty superclass only declares the class.
func Hierarchy(pairs ...[2]string) *ontology.Graph {
	var triples []rdf.Triple
	declare := func(name string) {
		triples = append(triples, rdf.Triple{
			Subject:   rdf.IRI(Namespace + name),
			Predicate: rdf.IRI(fibo.RDFType),
			Object:    rdf.IRI(fibo.OWLClass),
		})
	}
	for _, p := range pairs {
		declare(p[0])
		if p[1] == "" {
			continue
		}
		declare(p[1])
		triples = append(triples, rdf.Triple{
			Subject:   rdf.IRI(Namespace + p[0]),
			Predicate: rdf.IRI(fibo.RDFSSubClassOf),
			Object:    rdf.IRI(Namespace + p[1]),
		})
	}
	b := ontology.NewBuilder()
	b.Add("hierarchy", triples)
	return b.Build()
}
