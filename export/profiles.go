package export

import (
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/vocabulary/fibo"
)

// Profile determines how much of each entity is exported.
type Profile string

const (
	// ProfileHierarchy exports types, labels and the subclass hierarchy.
	ProfileHierarchy Profile = "hierarchy"

	// ProfileFull adds comments, definitions, equivalences, property
	// domains and ranges, and individuals.
	ProfileFull Profile = "full"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// IncludeAnnotations adds comments and definitions.
	IncludeAnnotations bool

	// IncludeAxioms adds equivalences, domains and ranges.
	IncludeAxioms bool

	// IncludeIndividuals exports named individuals.
	IncludeIndividuals bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileHierarchy: {
		Name:        ProfileHierarchy,
		Description: "Types, labels and subclass links only",
	},
	ProfileFull: {
		Name:               ProfileFull,
		Description:        "Everything the loaded graph knows",
		IncludeAnnotations: true,
		IncludeAxioms:      true,
		IncludeIndividuals: true,
	},
}

// GetProfileConfig returns the configuration for a profile, falling back to
// the full profile.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileFull]
}

// Kind is the kind of exported entity.
type Kind string

// Entity kinds.
const (
	KindClass          Kind = "class"
	KindObjectProperty Kind = "object_property"
	KindDataProperty   Kind = "data_property"
	KindIndividual     Kind = "individual"
)

// TypeIRIs returns the OWL type assertions for an entity kind.
func TypeIRIs(kind Kind, functional bool) []string {
	var types []string
	switch kind {
	case KindClass:
		types = []string{fibo.OWLClass}
	case KindObjectProperty:
		types = []string{fibo.OWLObjectProperty}
	case KindDataProperty:
		types = []string{fibo.OWLDatatypeProperty}
	case KindIndividual:
		types = []string{fibo.OWLNamedIndividual}
	}
	if functional && (kind == KindObjectProperty || kind == KindDataProperty) {
		types = append(types, fibo.OWLFunctionalProperty)
	}
	return types
}

// propertyKind maps an ontology property kind to an export kind.
func propertyKind(p *ontology.Property) Kind {
	if p.Kind == ontology.DataProperty {
		return KindDataProperty
	}
	return KindObjectProperty
}

// classEntity builds the exported form of a class.
func classEntity(c *ontology.Class, cfg ProfileConfig) Entity {
	e := Entity{IRI: c.IRI, Kind: KindClass, Types: TypeIRIs(KindClass, false)}
	for _, l := range c.Labels {
		e.add(fibo.ClassLabel, l)
	}
	for _, s := range c.Superclasses() {
		e.add(fibo.ClassSubClassOf, s.IRI)
	}
	if cfg.IncludeAnnotations {
		for _, v := range c.Comments {
			e.add(fibo.ClassComment, v)
		}
		for _, v := range c.Definitions {
			e.add(fibo.ClassDefinition, v)
		}
	}
	if cfg.IncludeAxioms {
		for _, iri := range c.EquivalentIRIs {
			e.add(fibo.ClassEquivalentTo, iri)
		}
	}
	return e
}

// propertyEntity builds the exported form of a property.
func propertyEntity(p *ontology.Property, cfg ProfileConfig) Entity {
	kind := propertyKind(p)
	e := Entity{IRI: p.IRI, Kind: kind, Types: TypeIRIs(kind, p.Functional)}
	for _, l := range p.Labels {
		e.add(fibo.PropertyLabel, l)
	}
	if cfg.IncludeAnnotations {
		for _, v := range p.Comments {
			e.add(fibo.PropertyComment, v)
		}
		for _, v := range p.Definitions {
			e.add(fibo.PropertyDefinition, v)
		}
	}
	if cfg.IncludeAxioms {
		for _, iri := range p.DomainIRIs {
			e.add(fibo.PropertyDomain, iri)
		}
		for _, iri := range p.RangeIRIs {
			e.add(fibo.PropertyRange, iri)
		}
	}
	return e
}

// individualEntity builds the exported form of a named individual. Its
// asserted classes become additional rdf:type values.
func individualEntity(ind *ontology.Individual) Entity {
	types := append(TypeIRIs(KindIndividual, false), ind.TypeIRIs...)
	e := Entity{IRI: ind.IRI, Kind: KindIndividual, Types: types}
	for _, l := range ind.Labels {
		e.add(fibo.ClassLabel, l)
	}
	return e
}
