package fibo

import "github.com/c360studio/semstreams/vocabulary"

// Class predicates describe ontology classes in exported graphs.
const (
	// ClassLabel is a human-readable class label.
	ClassLabel = "fibo.class.label"

	// ClassComment is free text attached to a class.
	ClassComment = "fibo.class.comment"

	// ClassDefinition is the formal FIBO definition of a class.
	ClassDefinition = "fibo.class.definition"

	// ClassSubClassOf links a class to a direct named superclass.
	ClassSubClassOf = "fibo.class.subclass_of"

	// ClassEquivalentTo links a class to a named equivalent class.
	ClassEquivalentTo = "fibo.class.equivalent_to"
)

// Property predicates describe object and data properties.
const (
	// PropertyLabel is a human-readable property label.
	PropertyLabel = "fibo.property.label"

	// PropertyComment is free text attached to a property.
	PropertyComment = "fibo.property.comment"

	// PropertyDefinition is the formal FIBO definition of a property.
	PropertyDefinition = "fibo.property.definition"

	// PropertyDomain links a property to a class it applies from.
	PropertyDomain = "fibo.property.domain"

	// PropertyRange links a property to a class or datatype it applies to.
	PropertyRange = "fibo.property.range"
)

func init() {
	vocabulary.Register(ClassLabel,
		vocabulary.WithDescription("Human-readable class label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSLabel),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 1))

	vocabulary.Register(ClassComment,
		vocabulary.WithDescription("Free-text comment on a class"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSComment))

	vocabulary.Register(ClassDefinition,
		vocabulary.WithDescription("Formal definition of a class"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SKOSDefinition))

	vocabulary.Register(ClassSubClassOf,
		vocabulary.WithDescription("Direct named superclass"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSSubClassOf))

	vocabulary.Register(ClassEquivalentTo,
		vocabulary.WithDescription("Named equivalent class"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OWLEquivalentClass))

	vocabulary.Register(PropertyLabel,
		vocabulary.WithDescription("Human-readable property label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSLabel),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 1))

	vocabulary.Register(PropertyComment,
		vocabulary.WithDescription("Free-text comment on a property"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSComment))

	vocabulary.Register(PropertyDefinition,
		vocabulary.WithDescription("Formal definition of a property"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SKOSDefinition))

	vocabulary.Register(PropertyDomain,
		vocabulary.WithDescription("Class the property applies from"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSDomain))

	vocabulary.Register(PropertyRange,
		vocabulary.WithDescription("Class or datatype the property applies to"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSRange))
}

// PredicateIRI returns the W3C IRI registered for a dotted predicate, or the
// predicate itself when none is registered.
func PredicateIRI(predicate string) string {
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	return predicate
}

// IsObjectPredicate reports predicates whose objects are IRIs rather than
// literals.
func IsObjectPredicate(predicate string) bool {
	meta := vocabulary.GetPredicateMetadata(predicate)
	return meta != nil && meta.DataType == "entity_id"
}
