package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360studio/semfibo/planner"
	"github.com/c360studio/semfibo/query"
)

// operation binds a planner tool to the query it runs. The first classArgs
// arguments are class names resolved before run is called.
type operation struct {
	tool      planner.Tool
	classArgs int
	run       func(ops *query.Ops, args []string) (string, error)
}

func one(fn func(*query.Ops, string) string) func(*query.Ops, []string) (string, error) {
	return func(ops *query.Ops, args []string) (string, error) {
		return fn(ops, args[0]), nil
	}
}

func two(fn func(*query.Ops, string, string) string) func(*query.Ops, []string) (string, error) {
	return func(ops *query.Ops, args []string) (string, error) {
		return fn(ops, args[0], args[1]), nil
	}
}

func none(fn func(*query.Ops) string) func(*query.Ops, []string) (string, error) {
	return func(ops *query.Ops, _ []string) (string, error) {
		return fn(ops), nil
	}
}

// catalog lists every operation in the order the planner sees them.
var catalog = []operation{
	{
		tool:      planner.Tool{Name: "get_superclasses", Params: []string{"class_name"}, Required: 1, Description: "Direct parent classes of a class"},
		classArgs: 1,
		run:       one((*query.Ops).Superclasses),
	},
	{
		tool:      planner.Tool{Name: "get_subclasses", Params: []string{"class_name"}, Required: 1, Description: "Direct child classes of a class"},
		classArgs: 1,
		run:       one((*query.Ops).Subclasses),
	},
	{
		tool:      planner.Tool{Name: "get_all_superclasses", Params: []string{"class_name"}, Required: 1, Description: "Full inheritance chain up to the root, level by level"},
		classArgs: 1,
		run:       one((*query.Ops).AllSuperclasses),
	},
	{
		tool:      planner.Tool{Name: "get_all_subclasses", Params: []string{"class_name"}, Required: 1, Description: "Every descendant of a class, level by level"},
		classArgs: 1,
		run:       one((*query.Ops).AllSubclasses),
	},
	{
		tool:      planner.Tool{Name: "get_properties", Params: []string{"class_name"}, Required: 1, Description: "Object and data properties that apply to a class"},
		classArgs: 1,
		run:       one((*query.Ops).Properties),
	},
	{
		tool:      planner.Tool{Name: "get_inferred_properties", Params: []string{"class_name"}, Required: 1, Description: "Direct and inherited properties of a class"},
		classArgs: 1,
		run:       one((*query.Ops).InferredProperties),
	},
	{
		tool:      planner.Tool{Name: "describe_class", Params: []string{"class_name"}, Required: 1, Description: "Short description with direct super- and subclasses"},
		classArgs: 1,
		run:       one((*query.Ops).DescribeClass),
	},
	{
		tool:      planner.Tool{Name: "explain_class", Params: []string{"class_name"}, Required: 1, Description: "Labels, definitions and hierarchy of a class"},
		classArgs: 1,
		run:       one((*query.Ops).ExplainClass),
	},
	{
		tool:      planner.Tool{Name: "get_class_info", Params: []string{"class_name"}, Required: 1, Description: "Complete summary: definition, parents, children, properties and related concepts"},
		classArgs: 1,
		run:       one((*query.Ops).ClassInfo),
	},
	{
		tool: planner.Tool{Name: "search_classes_by_keyword", Params: []string{"keyword"}, Required: 1, Description: "Classes whose name, label or comment contains a keyword"},
		run:  one((*query.Ops).SearchByKeyword),
	},
	{
		tool:      planner.Tool{Name: "get_related_concepts", Params: []string{"class_name", "max_depth"}, Required: 1, Description: "Classes reachable through hierarchy and property links (default depth 2)"},
		classArgs: 1,
		run:       relatedConcepts,
	},
	{
		tool:      planner.Tool{Name: "explain_relationship", Params: []string{"class_name_1", "class_name_2"}, Required: 2, Description: "How two classes relate: subclass, linking properties, common ancestors"},
		classArgs: 2,
		run:       two((*query.Ops).ExplainRelationship),
	},
	{
		tool:      planner.Tool{Name: "get_reasoning_chain", Params: []string{"class_name_1", "class_name_2"}, Required: 2, Description: "Inheritance path between two classes"},
		classArgs: 2,
		run:       two((*query.Ops).ReasoningChain),
	},
	{
		tool: planner.Tool{Name: "get_property_details", Params: []string{"property_name"}, Required: 1, Description: "Labels, domain, range and kind of a property"},
		run:  one((*query.Ops).PropertyDetails),
	},
	{
		tool: planner.Tool{Name: "get_ontology_stats", Description: "Counts of classes, properties, individuals and loaded modules"},
		run:  none((*query.Ops).Stats),
	},
	{
		tool: planner.Tool{Name: "list_classes", Description: "Alphabetical list of loaded classes"},
		run:  none((*query.Ops).ListClasses),
	},
	{
		tool: planner.Tool{Name: "explore_domains", Description: "Loaded classes grouped by FIBO domain"},
		run:  none((*query.Ops).ExploreDomains),
	},
	{
		tool: planner.Tool{Name: "suggest_classes", Params: []string{"partial_name"}, Required: 1, Description: "Class names close to a misspelled or partial name"},
		run:  one((*query.Ops).SuggestClasses),
	},
}

// badRequest marks an argument error whose message is shown as is.
type badRequest string

func (e badRequest) Error() string { return string(e) }

func relatedConcepts(ops *query.Ops, args []string) (string, error) {
	depth := query.DefaultDepth
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		d, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || d < 0 {
			return "", badRequest(fmt.Sprintf("max_depth must be a non-negative integer, got '%s'", args[1]))
		}
		depth = d
	}
	return ops.RelatedConcepts(args[0], depth), nil
}
