package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/c360studio/semfibo/ontology"
)

// Superclasses lists the direct superclasses of a class. Ancestors further up
// are deliberately left out; see AllSuperclasses.
func (o *Ops) Superclasses(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	supers := ontology.Names(c.Superclasses())
	if len(supers) == 0 {
		return fmt.Sprintf("No superclasses found for '%s'.", c.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Superclasses of '%s':", c.Name)
	bullets(&b, supers, 0)
	return b.String()
}

// Subclasses lists the direct subclasses of a class.
func (o *Ops) Subclasses(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	subs := ontology.Names(c.Subclasses())
	if len(subs) == 0 {
		return fmt.Sprintf("No subclasses found for '%s'.", c.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Subclasses of '%s':", c.Name)
	bullets(&b, subs, 0)
	return b.String()
}

// AllSuperclasses lists every ancestor of a class grouped by distance.
func (o *Ops) AllSuperclasses(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	levels := o.g.AncestorLevels(c)
	if len(levels) == 0 {
		return fmt.Sprintf("No superclasses found for '%s'.", c.Name)
	}
	return formatLevels(fmt.Sprintf("Inheritance chain for '%s':", c.Name), "ancestors", levels)
}

// AllSubclasses lists every descendant of a class grouped by distance.
func (o *Ops) AllSubclasses(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	levels := o.g.DescendantLevels(c)
	if len(levels) == 0 {
		return fmt.Sprintf("No subclasses found for '%s'.", c.Name)
	}
	return formatLevels(fmt.Sprintf("Descendants of '%s':", c.Name), "descendants", levels)
}

func formatLevels(header, noun string, levels [][]*ontology.Class) string {
	var b strings.Builder
	b.WriteString(header)
	total := 0
	for i, level := range levels {
		fmt.Fprintf(&b, "\nLevel %d: %s", i+1, strings.Join(ontology.Names(level), ", "))
		total += len(level)
	}
	fmt.Fprintf(&b, "\nTotal %s: %d", noun, total)
	return b.String()
}

// DescribeClass summarises a class: its name and direct hierarchy.
func (o *Ops) DescribeClass(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	var b strings.Builder
	b.WriteString(c.Name)
	fmt.Fprintf(&b, "\nSuperclasses: %s", joinOr(ontology.Names(c.Superclasses()), "none"))
	fmt.Fprintf(&b, "\nSubclasses: %s", joinOr(ontology.Names(c.Subclasses()), "none"))
	return b.String()
}

// ExplainClass is DescribeClass plus labels, comments, definitions,
// restrictions and equivalent classes.
func (o *Ops) ExplainClass(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	var b strings.Builder
	b.WriteString(c.Name)
	if len(c.Labels) > 0 {
		fmt.Fprintf(&b, "\nLabel: %s", strings.Join(c.Labels, ", "))
	}
	if d := descriptions(c); len(d) > 0 {
		fmt.Fprintf(&b, "\nDefinition: %s", strings.Join(d, " | "))
	}
	fmt.Fprintf(&b, "\nSuperclasses: %s", joinOr(ontology.Names(c.Superclasses()), "none"))
	fmt.Fprintf(&b, "\nSubclasses: %s", joinOr(ontology.Names(c.Subclasses()), "none"))
	if len(c.Restrictions) > 0 {
		rs := make([]string, len(c.Restrictions))
		for i, r := range c.Restrictions {
			rs[i] = r.String()
		}
		fmt.Fprintf(&b, "\nRestrictions: %s", strings.Join(rs, "; "))
	}
	if len(c.Equivalents) > 0 {
		fmt.Fprintf(&b, "\nEquivalent to: %s", strings.Join(c.Equivalents, ", "))
	}
	if c.Module != "" {
		fmt.Fprintf(&b, "\nModule: %s", c.Module)
	}
	return b.String()
}

// ClassInfo is a one-shot summary: descriptions, direct hierarchy, direct and
// inherited properties, and a few sibling classes.
func (o *Ops) ClassInfo(name string) string {
	c, msg := o.class(name)
	if c == nil {
		return msg
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Class info: '%s'", c.Name)
	b.WriteString("\n" + strings.Repeat("=", 40))
	if len(c.Labels) > 0 {
		fmt.Fprintf(&b, "\nLabel: %s", strings.Join(c.Labels, ", "))
	}
	if d := descriptions(c); len(d) > 0 {
		fmt.Fprintf(&b, "\nDefinition: %s", strings.Join(d, " | "))
	}
	fmt.Fprintf(&b, "\nDirect parents: %s", joinOr(ontology.Names(c.Superclasses()), "none"))
	fmt.Fprintf(&b, "\nDirect children: %s", joinOr(ontology.Names(c.Subclasses()), "none"))

	direct, inherited := o.g.PropertiesOf(c)
	fmt.Fprintf(&b, "\nDirect properties: %s", joinOr(propertyNames(direct), "none"))
	fmt.Fprintf(&b, "\nInherited properties: %s", joinOr(propertyNames(inherited), "none"))

	if sib := siblings(c); len(sib) > 0 {
		if len(sib) > MaxSiblings {
			sib = sib[:MaxSiblings]
		}
		fmt.Fprintf(&b, "\nRelated concepts: %s", strings.Join(sib, ", "))
	}
	return b.String()
}

// siblings returns the sorted names of classes sharing a direct parent with c.
func siblings(c *ontology.Class) []string {
	seen := map[*ontology.Class]bool{c: true}
	var out []*ontology.Class
	for _, p := range c.Superclasses() {
		for _, s := range p.Subclasses() {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	names := ontology.Names(out)
	slices.Sort(names)
	return names
}

func propertyNames(ps []*ontology.Property) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	slices.Sort(out)
	return out
}
