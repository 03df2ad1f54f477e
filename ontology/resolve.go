package ontology

import (
	"fmt"
	"strings"
)

// ResolveClass maps a user-supplied class name to the canonical class name by
// case-insensitive equality. It never guesses: names that match nothing return
// ErrNotFound. When several distinct classes fold to the same name, the one
// spelled exactly like the input wins; otherwise an *AmbiguousError is
// returned.
func (g *Graph) ResolveClass(name string) (string, error) {
	name = strings.TrimSpace(name)
	cands := g.classByFold[strings.ToLower(name)]
	switch len(cands) {
	case 0:
		return "", fmt.Errorf("class %q: %w", name, ErrNotFound)
	case 1:
		return cands[0].Name, nil
	}

	var exact []*Class
	for _, c := range cands {
		if c.Name == name {
			exact = append(exact, c)
		}
	}
	if len(exact) == 1 {
		return exact[0].Name, nil
	}

	amb := &AmbiguousError{Name: name}
	for _, c := range cands {
		amb.Candidates = append(amb.Candidates, c.Name+" <"+c.IRI+">")
	}
	return "", amb
}

// ResolveProperty is ResolveClass for property names.
func (g *Graph) ResolveProperty(name string) (string, error) {
	name = strings.TrimSpace(name)
	cands := g.propByFold[strings.ToLower(name)]
	switch len(cands) {
	case 0:
		return "", fmt.Errorf("property %q: %w", name, ErrNotFound)
	case 1:
		return cands[0].Name, nil
	}

	var exact []*Property
	for _, p := range cands {
		if p.Name == name {
			exact = append(exact, p)
		}
	}
	if len(exact) == 1 {
		return exact[0].Name, nil
	}

	amb := &AmbiguousError{Name: name}
	for _, p := range cands {
		amb.Candidates = append(amb.Candidates, p.Name+" <"+p.IRI+">")
	}
	return "", amb
}
