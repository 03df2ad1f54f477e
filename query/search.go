package query

import (
	"fmt"
	"strings"

	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/vocabulary/fibo"
)

// Match types reported by keyword search, in the order they are tried.
const (
	MatchName       = "name"
	MatchLabel      = "label"
	MatchComment    = "comment"
	MatchDefinition = "definition"
)

// Match is one keyword search hit.
type Match struct {
	Class string
	IRI   string
	Type  string
	Text  string
}

// Search finds classes whose name, label, comment or definition contains
// keyword, case-insensitively. Each class matches at most once, on the first
// field that contains the keyword. Results follow class-name order.
func (o *Ops) Search(keyword string) []Match {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil
	}
	var out []Match
	for _, c := range o.g.Classes() {
		if m, ok := matchClass(c, kw); ok {
			out = append(out, m)
		}
	}
	return out
}

func matchClass(c *ontology.Class, kw string) (Match, bool) {
	if strings.Contains(strings.ToLower(c.Name), kw) {
		return Match{Class: c.Name, IRI: c.IRI, Type: MatchName, Text: c.Name}, true
	}
	fields := []struct {
		typ    string
		values []string
	}{
		{MatchLabel, c.Labels},
		{MatchComment, c.Comments},
		{MatchDefinition, c.Definitions},
	}
	for _, f := range fields {
		for _, v := range f.values {
			if strings.Contains(strings.ToLower(v), kw) {
				return Match{Class: c.Name, IRI: c.IRI, Type: f.typ, Text: truncate(v, maxMatchText)}, true
			}
		}
	}
	return Match{}, false
}

// SearchByKeyword formats Search, showing the first MaxSearchResults hits.
func (o *Ops) SearchByKeyword(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "Please provide a keyword to search for."
	}
	matches := o.Search(keyword)
	if len(matches) == 0 {
		return fmt.Sprintf("No classes found matching '%s'.", keyword)
	}
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("%s (%s: %s)", o.display(m.Class, m.IRI), m.Type, m.Text)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d classes matching '%s':", len(matches), keyword)
	bullets(&b, lines, MaxSearchResults)
	return b.String()
}

// ListClasses lists declared classes alphabetically, showing the first
// MaxListed. Names shared by several classes carry the IRI.
func (o *Ops) ListClasses() string {
	classes := o.g.Classes()
	if len(classes) == 0 {
		return "No classes loaded."
	}
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = o.display(c.Name, c.IRI)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Classes (%d):", len(names))
	bullets(&b, names, MaxListed)
	return b.String()
}

// Stats reports entity and module counts.
func (o *Ops) Stats() string {
	s := o.g.Stats()
	var b strings.Builder
	if title := o.set.Title(); title != "" {
		fmt.Fprintf(&b, "Ontology statistics (%s):", title)
	} else {
		b.WriteString("Ontology statistics:")
	}
	fmt.Fprintf(&b, "\nClasses: %d", s.Classes)
	fmt.Fprintf(&b, "\nProperties: %d", s.Properties)
	fmt.Fprintf(&b, "\nIndividuals: %d", s.Individuals)
	fmt.Fprintf(&b, "\nLoaded modules: %d", s.Modules)
	return b.String()
}

// ExploreDomains groups the loaded classes by FIBO domain, showing a few
// examples of each.
func (o *Ops) ExploreDomains() string {
	groups := make(map[string][]string)
	for _, c := range o.g.Classes() {
		d := fibo.DomainOf(c.IRI)
		groups[d] = append(groups[d], c.Name)
	}
	if len(groups) == 0 {
		return "No classes loaded."
	}

	order := make([]string, 0, len(fibo.Domains)+1)
	for _, d := range fibo.Domains {
		order = append(order, d.Name)
	}
	order = append(order, fibo.OtherDomain)

	var b strings.Builder
	if title := o.set.Title(); title != "" {
		fmt.Fprintf(&b, "FIBO domains (%s):", title)
	} else {
		b.WriteString("FIBO domains:")
	}
	for _, d := range order {
		names := groups[d]
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s (%d classes):", d, len(names))
		bullets(&b, names, MaxDomainExamples)
	}
	return b.String()
}
