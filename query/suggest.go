package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// minSimilarity is the lowest edit-distance similarity, in [0,1], at which a
// name is offered as a suggestion.
const minSimilarity = 0.6

// Suggest returns up to n class names close to name. Names containing the
// input (or contained in it) come first, prefix and suffix matches ahead of
// other substrings, followed by names within edit distance ranked by
// similarity. An exact case-insensitive match is returned alone.
func (o *Ops) Suggest(name string, n int) []string {
	return suggest(o.g.ClassNames(), name, n)
}

// SuggestProperties is Suggest over property names.
func (o *Ops) SuggestProperties(name string, n int) []string {
	var names []string
	for _, p := range o.g.Properties() {
		names = append(names, p.Name)
	}
	return suggest(names, name, n)
}

// SuggestClasses formats Suggest for display.
func (o *Ops) SuggestClasses(name string) string {
	name = strings.TrimSpace(name)
	if canonical, err := o.g.ResolveClass(name); err == nil {
		return fmt.Sprintf("Class '%s' exists.", canonical)
	}
	s := o.Suggest(name, MaxSuggestions)
	switch len(s) {
	case 0:
		return fmt.Sprintf("No similar classes found for '%s'. Try 'list classes' to see available options.", name)
	case 1:
		return fmt.Sprintf("Did you mean '%s'?", s[0])
	}
	var b strings.Builder
	b.WriteString("Did you mean one of these?")
	bullets(&b, s, 0)
	return b.String()
}

type scored struct {
	name  string
	score float64
}

func suggest(candidates []string, name string, n int) []string {
	in := strings.ToLower(strings.TrimSpace(name))
	if in == "" || n <= 0 {
		return nil
	}
	for _, c := range candidates {
		if strings.ToLower(c) == in {
			return []string{c}
		}
	}

	var affix, substring, near []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		switch {
		case strings.HasPrefix(lc, in) || strings.HasSuffix(lc, in) ||
			strings.HasPrefix(in, lc) || strings.HasSuffix(in, lc):
			affix = append(affix, scored{c, similarity(in, lc)})
		case strings.Contains(lc, in) || strings.Contains(in, lc):
			substring = append(substring, scored{c, similarity(in, lc)})
		default:
			if s := similarity(in, lc); s >= minSimilarity {
				near = append(near, scored{c, s})
			}
		}
	}

	var out []string
	for _, group := range [][]scored{affix, substring, near} {
		slices.SortStableFunc(group, func(a, b scored) int {
			switch {
			case a.score > b.score:
				return -1
			case a.score < b.score:
				return 1
			}
			return strings.Compare(a.name, b.name)
		})
		for _, s := range group {
			if len(out) == n {
				return out
			}
			out = append(out, s.name)
		}
	}
	return out
}

// similarity is 1 minus the edit distance normalised by the longer length.
func similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
