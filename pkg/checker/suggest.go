package checker

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/leapstack-labs/portugo/pkg/parser"
)

// maxSuggestDistance is the largest edit distance offered as a suggestion.
const maxSuggestDistance = 2

// suggest returns the candidate closest to name, or "" when none is close
// enough. Ties resolve alphabetically.
func suggest(name string, candidates []string) string {
	sort.Strings(candidates)
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if c == name {
			continue
		}
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist && d < len([]rune(name)) {
			best, bestDist = c, d
		}
	}
	return best
}

func didYouMean(name string, candidates []string) string {
	if s := suggest(name, candidates); s != "" {
		return fmt.Sprintf(MsgDidYouMean, s)
	}
	return ""
}

// visibleNames lists every variable in scope.
func (c *Checker) visibleNames() []string {
	var names []string
	for _, s := range c.scopes {
		for name := range s {
			names = append(names, name)
		}
	}
	return names
}

// functionNames lists user and library functions.
func (c *Checker) functionNames() []string {
	names := make([]string, 0, len(c.funcs)+len(Builtins))
	for name := range c.funcs {
		names = append(names, name)
	}
	for name := range Builtins {
		names = append(names, name)
	}
	return names
}

func (c *Checker) undeclaredVar(id *parser.Ident) {
	c.errorf(id.Start, MsgUndeclaredVar+"%s", id.Name, didYouMean(id.Name, c.visibleNames()))
}
