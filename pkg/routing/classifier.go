package routing

import (
	"path"
	"sort"
	"strings"
)

// Classifier answers which route class a request path belongs to.
type Classifier struct {
	rules   []AllowlistRule
	byClass map[RouteClass][]string
}

// NewClassifier normalizes prefixes and drops duplicates, keeping the first
// definition. Longer prefixes are matched first so /admin/ws beats /admin.
func NewClassifier(rules []AllowlistRule) *Classifier {
	c := &Classifier{byClass: make(map[RouteClass][]string)}
	seen := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		rule.Prefix = normalizePrefix(rule.Prefix)
		if rule.Prefix == "" {
			continue
		}
		if _, dup := seen[rule.Prefix]; dup {
			continue
		}
		seen[rule.Prefix] = struct{}{}
		c.rules = append(c.rules, rule)
	}
	sort.SliceStable(c.rules, func(i, j int) bool {
		return len(c.rules[i].Prefix) > len(c.rules[j].Prefix)
	})
	for _, rule := range c.rules {
		c.byClass[rule.Class] = append(c.byClass[rule.Class], rule.Prefix)
	}
	return c
}

// MatchAllowlist reports the class of the most specific rule covering p.
func (c *Classifier) MatchAllowlist(p string) (RouteClass, bool) {
	for i := range c.rules {
		if HasPathPrefixOnBoundary(p, c.rules[i].Prefix) {
			return c.rules[i].Class, true
		}
	}
	return "", false
}

func (c *Classifier) ClassifyPath(p string) RouteClass {
	class, ok := c.MatchAllowlist(p)
	if !ok {
		return RouteClassUnclassified
	}
	return class
}

// Prefixes lists the prefixes declared for classes, most specific first.
func (c *Classifier) Prefixes(classes ...RouteClass) []string {
	var out []string
	for _, class := range classes {
		out = append(out, c.byClass[class]...)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// HasPathPrefixOnBoundary is strings.HasPrefix that refuses to split a path
// segment: /api matches /api and /api/x but not /apix.
func HasPathPrefixOnBoundary(p, prefix string) bool {
	switch {
	case prefix == "":
		return false
	case prefix == "/":
		return strings.HasPrefix(p, "/")
	case !strings.HasPrefix(p, prefix):
		return false
	case len(p) == len(prefix), strings.HasSuffix(prefix, "/"):
		return true
	default:
		return p[len(prefix)] == '/'
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	cleaned := path.Clean("/" + strings.TrimLeft(prefix, "/"))
	return cleaned
}
