package routing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowlist_LoadsAndHasCriticalRules(t *testing.T) {
	rules, err := LoadAllowlist("", "server")
	require.NoError(t, err)

	requireAllowlistRule(t, rules, "/admin", RouteClassAdminAPI)
	requireAllowlistRule(t, rules, "/admin/ws", RouteClassWebsocket)
	requireAllowlistRule(t, rules, "/api", RouteClassProxy)
	requireAllowlistRule(t, rules, "/health", RouteClassOps)
	requireAllowlistRule(t, rules, "/debug/prometheus", RouteClassOps)
}

func TestLoadAllowlist_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nentrypoints:\n  cli:\n    - prefix: /x\n      class: ops\n"), 0o644))

	rules, err := LoadAllowlist(path, "cli")
	require.NoError(t, err)
	assert.Equal(t, []AllowlistRule{{Prefix: "/x", Class: RouteClassOps}}, rules)

	_, err = LoadAllowlist(filepath.Join(t.TempDir(), "missing.yaml"), "cli")
	require.ErrorIs(t, err, ErrAllowlistNotFound)
}

func TestParseAllowlist_Errors(t *testing.T) {
	cases := map[string]string{
		"version":    "version: 2\nentrypoints: {}\n",
		"entrypoint": "version: 1\nentrypoints:\n  other: []\n",
		"prefix":     "version: 1\nentrypoints:\n  server:\n    - prefix: admin\n      class: ops\n",
		"class":      "version: 1\nentrypoints:\n  server:\n    - prefix: /admin\n      class: ui\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAllowlist([]byte(raw), "server")
			assert.Error(t, err)
		})
	}
}

func TestClassifier(t *testing.T) {
	rules, err := LoadAllowlist("", "server")
	require.NoError(t, err)
	c := NewClassifier(rules)

	assert.Equal(t, RouteClassWebsocket, c.ClassifyPath("/admin/ws"))
	assert.Equal(t, RouteClassAdminAPI, c.ClassifyPath("/admin/records/rows/1"))
	assert.Equal(t, RouteClassAdminAPI, c.ClassifyPath("/admin/wsx"))
	assert.Equal(t, RouteClassProxy, c.ClassifyPath("/api/v1/suggestion_org"))
	assert.Equal(t, RouteClassUnclassified, c.ClassifyPath("/apix"))
	assert.ElementsMatch(t, []string{"/admin", "/api"}, c.Prefixes(RouteClassAdminAPI, RouteClassProxy))
}

func TestParseAllowlist_ReportsEveryBadRule(t *testing.T) {
	raw := "version: 1\nentrypoints:\n  server:\n    - prefix: admin\n      class: ops\n    - prefix: /x\n      class: ui\n"
	_, err := ParseAllowlist([]byte(raw), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule[0]")
	assert.Contains(t, err.Error(), "rule[1]")
}

func TestClassifier_NormalizesAndDeduplicates(t *testing.T) {
	c := NewClassifier([]AllowlistRule{
		{Prefix: " /admin/ ", Class: RouteClassAdminAPI},
		{Prefix: "/admin", Class: RouteClassOps},
		{Prefix: "", Class: RouteClassOps},
		{Prefix: "/admin/ws", Class: RouteClassWebsocket},
	})

	assert.Equal(t, RouteClassAdminAPI, c.ClassifyPath("/admin/orgs"))
	assert.Equal(t, RouteClassWebsocket, c.ClassifyPath("/admin/ws"))
	assert.Equal(t, []string{"/admin/ws", "/admin"}, c.Prefixes(RouteClassAdminAPI, RouteClassWebsocket))
	assert.Empty(t, c.Prefixes(RouteClassOps))
}

func TestHasPathPrefixOnBoundary(t *testing.T) {
	assert.True(t, HasPathPrefixOnBoundary("/api", "/api"))
	assert.True(t, HasPathPrefixOnBoundary("/api/x", "/api"))
	assert.False(t, HasPathPrefixOnBoundary("/apix", "/api/"))
	assert.False(t, HasPathPrefixOnBoundary("/apix", "/api"))
	assert.True(t, HasPathPrefixOnBoundary("/anything", "/"))
	assert.False(t, HasPathPrefixOnBoundary("/api", ""))
}

func requireAllowlistRule(t *testing.T, rules []AllowlistRule, prefix string, class RouteClass) {
	t.Helper()

	for _, rule := range rules {
		if rule.Prefix == prefix && rule.Class == class {
			return
		}
	}
	t.Fatalf("allowlist missing rule: %q -> %q", prefix, class)
}
