// Package routing classifies request paths against the route allowlist.
package routing

import (
	_ "embed"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

type RouteClass string

const (
	RouteClassAdminAPI  RouteClass = "admin_api"
	RouteClassProxy     RouteClass = "proxy"
	RouteClassOps       RouteClass = "ops"
	RouteClassWebsocket RouteClass = "websocket"
	// RouteClassUnclassified is returned for paths no rule covers.
	RouteClassUnclassified RouteClass = "unclassified"
)

const (
	allowlistVersion  = 1
	defaultEntrypoint = "server"
	allowlistEnv      = "ROUTING_ALLOWLIST_PATH"
)

var ErrAllowlistNotFound = errors.New("routing allowlist not found")

//go:embed allowlist.yaml
var builtinAllowlist []byte

type AllowlistRule struct {
	Prefix string     `yaml:"prefix"`
	Class  RouteClass `yaml:"class"`
}

func (r AllowlistRule) validate() error {
	if r.Prefix == "" {
		return errors.New("empty prefix")
	}
	if r.Prefix[0] != '/' {
		return errors.Errorf("prefix %q must start with '/'", r.Prefix)
	}
	switch r.Class {
	case RouteClassAdminAPI, RouteClassProxy, RouteClassOps, RouteClassWebsocket:
		return nil
	default:
		return errors.Errorf("unknown class %q for %s", r.Class, r.Prefix)
	}
}

type allowlistDocument struct {
	Version     int                        `yaml:"version"`
	Entrypoints map[string][]AllowlistRule `yaml:"entrypoints"`
}

// LoadAllowlist reads the rules of entrypoint from file. An empty file
// means ROUTING_ALLOWLIST_PATH, or the embedded list when that is unset.
func LoadAllowlist(file, entrypoint string) ([]AllowlistRule, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		file = strings.TrimSpace(os.Getenv(allowlistEnv))
	}
	if file == "" {
		return ParseAllowlist(builtinAllowlist, entrypoint)
	}
	raw, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrAllowlistNotFound, file)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read allowlist")
	}
	return ParseAllowlist(raw, entrypoint)
}

// ParseAllowlist decodes a version 1 document and returns the rules of
// entrypoint. Every invalid rule is reported, not just the first.
func ParseAllowlist(raw []byte, entrypoint string) ([]AllowlistRule, error) {
	var doc allowlistDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode allowlist")
	}
	if doc.Version != allowlistVersion {
		return nil, errors.Errorf("unsupported allowlist version: %d", doc.Version)
	}

	if entrypoint = strings.TrimSpace(entrypoint); entrypoint == "" {
		entrypoint = defaultEntrypoint
	}
	rules, ok := doc.Entrypoints[entrypoint]
	if !ok {
		return nil, errors.Errorf("entrypoint %q not found in allowlist", entrypoint)
	}

	var merr *multierror.Error
	for i := range rules {
		rules[i].Prefix = strings.TrimSpace(rules[i].Prefix)
		if err := rules[i].validate(); err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "rule[%d]", i))
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return rules, nil
}
