package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/suggestion-admin/modules/suggestion"
	"github.com/iota-uz/suggestion-admin/pkg/gateway"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

// tableAliases lets short names stand in for table names on the command line.
var tableAliases = map[string]string{
	"orgs":    suggestion.OrgTable,
	"org":     suggestion.OrgTable,
	"record":  suggestion.RecordTable,
	"records": suggestion.RecordTable,
}

func resolveTableName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := tableAliases[name]; ok {
		return alias
	}
	return name
}

func tableNames(defs []suggestion.TableDef) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Schema.Name)
	}
	sort.Strings(out)
	return out
}

// openTable builds a controller for name and loads its reference list.
// A reference failure is logged and the built-in list is used.
func openTable(ctx context.Context, env *cliEnv, name string) (*tablectl.Controller, error) {
	defs := suggestion.Tables(env.conf.Backend.ReferencePath)
	want := resolveTableName(name)
	var def *suggestion.TableDef
	for i := range defs {
		if defs[i].Schema.Name == want {
			def = &defs[i]
			break
		}
	}
	if def == nil {
		return nil, withCode(exitUsage, fmt.Errorf("unknown --table %q (want one of %s)", name, strings.Join(tableNames(defs), ", ")))
	}

	log := logrus.NewEntry(env.log).WithField("cmd", "suggestctl")
	client, err := gateway.NewClient(gateway.Options{
		BaseURL:         env.conf.Backend.URL,
		Authorization:   env.conf.Backend.Authorization,
		RequestIDHeader: env.conf.RequestIDHeader,
		Timeout:         env.conf.Backend.Timeout,
		Logger:          log,
	})
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	ctl := tablectl.New(tablectl.Options{
		Schema:           def.Schema,
		Remote:           gateway.NewTable(client, def.Endpoints),
		Logger:           log,
		DefaultReference: def.Defaults,
		AfterSubmit:      def.AfterSubmit,
	})
	if err := ctl.LoadReference(ctx); err != nil {
		log.WithError(err).Warn("using built-in reference list")
	}
	return ctl, nil
}

// loadRows reloads ctl from the backend and returns its rows.
func loadRows(ctx context.Context, ctl *tablectl.Controller, filter string) ([]rowset.Row, error) {
	if err := ctl.Reload(ctx, filter); err != nil {
		return nil, withCode(exitRemote, err)
	}
	return ctl.Snapshot().Rows, nil
}

// rowRecord renders a row as one string per schema column.
func rowRecord(ctl *tablectl.Controller, row rowset.Row) []string {
	names := ctl.Schema().Names()
	out := make([]string, 0, len(names)+1)
	out = append(out, row.RemoteID)
	for _, name := range names {
		out = append(out, row.Values.Get(name).String())
	}
	return out
}

func recordHeader(ctl *tablectl.Controller) []string {
	return append([]string{"id"}, ctl.Schema().Names()...)
}
