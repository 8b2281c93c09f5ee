package services

import (
	"context"
	"sort"

	"github.com/go-faster/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/suggestion-admin/pkg/serrors"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

var ErrUnknownTable = serrors.NewError("TABLE_NOT_FOUND", "table not found", "Tables.Errors.NotFound")

// TableService looks up table controllers by name.
type TableService struct {
	tables map[string]*tablectl.Controller
	log    *logrus.Entry
}

func NewTableService(log *logrus.Entry, controllers ...*tablectl.Controller) *TableService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &TableService{
		tables: make(map[string]*tablectl.Controller, len(controllers)),
		log:    log,
	}
	for _, c := range controllers {
		s.tables[c.Schema().Name] = c
	}
	return s
}

func (s *TableService) Get(name string) (*tablectl.Controller, error) {
	c, ok := s.tables[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownTable.WithTemplateData(map[string]string{"table": name}), "lookup")
	}
	return c, nil
}

func (s *TableService) Names() []string {
	out := make([]string, 0, len(s.tables))
	for name := range s.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Warmup loads every reference list and listing once. Failures are
// collected; each table still starts, on default reference data and an
// empty collection if need be.
func (s *TableService) Warmup(ctx context.Context) error {
	var merr *multierror.Error
	for _, name := range s.Names() {
		c := s.tables[name]
		if err := c.LoadReference(ctx); err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "%s reference", name))
		}
		if err := c.Reload(ctx, ""); err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "%s listing", name))
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		s.log.WithError(err).Warn("table warmup incomplete")
		return err
	}
	s.log.WithField("tables", len(s.tables)).Info("tables warmed up")
	return nil
}
