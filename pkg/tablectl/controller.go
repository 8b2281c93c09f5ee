// Package tablectl is the editable row collection controller. It owns the
// rows, the edit cursor, and the reference catalog of one table and keeps
// them in step with the backend.
package tablectl

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/tevino/abool"

	"github.com/iota-uz/suggestion-admin/pkg/editstate"
	"github.com/iota-uz/suggestion-admin/pkg/eventbus"
	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/reference"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
)

// Remote is the backend of one collection. *gateway.Table satisfies it.
type Remote interface {
	List(ctx context.Context, filter string) ([]byte, error)
	Create(ctx context.Context, payload []byte) error
	Update(ctx context.Context, id string, payload []byte) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Reference(ctx context.Context) ([]byte, error)
}

// AfterSubmit decides what the table shows once a bulk submit is accepted.
type AfterSubmit int

const (
	// ReloadAfterSubmit replaces the rows with the backend listing.
	ReloadAfterSubmit AfterSubmit = iota
	// ResetAfterSubmit clears the table down to one blank row.
	ResetAfterSubmit
)

type Options struct {
	Schema *fields.Schema
	Remote Remote
	Logger *logrus.Entry
	Events eventbus.EventBus
	// DefaultReference is used when the reference list cannot be fetched.
	DefaultReference []reference.Entry
	AfterSubmit      AfterSubmit
}

type Controller struct {
	schema      *fields.Schema
	remote      Remote
	log         *logrus.Entry
	events      eventbus.EventBus
	defaults    []reference.Entry
	afterSubmit AfterSubmit
	now         func() time.Time

	// busy guards collection-wide calls (submit, reload).
	busy *abool.AtomicBool

	mu       sync.Mutex
	rows     *rowset.Collection
	edit     *editstate.Machine
	catalog  *reference.Catalog
	filter   string
	notices  []Notice
	inflight map[string]Op
}

func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Controller{
		schema:      opts.Schema,
		remote:      opts.Remote,
		log:         log.WithField("table", opts.Schema.Name),
		events:      opts.Events,
		defaults:    opts.DefaultReference,
		afterSubmit: opts.AfterSubmit,
		now:         time.Now,
		busy:        abool.New(),
		rows:        rowset.New(opts.Schema),
		edit:        editstate.New(opts.Schema),
		catalog:     reference.NewCatalog(opts.DefaultReference),
		inflight:    map[string]Op{},
	}
}

func (c *Controller) Schema() *fields.Schema {
	return c.schema
}

// LoadReference fetches the lookup list. On failure the default list is
// installed and the error is still returned.
func (c *Controller) LoadReference(ctx context.Context) error {
	if c.schema.KeyField == "" {
		return nil
	}
	start := c.now()
	raw, err := c.remote.Reference(ctx)
	var entries []reference.Entry
	if err == nil {
		entries, err = reference.Parse(raw, c.schema.KeyField)
	}
	c.publish(OpReference, "", len(entries), err, start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.WithError(err).Warn("reference list unavailable, using defaults")
		c.catalog = reference.NewCatalog(c.defaults)
		return &RemoteFailure{Op: OpReference, Err: err}
	}
	c.catalog = reference.NewCatalog(entries)
	c.log.WithField("entries", c.catalog.Len()).Debug("reference list loaded")
	return nil
}

// Add appends a blank row.
func (c *Controller) Add() rowset.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows.Add()
}

// Remove drops an unsaved row locally. Saved rows leave the table only
// through Delete, after the backend confirms.
func (c *Controller) Remove(key int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows.Get(key)
	if !ok {
		return errors.Wrapf(rowset.ErrRowNotFound, "key %d", key)
	}
	if row.Persisted() {
		return errors.Wrapf(ErrReadOnly, "key %d is saved; delete it instead", key)
	}
	c.rows.Remove(key)
	return nil
}

// SetField parses raw for the named column and stores it. Unsaved rows are
// written directly; the row under the edit cursor is written on its working
// copy; any other saved row is read-only.
func (c *Controller) SetField(key int, name, raw string) error {
	return c.SetFields(key, map[string]string{name: raw})
}

// SetFields parses and checks every column before writing any of them, so
// a rejected column leaves the row as it was.
func (c *Controller) SetFields(key int, raw map[string]string) error {
	values := make(fields.Values, len(raw))
	for _, name := range sortedKeys(raw) {
		v, err := c.schema.Parse(name, raw[name])
		if err != nil {
			return err
		}
		if err := c.schema.CheckWritable(name, v); err != nil {
			return err
		}
		values[name] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	set, err := c.writerFor(key)
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(values) {
		if err := set(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

// SetValue stores an already-typed value.
func (c *Controller) SetValue(key int, name string, v fields.Value) error {
	if err := c.schema.CheckWritable(name, v); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	set, err := c.writerFor(key)
	if err != nil {
		return err
	}
	return set(name, v)
}

// writerFor picks where edits to a row land. Must be called with mu held.
func (c *Controller) writerFor(key int) (func(string, fields.Value) error, error) {
	row, ok := c.rows.Get(key)
	if !ok {
		return nil, errors.Wrapf(rowset.ErrRowNotFound, "key %d", key)
	}
	switch {
	case !row.Persisted():
		return func(name string, v fields.Value) error { return c.rows.SetField(key, name, v) }, nil
	case c.edit.IsEditing(row.RemoteID):
		if op, taken := c.inflight[row.RemoteID]; taken {
			return nil, errors.Wrapf(ErrBusy, "%s %s", op, row.RemoteID)
		}
		return c.edit.SetField, nil
	default:
		return nil, errors.Wrapf(ErrReadOnly, "key %d", key)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Select sets the key column of a row to refKey and copies the matching
// reference attributes onto its derived columns. An unknown refKey leaves
// the derived columns as they were.
func (c *Controller) Select(key int, refKey string) error {
	if c.schema.KeyField == "" {
		return errors.Errorf("table %s has no reference key", c.schema.Name)
	}
	v := fields.Text(refKey)
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows.Get(key)
	if !ok {
		return errors.Wrapf(rowset.ErrRowNotFound, "key %d", key)
	}
	attrs, found := c.catalog.Resolve(refKey)
	var derived fields.Values
	if found {
		derived = c.schema.Derive(attrs)
	}

	switch {
	case !row.Persisted():
		if err := c.rows.SetField(key, c.schema.KeyField, v); err != nil {
			return err
		}
		if found {
			return c.rows.ApplyDerivation(key, derived)
		}
	case c.edit.IsEditing(row.RemoteID):
		if op, taken := c.inflight[row.RemoteID]; taken {
			return errors.Wrapf(ErrBusy, "%s %s", op, row.RemoteID)
		}
		if err := c.edit.SetField(c.schema.KeyField, v); err != nil {
			return err
		}
		if found {
			return c.edit.ApplyDerivation(derived)
		}
	default:
		return errors.Wrapf(ErrReadOnly, "key %d", key)
	}
	return nil
}

// BeginEdit moves the edit cursor onto a saved row.
func (c *Controller) BeginEdit(key int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows.Get(key)
	if !ok {
		return errors.Wrapf(rowset.ErrRowNotFound, "key %d", key)
	}
	return c.edit.Begin(row)
}

// CancelEdit discards the working copy of the row at key. The row must be
// the one under the edit cursor and must not be saving.
func (c *Controller) CancelEdit(key int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := c.editedRemoteID(key)
	if err != nil {
		return err
	}
	if op, taken := c.inflight[id]; taken {
		return errors.Wrapf(ErrBusy, "%s %s", op, id)
	}
	c.edit.Cancel()
	return nil
}

// editedRemoteID resolves key to the remote id under the edit cursor. Must
// be called with mu held.
func (c *Controller) editedRemoteID(key int) (string, error) {
	row, ok := c.rows.Get(key)
	if !ok {
		return "", errors.Wrapf(rowset.ErrRowNotFound, "key %d", key)
	}
	if !row.Persisted() || !c.edit.IsEditing(row.RemoteID) {
		return "", errors.Wrapf(editstate.ErrNotEditing, "key %d", key)
	}
	return row.RemoteID, nil
}

// Save validates the working copy of the row at key and puts it to the
// backend. On failure the edit stays open with the working copy untouched.
// The working copy is locked against edits while the call is in flight.
func (c *Controller) Save(ctx context.Context, key int) error {
	c.mu.Lock()
	if _, err := c.editedRemoteID(key); err != nil {
		c.mu.Unlock()
		return err
	}
	working, ok := c.edit.Working()
	if !ok {
		c.mu.Unlock()
		return editstate.ErrNotEditing
	}
	if v := c.schema.ValidateRow(working.LocalKey, working.Values, fields.ModeSave); len(v) > 0 {
		c.mu.Unlock()
		return &ValidationError{Result: fields.Result{Violations: v}}
	}
	id := working.RemoteID
	if op, taken := c.inflight[id]; taken {
		c.mu.Unlock()
		return errors.Wrapf(ErrBusy, "%s %s", op, id)
	}
	payload, err := rowset.EncodeRow(c.schema, working.Values)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.inflight[id] = OpSave
	c.mu.Unlock()

	start := c.now()
	resp, err := c.remote.Update(ctx, id, payload)
	c.publish(OpSave, id, 1, err, start)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		c.notify(NoticeError, OpSave, "Failed to save the row: "+err.Error())
		return &RemoteFailure{Op: OpSave, Err: err}
	}

	merged := mergeResponse(c.schema, working, resp)
	if row, found := c.rows.FindRemote(id); found {
		merged.LocalKey = row.LocalKey
		if err := c.rows.Replace(merged); err != nil {
			c.log.WithError(err).Warn("saved row could not be merged")
		}
	}
	if c.edit.IsEditing(id) {
		_ = c.edit.Commit()
	}
	c.notify(NoticeSuccess, OpSave, "Row saved")
	return nil
}

// Delete removes a row. Unsaved rows go at once; saved rows are removed
// only after the backend confirms the delete.
func (c *Controller) Delete(ctx context.Context, key int) error {
	c.mu.Lock()
	row, ok := c.rows.Get(key)
	if !ok {
		c.mu.Unlock()
		return errors.Wrapf(rowset.ErrRowNotFound, "key %d", key)
	}
	if !row.Persisted() {
		c.rows.Remove(key)
		c.mu.Unlock()
		return nil
	}
	id := row.RemoteID
	if op, taken := c.inflight[id]; taken {
		c.mu.Unlock()
		return errors.Wrapf(ErrBusy, "%s %s", op, id)
	}
	c.inflight[id] = OpDelete
	c.mu.Unlock()

	start := c.now()
	err := c.remote.Delete(ctx, id)
	c.publish(OpDelete, id, 1, err, start)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		c.notify(NoticeError, OpDelete, "Failed to delete the row: "+err.Error())
		return &RemoteFailure{Op: OpDelete, Err: err}
	}
	if current, found := c.rows.FindRemote(id); found {
		c.rows.Remove(current.LocalKey)
	}
	if c.edit.IsEditing(id) {
		c.edit.Reset()
	}
	c.notify(NoticeSuccess, OpDelete, "Row deleted")
	return nil
}

// Submit validates the unsaved rows and posts them in one call. Saved rows
// are never re-sent; they change through Save. Nothing is sent when any
// unsaved row fails validation.
func (c *Controller) Submit(ctx context.Context) error {
	if !c.busy.SetToIf(false, true) {
		return errors.Wrap(ErrBusy, string(OpSubmit))
	}
	defer c.busy.UnSet()

	c.mu.Lock()
	rows := pendingRows(c.rows.Rows())
	result := fields.Validate(c.schema, fields.ModeSubmit, rows)
	filter := c.filter
	c.mu.Unlock()
	if len(rows) == 0 {
		return errors.Wrap(ErrNoPending, string(OpSubmit))
	}
	if !result.OK() {
		return &ValidationError{Result: result}
	}
	payload, err := rowset.EncodeRows(c.schema, rows)
	if err != nil {
		return err
	}

	start := c.now()
	err = c.remote.Create(ctx, payload)
	c.publish(OpSubmit, "", len(rows), err, start)
	if err != nil {
		c.mu.Lock()
		c.notify(NoticeError, OpSubmit, "Submission failed. Please check the form.")
		c.mu.Unlock()
		return &RemoteFailure{Op: OpSubmit, Err: err}
	}

	c.mu.Lock()
	c.notify(NoticeSuccess, OpSubmit, "Data submitted successfully")
	if c.afterSubmit == ResetAfterSubmit {
		for _, row := range rows {
			c.rows.Remove(row.LocalKey)
		}
		if len(pendingRows(c.rows.Rows())) == 0 {
			c.rows.Add()
		}
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// The rows were accepted; a failed refresh only leaves a notice.
	if err := c.reload(ctx, filter); err != nil {
		c.log.WithError(err).Warn("reload after submit failed")
	}
	return nil
}

func pendingRows(rows []rowset.Row) []rowset.Row {
	out := make([]rowset.Row, 0, len(rows))
	for _, row := range rows {
		if !row.Persisted() {
			out = append(out, row)
		}
	}
	return out
}

// Reload replaces every row with the backend listing, narrowed by filter.
// The edit cursor is cleared.
func (c *Controller) Reload(ctx context.Context, filter string) error {
	if !c.busy.SetToIf(false, true) {
		return errors.Wrap(ErrBusy, string(OpReload))
	}
	defer c.busy.UnSet()
	return c.reload(ctx, filter)
}

func (c *Controller) reload(ctx context.Context, filter string) error {
	filter = strings.TrimSpace(filter)
	start := c.now()
	raw, err := c.remote.List(ctx, filter)
	var rows []rowset.Row
	if err == nil {
		rows, err = rowset.DecodeRows(c.schema, raw)
	}
	c.publish(OpReload, "", len(rows), err, start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notify(NoticeError, OpReload, "Failed to load rows: "+err.Error())
		return &RemoteFailure{Op: OpReload, Err: err}
	}
	c.rows.ReplaceAll(rows)
	c.edit.Reset()
	c.filter = filter
	return nil
}

// Validate checks rows without sending anything. ModeSubmit covers the
// unsaved rows Submit would send; ModeSave covers every row.
func (c *Controller) Validate(mode fields.Mode) fields.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.rows.Rows()
	if mode == fields.ModeSubmit {
		rows = pendingRows(rows)
	}
	return fields.Validate(c.schema, mode, rows)
}

func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

func (c *Controller) ClearNotices() {
	c.mu.Lock()
	c.notices = nil
	c.mu.Unlock()
}

// notify must be called with mu held.
func (c *Controller) notify(level NoticeLevel, op Op, msg string) {
	c.notices = append(c.notices, Notice{Level: level, Op: op, Message: msg, At: c.now()})
	if n := len(c.notices); n > maxNotices {
		c.notices = append([]Notice(nil), c.notices[n-maxNotices:]...)
	}
}

func (c *Controller) publish(op Op, id string, rows int, err error, start time.Time) {
	entry := c.log.WithFields(logrus.Fields{
		"op":       op,
		"duration": c.now().Sub(start),
	})
	if id != "" {
		entry = entry.WithField("remote-id", id)
	}
	if err != nil {
		entry.WithError(err).Warn("sync failed")
	} else {
		entry.WithField("rows", rows).Info("sync completed")
	}
	if c.events == nil {
		return
	}
	c.events.Publish(&SyncEvent{
		Table:    c.schema.Name,
		Op:       op,
		RemoteID: id,
		Rows:     rows,
		Err:      err,
		Duration: c.now().Sub(start),
	})
}

// mergeResponse overlays the columns the backend echoed back onto the
// working copy.
func mergeResponse(schema *fields.Schema, working rowset.Row, resp []byte) rowset.Row {
	out := working.Clone()
	echoed, ok := rowset.DecodeRow(schema, resp)
	if !ok {
		return out
	}
	if echoed.RemoteID != "" && echoed.RemoteID != working.RemoteID {
		return out
	}
	for name, v := range echoed.Values {
		if v.Valid {
			out.Values[name] = v
		}
	}
	if echoed.CreatedAt != "" {
		out.CreatedAt = echoed.CreatedAt
	}
	if echoed.UpdatedAt != "" {
		out.UpdatedAt = echoed.UpdatedAt
	}
	return out
}
