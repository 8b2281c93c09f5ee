package tablectl

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/suggestion-admin/pkg/editstate"
	"github.com/iota-uz/suggestion-admin/pkg/eventbus"
	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/reference"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
)

type fakeRemote struct {
	mu        sync.Mutex
	listing   string
	reference string
	refErr    error
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	updateOut string
	// block, when set, holds Update and Create until it is closed.
	block   chan struct{}
	entered chan struct{}

	created [][]byte
	updated map[string][]byte
	deleted []string
	filters []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{listing: "[]", reference: "[]", updated: map[string][]byte{}}
}

func (f *fakeRemote) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeRemote) List(_ context.Context, filter string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []byte(f.listing), nil
}

func (f *fakeRemote) Create(_ context.Context, payload []byte) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, payload)
	return nil
}

func (f *fakeRemote) Update(_ context.Context, id string, payload []byte) ([]byte, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated[id] = payload
	return []byte(f.updateOut), nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRemote) Reference(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refErr != nil {
		return nil, f.refErr
	}
	return []byte(f.reference), nil
}

func orgSchema() *fields.Schema {
	return fields.NewSchema("suggestion-orgs",
		fields.Descriptor{Name: "orgName", Kind: fields.KindString, Rule: fields.RuleRequired},
		fields.Descriptor{Name: "orgCode", Kind: fields.KindString, Rule: fields.RuleRequired, Derived: true},
		fields.Descriptor{Name: "srcServiceType", Kind: fields.KindString, Rule: fields.RuleRequired, Derived: true, Tagged: true},
		fields.Descriptor{Name: "suggestionOrgId", Kind: fields.KindInt, SaveRule: fields.RulePositive},
		fields.Descriptor{Name: "displayOrder", Kind: fields.KindInt, Rule: fields.RuleOptionalNonNegative, SaveRule: fields.RuleNonNegative},
	).WithKeyField("orgName")
}

func recordSchema() *fields.Schema {
	return fields.NewSchema("records",
		fields.Descriptor{Name: "name", Kind: fields.KindString, Rule: fields.RuleRequired},
		fields.Descriptor{Name: "code", Kind: fields.KindString, Rule: fields.RuleRequired},
		fields.Descriptor{Name: "type", Kind: fields.KindString, Rule: fields.RuleRequired},
		fields.Descriptor{Name: "orderId", Kind: fields.KindInt, Rule: fields.RuleNonNegative},
	).WithFilterField("type")
}

const twoOrgs = `[
	{"id":1,"orgName":"Org1","orgCode":"001","srcServiceType":"CARD","suggestionOrgId":10,"displayOrder":1},
	{"id":2,"orgName":"Org2","orgCode":"002","srcServiceType":"BANK","suggestionOrgId":11,"displayOrder":2}
]`

func newController(t *testing.T, schema *fields.Schema, remote *fakeRemote, opts ...func(*Options)) *Controller {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	o := Options{Schema: schema, Remote: remote, Logger: logrus.NewEntry(log)}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o)
}

func loaded(t *testing.T, remote *fakeRemote) *Controller {
	t.Helper()
	remote.listing = twoOrgs
	c := newController(t, orgSchema(), remote)
	require.NoError(t, c.Reload(context.Background(), ""))
	return c
}

func TestController_ValidateExampleScenario(t *testing.T) {
	t.Parallel()

	c := newController(t, recordSchema(), newFakeRemote())
	row := c.Add()
	require.NoError(t, c.SetField(row.LocalKey, "name", "Org1"))
	require.NoError(t, c.SetField(row.LocalKey, "code", "001"))
	require.NoError(t, c.SetField(row.LocalKey, "type", "CARD"))

	result := c.Validate(fields.ModeSubmit)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "orderId", result.Violations[0].Field)

	require.NoError(t, c.SetField(row.LocalKey, "orderId", "0"))
	assert.True(t, c.Validate(fields.ModeSubmit).OK())
}

func TestController_SubmitBlockedByValidation(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := newController(t, recordSchema(), remote)
	c.Add()

	err := c.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, verr.Result.Violations, 4)
	assert.Empty(t, remote.created)
}

func TestController_SubmitSendsCollectionAndReloads(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.reference = `[{"orgName":"Shinhan Bank","orgCode":"BANK1","srcServiceType":"BANK"}]`
	c := newController(t, orgSchema(), remote)
	require.NoError(t, c.LoadReference(context.Background()))

	row := c.Add()
	require.NoError(t, c.Select(row.LocalKey, "Shinhan Bank"))
	remote.listing = twoOrgs

	require.NoError(t, c.Submit(context.Background()))
	require.Len(t, remote.created, 1)
	assert.JSONEq(t, `[{"orgName":"Shinhan Bank","orgCode":"BANK1","srcServiceType":"BANK"}]`, string(remote.created[0]))

	snap := c.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "1", snap.Rows[0].RemoteID)
	require.NotEmpty(t, snap.Notices)
	assert.Equal(t, NoticeSuccess, snap.Notices[0].Level)
}

func TestController_SubmitSendsOnlyUnsavedRows(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.reference = `[{"orgName":"Shinhan Bank","orgCode":"BANK1","srcServiceType":"BANK"}]`
	c := loaded(t, remote)
	require.NoError(t, c.LoadReference(context.Background()))
	assert.ErrorIs(t, c.Submit(context.Background()), ErrNoPending)

	row := c.Add()
	require.NoError(t, c.Select(row.LocalKey, "Shinhan Bank"))
	assert.True(t, c.Validate(fields.ModeSubmit).OK())

	require.NoError(t, c.Submit(context.Background()))
	require.Len(t, remote.created, 1)
	assert.JSONEq(t, `[{"orgName":"Shinhan Bank","orgCode":"BANK1","srcServiceType":"BANK"}]`, string(remote.created[0]))
}

func TestController_SubmitFailureKeepsRows(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.createErr = errors.New("connection refused")
	c := newController(t, recordSchema(), remote)
	row := c.Add()
	for name, raw := range map[string]string{"name": "a", "code": "b", "type": "CARD", "orderId": "3"} {
		require.NoError(t, c.SetField(row.LocalKey, name, raw))
	}

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrRemote)
	snap := c.Snapshot()
	assert.Len(t, snap.Rows, 1)
	require.Len(t, snap.Notices, 1)
	assert.Equal(t, NoticeError, snap.Notices[0].Level)
	assert.Empty(t, remote.filters, "no reload after a failed submit")
}

func TestController_ResetAfterSubmit(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := newController(t, recordSchema(), remote, func(o *Options) { o.AfterSubmit = ResetAfterSubmit })
	row := c.Add()
	for name, raw := range map[string]string{"name": "a", "code": "b", "type": "CARD", "orderId": "3"} {
		require.NoError(t, c.SetField(row.LocalKey, name, raw))
	}

	require.NoError(t, c.Submit(context.Background()))
	snap := c.Snapshot()
	require.Len(t, snap.Rows, 1)
	assert.False(t, snap.Rows[0].Values["name"].Valid)
	assert.NotEqual(t, row.LocalKey, snap.Rows[0].LocalKey)
	assert.Empty(t, remote.filters, "reset mode does not reload")
}

func TestController_SelectAppliesDerivation(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.reference = `[
		{"orgName":"Shinhan Bank","orgCode":"BANK1","srcServiceType":"BANK"},
		{"orgName":"Shinhan Bank","orgCode":"BANK2","srcServiceType":"CARD"}
	]`
	c := newController(t, orgSchema(), remote)
	require.NoError(t, c.LoadReference(context.Background()))

	row := c.Add()
	require.NoError(t, c.SetField(row.LocalKey, "displayOrder", "4"))
	require.NoError(t, c.Select(row.LocalKey, "Shinhan Bank"))

	got := c.Snapshot().Rows[0].Values
	assert.Equal(t, fields.Text("Shinhan Bank"), got["orgName"])
	assert.Equal(t, fields.Text("BANK1"), got["orgCode"], "first duplicate wins")
	assert.Equal(t, fields.Text("BANK"), got["srcServiceType"])
	assert.Equal(t, fields.Number(4), got["displayOrder"])

	require.NoError(t, c.Select(row.LocalKey, "Unknown Org"))
	got = c.Snapshot().Rows[0].Values
	assert.Equal(t, fields.Text("Unknown Org"), got["orgName"])
	assert.Equal(t, fields.Text("BANK1"), got["orgCode"])
	assert.Equal(t, fields.Text("BANK"), got["srcServiceType"])
}

func TestController_DerivedFieldsRejectDirectEdits(t *testing.T) {
	t.Parallel()

	c := newController(t, orgSchema(), newFakeRemote())
	row := c.Add()
	assert.ErrorIs(t, c.SetField(row.LocalKey, "orgCode", "X"), fields.ErrDerivedField)
	assert.ErrorIs(t, c.SetField(99, "orgName", "X"), rowset.ErrRowNotFound)
}

func TestController_ReferenceFallback(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.refErr = errors.New("timeout")
	c := newController(t, orgSchema(), remote, func(o *Options) {
		o.DefaultReference = []reference.Entry{{Key: "Default Bank", Attributes: reference.Attributes{"orgCode": "D1", "srcServiceType": "BANK"}}}
	})

	err := c.LoadReference(context.Background())
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, []string{"Default Bank"}, c.Snapshot().ReferenceKeys)

	row := c.Add()
	require.NoError(t, c.Select(row.LocalKey, "Default Bank"))
	assert.Equal(t, fields.Text("D1"), c.Snapshot().Rows[0].Values["orgCode"])
}

func TestController_SingleEditCursor(t *testing.T) {
	t.Parallel()

	c := loaded(t, newFakeRemote())
	rows := c.Snapshot().Rows

	require.NoError(t, c.BeginEdit(rows[0].LocalKey))
	assert.ErrorIs(t, c.BeginEdit(rows[1].LocalKey), editstate.ErrAlreadyEditing)

	snap := c.Snapshot()
	assert.Equal(t, editstate.Editing, snap.State)
	assert.Equal(t, "1", snap.EditingID)

	assert.ErrorIs(t, c.SetField(rows[1].LocalKey, "orgName", "X"), ErrReadOnly)

	unsaved := c.Add()
	assert.ErrorIs(t, c.BeginEdit(unsaved.LocalKey), editstate.ErrNotPersisted)
}

func TestController_EditAndCancel(t *testing.T) {
	t.Parallel()

	c := loaded(t, newFakeRemote())
	key := c.Snapshot().Rows[0].LocalKey
	require.NoError(t, c.BeginEdit(key))
	require.NoError(t, c.SetField(key, "displayOrder", "7"))

	snap := c.Snapshot()
	require.NotNil(t, snap.Working)
	assert.Equal(t, fields.Number(7), snap.Working.Values["displayOrder"])
	assert.Equal(t, fields.Number(1), snap.Rows[0].Values["displayOrder"], "collection untouched while editing")

	other := c.Snapshot().Rows[1].LocalKey
	assert.ErrorIs(t, c.CancelEdit(other), editstate.ErrNotEditing)
	assert.ErrorIs(t, c.CancelEdit(999), rowset.ErrRowNotFound)
	assert.Equal(t, editstate.Editing, c.Snapshot().State)

	require.NoError(t, c.CancelEdit(key))
	snap = c.Snapshot()
	assert.Equal(t, editstate.Viewing, snap.State)
	assert.Nil(t, snap.Working)
	assert.Equal(t, fields.Number(1), snap.Rows[0].Values["displayOrder"])
	assert.ErrorIs(t, c.CancelEdit(key), editstate.ErrNotEditing)
}

func TestController_SaveRequiresEditedRow(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := loaded(t, remote)
	key := c.Snapshot().Rows[0].LocalKey
	require.NoError(t, c.BeginEdit(key))
	unsaved := c.Add()

	assert.ErrorIs(t, c.Save(context.Background(), unsaved.LocalKey), editstate.ErrNotEditing)
	assert.ErrorIs(t, c.Save(context.Background(), c.Snapshot().Rows[1].LocalKey), editstate.ErrNotEditing)
	assert.ErrorIs(t, c.Save(context.Background(), 999), rowset.ErrRowNotFound)
	assert.Empty(t, remote.updated)
	assert.Equal(t, editstate.Editing, c.Snapshot().State)
}

func TestController_SetFieldsIsAllOrNothing(t *testing.T) {
	t.Parallel()

	c := newController(t, orgSchema(), newFakeRemote())
	row := c.Add()

	err := c.SetFields(row.LocalKey, map[string]string{"displayOrder": "5", "orgCode": "X"})
	assert.ErrorIs(t, err, fields.ErrDerivedField)
	err = c.SetFields(row.LocalKey, map[string]string{"orgName": "Org1", "displayOrder": "abc"})
	assert.Error(t, err)
	got := c.Snapshot().Rows[0].Values
	assert.False(t, got["displayOrder"].Valid)
	assert.False(t, got["orgName"].Valid)

	require.NoError(t, c.SetFields(row.LocalKey, map[string]string{"displayOrder": "5", "orgName": "Org1"}))
	got = c.Snapshot().Rows[0].Values
	assert.Equal(t, fields.Number(5), got["displayOrder"])
	assert.Equal(t, fields.Text("Org1"), got["orgName"])
}

func TestController_SaveMergesResponse(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.updateOut = `{"id":1,"updatedAt":"2024-05-01T00:00:00Z","displayOrder":7}`
	c := loaded(t, remote)
	key := c.Snapshot().Rows[0].LocalKey
	require.NoError(t, c.BeginEdit(key))
	require.NoError(t, c.SetField(key, "displayOrder", "7"))
	require.NoError(t, c.SetField(key, "orgName", "Org1 renamed"))

	require.NoError(t, c.Save(context.Background(), key))
	assert.JSONEq(t,
		`{"orgName":"Org1 renamed","orgCode":"001","srcServiceType":"CARD","suggestionOrgId":10,"displayOrder":7}`,
		string(remote.updated["1"]))

	snap := c.Snapshot()
	assert.Equal(t, editstate.Viewing, snap.State)
	assert.Equal(t, fields.Text("Org1 renamed"), snap.Rows[0].Values["orgName"])
	assert.Equal(t, "2024-05-01T00:00:00Z", snap.Rows[0].UpdatedAt)
	assert.Equal(t, key, snap.Rows[0].LocalKey)
}

func TestController_SaveValidatesWithSaveRules(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := loaded(t, remote)
	key := c.Snapshot().Rows[0].LocalKey
	require.NoError(t, c.BeginEdit(key))
	require.NoError(t, c.SetField(key, "displayOrder", ""))

	err := c.Save(context.Background(), key)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Result.Violations, 1)
	assert.Equal(t, "displayOrder", verr.Result.Violations[0].Field)
	assert.Empty(t, remote.updated)
}

func TestController_FailedSaveKeepsEditOpen(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.updateErr = errors.New("502 bad gateway")
	c := loaded(t, remote)
	key := c.Snapshot().Rows[0].LocalKey
	require.NoError(t, c.BeginEdit(key))
	require.NoError(t, c.SetField(key, "displayOrder", "9"))

	err := c.Save(context.Background(), key)
	assert.ErrorIs(t, err, ErrRemote)

	snap := c.Snapshot()
	assert.Equal(t, editstate.Editing, snap.State)
	require.NotNil(t, snap.Working)
	assert.Equal(t, fields.Number(9), snap.Working.Values["displayOrder"])
	assert.Equal(t, fields.Number(1), snap.Rows[0].Values["displayOrder"])
	assert.Empty(t, snap.InFlight)
}

func TestController_ConcurrentSaveIsBusy(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := loaded(t, remote)
	key := c.Snapshot().Rows[0].LocalKey
	require.NoError(t, c.BeginEdit(key))

	remote.block = make(chan struct{})
	remote.entered = make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() { done <- c.Save(context.Background(), key) }()
	<-remote.entered

	assert.ErrorIs(t, c.Save(context.Background(), key), ErrBusy)
	assert.ErrorIs(t, c.Delete(context.Background(), key), ErrBusy)
	assert.Equal(t, OpSave, c.Snapshot().InFlight["1"])

	assert.ErrorIs(t, c.SetField(key, "displayOrder", "8"), ErrBusy)
	assert.ErrorIs(t, c.Select(key, "Org9"), ErrBusy)
	assert.ErrorIs(t, c.CancelEdit(key), ErrBusy)

	close(remote.block)
	require.NoError(t, <-done)
	snap := c.Snapshot()
	assert.Empty(t, snap.InFlight)
	assert.Equal(t, editstate.Viewing, snap.State)
	assert.Equal(t, fields.Number(1), snap.Rows[0].Values["displayOrder"])
}

func TestController_ConcurrentSubmitIsBusy(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := newController(t, recordSchema(), remote)
	row := c.Add()
	for name, raw := range map[string]string{"name": "a", "code": "b", "type": "CARD", "orderId": "3"} {
		require.NoError(t, c.SetField(row.LocalKey, name, raw))
	}

	remote.block = make(chan struct{})
	remote.entered = make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-remote.entered

	assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.Reload(context.Background(), ""), ErrBusy)
	assert.True(t, c.Snapshot().Busy)

	close(remote.block)
	require.NoError(t, <-done)
	assert.False(t, c.Snapshot().Busy)
}

func TestController_Delete(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.deleteErr = errors.New("boom")
	c := loaded(t, remote)
	key := c.Snapshot().Rows[0].LocalKey

	assert.ErrorIs(t, c.Delete(context.Background(), key), ErrRemote)
	assert.Len(t, c.Snapshot().Rows, 2, "failed remote delete keeps the row")

	remote.deleteErr = nil
	require.NoError(t, c.BeginEdit(key))
	require.NoError(t, c.Delete(context.Background(), key))
	snap := c.Snapshot()
	assert.Len(t, snap.Rows, 1)
	assert.Equal(t, "2", snap.Rows[0].RemoteID)
	assert.Equal(t, editstate.Viewing, snap.State)
	assert.Equal(t, []string{"1"}, remote.deleted)

	unsaved := c.Add()
	require.NoError(t, c.Delete(context.Background(), unsaved.LocalKey))
	assert.Len(t, c.Snapshot().Rows, 1)
	assert.Equal(t, []string{"1"}, remote.deleted, "unsaved rows never reach the backend")
}

func TestController_RemoveOnlyUnsavedRows(t *testing.T) {
	t.Parallel()

	c := loaded(t, newFakeRemote())
	saved := c.Snapshot().Rows[1].LocalKey
	require.NoError(t, c.BeginEdit(saved))
	assert.ErrorIs(t, c.Remove(saved), ErrReadOnly)

	unsaved := c.Add()
	require.NoError(t, c.Remove(unsaved.LocalKey))

	snap := c.Snapshot()
	assert.Len(t, snap.Rows, 2)
	assert.Equal(t, editstate.Editing, snap.State)
	assert.ErrorIs(t, c.Remove(unsaved.LocalKey), rowset.ErrRowNotFound)
}

func TestController_ReloadReplacesRows(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := loaded(t, remote)
	before := c.Snapshot().Rows
	require.NoError(t, c.BeginEdit(before[0].LocalKey))

	remote.listing = `[{"id":2,"orgName":"Org2"},{"id":1,"orgName":"Org1"}]`
	require.NoError(t, c.Reload(context.Background(), " CARD "))

	snap := c.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "2", snap.Rows[0].RemoteID)
	assert.Equal(t, "1", snap.Rows[1].RemoteID)
	for _, r := range snap.Rows {
		for _, old := range before {
			assert.NotEqual(t, old.LocalKey, r.LocalKey, "local keys are never reused")
		}
	}
	assert.Equal(t, editstate.Viewing, snap.State)
	assert.Equal(t, "CARD", snap.Filter)
	assert.Equal(t, "CARD", remote.filters[len(remote.filters)-1])
}

func TestController_ReloadFailureKeepsRows(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	c := loaded(t, remote)
	remote.listErr = errors.New("down")

	assert.ErrorIs(t, c.Reload(context.Background(), ""), ErrRemote)
	assert.Len(t, c.Snapshot().Rows, 2)
}

func TestController_PublishesSyncEvents(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(logrus.New())
	var events []*SyncEvent
	bus.Subscribe(func(e *SyncEvent) { events = append(events, e) })

	remote := newFakeRemote()
	remote.listing = twoOrgs
	remote.deleteErr = errors.New("boom")
	c := newController(t, orgSchema(), remote, func(o *Options) { o.Events = bus })
	require.NoError(t, c.Reload(context.Background(), ""))
	_ = c.Delete(context.Background(), c.Snapshot().Rows[0].LocalKey)

	require.Len(t, events, 2)
	assert.Equal(t, OpReload, events[0].Op)
	assert.Equal(t, 2, events[0].Rows)
	assert.NoError(t, events[0].Err)
	assert.Equal(t, OpDelete, events[1].Op)
	assert.Equal(t, "1", events[1].RemoteID)
	assert.Error(t, events[1].Err)
	assert.Equal(t, "suggestion-orgs", events[1].Table)
}

func TestController_NoticesAreBounded(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	remote.listErr = errors.New("down")
	c := newController(t, orgSchema(), remote)
	for i := 0; i < maxNotices+5; i++ {
		_ = c.Reload(context.Background(), "")
	}
	assert.Len(t, c.Notices(), maxNotices)
	c.ClearNotices()
	assert.Empty(t, c.Notices())
}
