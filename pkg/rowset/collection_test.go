package rowset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
)

func testSchema() *fields.Schema {
	return fields.NewSchema("orgs",
		fields.Descriptor{Name: "orgName", Kind: fields.KindString, Rule: fields.RuleRequired},
		fields.Descriptor{Name: "orgCode", Kind: fields.KindString, Rule: fields.RuleRequired, Derived: true},
		fields.Descriptor{Name: "srcServiceType", Kind: fields.KindString, Rule: fields.RuleRequired, Derived: true},
		fields.Descriptor{Name: "displayOrder", Kind: fields.KindInt, Rule: fields.RuleOptionalNonNegative},
	).WithKeyField("orgName")
}

func TestCollection_AddAssignsMonotonicKeys(t *testing.T) {
	t.Parallel()

	c := New(testSchema())
	a := c.Add()
	b := c.Add()
	require.True(t, c.Remove(b.LocalKey))
	d := c.Add()

	assert.Equal(t, 0, a.LocalKey)
	assert.Equal(t, 1, b.LocalKey)
	assert.Equal(t, 2, d.LocalKey, "keys are never reused")
	assert.False(t, a.Persisted())
	assert.False(t, a.Values["displayOrder"].Valid)
	assert.Equal(t, 2, c.Len())
}

func TestCollection_RemoveMissingIsNoop(t *testing.T) {
	t.Parallel()

	c := New(testSchema())
	c.Add()
	assert.False(t, c.Remove(42))
	assert.Equal(t, 1, c.Len())
}

func TestCollection_SetField(t *testing.T) {
	t.Parallel()

	c := New(testSchema())
	a := c.Add()
	b := c.Add()

	require.NoError(t, c.SetField(b.LocalKey, "orgName", fields.Text("Org2")))
	require.NoError(t, c.SetField(a.LocalKey, "displayOrder", fields.Number(4)))

	err := c.SetField(a.LocalKey, "orgCode", fields.Text("hand-typed"))
	assert.ErrorIs(t, err, fields.ErrDerivedField)
	assert.ErrorIs(t, c.SetField(99, "orgName", fields.Text("x")), ErrRowNotFound)

	rows := c.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, a.LocalKey, rows[0].LocalKey, "order is preserved across edits")
	assert.Equal(t, fields.Number(4), rows[0].Values["displayOrder"])
	assert.Equal(t, fields.Text("Org2"), rows[1].Values["orgName"])
	assert.False(t, rows[0].Values["orgCode"].Valid)
}

func TestCollection_ApplyDerivation(t *testing.T) {
	t.Parallel()

	c := New(testSchema())
	a := c.Add()
	require.NoError(t, c.SetField(a.LocalKey, "orgName", fields.Text("Shinhan Bank")))
	require.NoError(t, c.SetField(a.LocalKey, "displayOrder", fields.Number(2)))

	require.NoError(t, c.ApplyDerivation(a.LocalKey, fields.Values{
		"orgCode":        fields.Text("BANK1"),
		"srcServiceType": fields.Text("BANK"),
		"orgName":        fields.Text("not derived, ignored"),
	}))

	got, ok := c.Get(a.LocalKey)
	require.True(t, ok)
	assert.Equal(t, fields.Text("Shinhan Bank"), got.Values["orgName"])
	assert.Equal(t, fields.Text("BANK1"), got.Values["orgCode"])
	assert.Equal(t, fields.Text("BANK"), got.Values["srcServiceType"])
	assert.Equal(t, fields.Number(2), got.Values["displayOrder"])
}

func TestCollection_ReplaceAll(t *testing.T) {
	t.Parallel()

	c := New(testSchema())
	c.Add()
	c.Add()

	c.ReplaceAll([]Row{
		{RemoteID: "7", Values: fields.Values{"orgName": fields.Text("B")}},
		{RemoteID: "3", Values: fields.Values{"orgName": fields.Text("A")}},
	})

	rows := c.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "7", rows[0].RemoteID)
	assert.Equal(t, "3", rows[1].RemoteID)
	assert.Equal(t, 2, rows[0].LocalKey)
	assert.Equal(t, 3, rows[1].LocalKey)

	found, ok := c.FindRemote("3")
	require.True(t, ok)
	assert.Equal(t, 3, found.LocalKey)
}

func TestCollection_Replace_RemoteIDImmutable(t *testing.T) {
	t.Parallel()

	c := New(testSchema())
	c.ReplaceAll([]Row{{RemoteID: "7", Values: fields.Values{}}})
	row := c.Rows()[0]

	row.Values["orgName"] = fields.Text("renamed")
	require.NoError(t, c.Replace(row))

	row.RemoteID = "8"
	assert.ErrorIs(t, c.Replace(row), ErrRemoteIDChanged)
}

func TestCollection_ReturnsCopies(t *testing.T) {
	t.Parallel()

	c := New(testSchema())
	a := c.Add()
	a.Values["orgName"] = fields.Text("leaked")

	got, _ := c.Get(a.LocalKey)
	assert.False(t, got.Values["orgName"].Valid)
}
