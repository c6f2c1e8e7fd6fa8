package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/value-engine/generic"
	"github.com/warp/value-engine/generic/store"
)

func TestMemory_Attributes(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	a, err := m.SaveAttribute(ctx, generic.Attribute{Name: "effort", ConstraintType: generic.ConstraintDuration})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := m.GetAttribute(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "effort", got.Name)

	_, err = m.GetAttribute(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrAttributeNotFound)

	_, err = m.SaveAttribute(ctx, generic.Attribute{Name: "effort"})
	assert.ErrorIs(t, err, generic.ErrDuplicateAttribute)

	a.Name = "effort"
	_, err = m.SaveAttribute(ctx, a)
	assert.NoError(t, err, "re-saving the same attribute is not a conflict")

	list, err := m.ListAttributes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemory_Records(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	a, err := m.SaveAttribute(ctx, generic.Attribute{Name: "done", ConstraintType: generic.ConstraintPercentage})
	require.NoError(t, err)

	_, err = m.AppendRecord(ctx, generic.Record{AttributeID: "missing", Value: generic.Text("1")})
	assert.ErrorIs(t, err, generic.ErrAttributeNotFound)

	for _, v := range []string{"0.5", "0.25"} {
		_, err := m.AppendRecord(ctx, generic.Record{AttributeID: a.ID, Value: generic.Text(v)})
		require.NoError(t, err)
	}
	records, err := m.ListRecords(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Value.Equal(generic.Text("0.5")))
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestMemory_UsersUpsertByEmail(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	first, err := m.SaveUser(ctx, generic.DirectoryUser{Name: "Anna", Email: "anna@x.com"})
	require.NoError(t, err)
	second, err := m.SaveUser(ctx, generic.DirectoryUser{Name: "Anna N.", Email: "ANNA@x.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = m.SaveUser(ctx, generic.DirectoryUser{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)

	users, err := m.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Anna N.", users[0].Name)
}
