package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trouwen/internal/role/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

func newRole(t *testing.T, parent id.RoleID) *models.Role {
	t.Helper()
	in := models.Input{}
	if !parent.IsNil() {
		in.Parent = parent.String()
	}
	r, err := models.NewRole(id.NewRoleID(), in, "002220647", id.ApplicationID{}, time.Now())
	require.NoError(t, err)
	return r
}

func TestInMemoryChildIndex(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	partner := newRole(t, id.RoleID{})
	require.NoError(t, s.Create(ctx, partner))
	witness := newRole(t, partner.ID)
	require.NoError(t, s.Create(ctx, witness))

	t.Run("unknown parent", func(t *testing.T) {
		assert.ErrorIs(t, s.Create(ctx, newRole(t, id.NewRoleID())), sentinel.ErrNotFound)
	})

	t.Run("children are listed by parent", func(t *testing.T) {
		children, err := s.List(ctx, models.Filter{Parent: partner.ID})
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, witness.ID, children[0].ID)
	})

	t.Run("parent with children cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, s.Delete(ctx, partner.ID), sentinel.ErrHasDependents)
	})

	t.Run("moving the child updates the index", func(t *testing.T) {
		other := newRole(t, id.RoleID{})
		require.NoError(t, s.Create(ctx, other))
		witness.Parent = other.ID
		require.NoError(t, s.Update(ctx, witness))

		children, err := s.List(ctx, models.Filter{Parent: partner.ID})
		require.NoError(t, err)
		assert.Empty(t, children)
		require.NoError(t, s.Delete(ctx, partner.ID))
	})

	t.Run("leaf delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, witness.ID))
		assert.ErrorIs(t, s.Delete(ctx, witness.ID), sentinel.ErrNotFound)
	})
}
