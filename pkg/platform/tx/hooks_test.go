package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCommit(t *testing.T) {
	t.Run("runs immediately outside a transaction", func(t *testing.T) {
		ran := false
		AfterCommit(context.Background(), func() { ran = true })
		assert.True(t, ran)
	})

	t.Run("waits for the memory transaction to succeed", func(t *testing.T) {
		var order []string
		err := NewMemoryRunner().RunInTx(context.Background(), func(ctx context.Context) error {
			AfterCommit(ctx, func() { order = append(order, "hook") })
			order = append(order, "write")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"write", "hook"}, order)
	})

	t.Run("dropped on rollback", func(t *testing.T) {
		ran := false
		err := NewMemoryRunner().RunInTx(context.Background(), func(ctx context.Context) error {
			AfterCommit(ctx, func() { ran = true })
			return errors.New("issuer down")
		})
		require.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("nested calls defer to the outer transaction", func(t *testing.T) {
		r := NewMemoryRunner()
		ran := false
		err := r.RunInTx(context.Background(), func(ctx context.Context) error {
			if err := r.RunInTx(ctx, func(inner context.Context) error {
				AfterCommit(inner, func() { ran = true })
				return nil
			}); err != nil {
				return err
			}
			assert.False(t, ran, "hook must wait for the outer commit")
			return errors.New("outer failed")
		})
		require.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("hooks may start a new transaction", func(t *testing.T) {
		r := NewMemoryRunner()
		ran := false
		err := r.RunInTx(context.Background(), func(ctx context.Context) error {
			AfterCommit(ctx, func() {
				_ = r.RunInTx(context.Background(), func(context.Context) error {
					ran = true
					return nil
				})
			})
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})
}
