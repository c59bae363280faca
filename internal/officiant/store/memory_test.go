package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trouwen/internal/officiant/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

func newOfficiant(t *testing.T, marriage string, primary bool) *models.Officiant {
	t.Helper()
	o, err := models.NewOfficiant(id.NewOfficiantID(), models.Input{Marriage: marriage, Primary: primary}, "002220647", id.ApplicationID{}, time.Now())
	require.NoError(t, err)
	return o
}

func TestInMemoryPrimaryPerMarriage(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	marriage := uuid.NewString()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 20 {
		o := newOfficiant(t, marriage, true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create(ctx, o); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)

	t.Run("another marriage may have its own primary", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, newOfficiant(t, uuid.NewString(), true)))
	})

	t.Run("updating the current primary keeps it", func(t *testing.T) {
		marriageID, err := id.ParseMarriageID(marriage)
		require.NoError(t, err)
		list, err := s.List(ctx, models.Filter{Marriage: marriageID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		list[0].Status = "Geaccepteerd"
		require.NoError(t, s.Update(ctx, list[0]))
	})

	t.Run("promoting a second officiant fails", func(t *testing.T) {
		o := newOfficiant(t, marriage, false)
		require.NoError(t, s.Create(ctx, o))
		o.Primary = true
		assert.ErrorIs(t, s.Update(ctx, o), sentinel.ErrAlreadyUsed)
	})
}
