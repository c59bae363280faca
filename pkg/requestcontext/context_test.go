package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "trouwen/pkg/domain"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()
	assert.True(t, Application(ctx).IsZero())
	assert.Empty(t, RequestID(ctx))

	fixed := time.Date(2019, 3, 1, 12, 0, 0, 0, time.UTC)
	caller := Caller{ApplicationID: id.NewApplicationID(), ClientID: "trouwplanner", RSIN: "002220647"}

	ctx = WithTime(WithRequestID(WithApplication(ctx, caller), "req-1"), fixed)
	assert.Equal(t, caller, Application(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
}
