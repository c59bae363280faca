package testutil

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	id "trouwen/pkg/domain"
	"trouwen/pkg/requestcontext"
)

// DevApplication is the caller most handler tests act as.
var DevApplication = requestcontext.Caller{
	ApplicationID: id.ApplicationID(uuid.MustParse("5f8b4f0e-6a55-4cf4-9c0e-6c0b2a5f1a01")),
	ClientID:      "trouwen-dev",
	RSIN:          "0022.20.647",
}

// WithCaller stores the authenticated application on the request, the way
// the auth middleware would.
func WithCaller(req *http.Request, caller requestcontext.Caller) *http.Request {
	return req.WithContext(requestcontext.WithApplication(req.Context(), caller))
}

// WithTime pins the request clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
