package driven

import (
	"context"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

// Session store keys, kept identical to the browser console's localStorage keys.
const (
	SessionKeyToken    = "admin_token"
	SessionKeyUsername = "admin_username"
)

// SessionStore defines the driven port for the persistent operator session.
// It survives process restarts and is read once at startup.
type SessionStore interface {
	// Load returns the persisted session. A missing session is the zero
	// Session and a nil error.
	Load(ctx context.Context) (model.Session, error)

	// Save persists token and username, replacing any previous session.
	Save(ctx context.Context, session model.Session) error

	// Clear removes the persisted session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
