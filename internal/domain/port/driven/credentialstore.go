package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// WASHDESK_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set WASHDESK_SECRET_KEY")

// CredentialStore defines the driven port for persisting the signed-in
// credential across process restarts. The adapter layer is responsible for
// encryption; this interface operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Load returns the persisted credential, or a zero Credential if none is stored.
	Load(ctx context.Context) (model.Credential, error)

	// Save stores or replaces the persisted credential.
	Save(ctx context.Context, cred model.Credential) error

	// Delete removes the persisted credential. Deleting when nothing is stored is not an error.
	Delete(ctx context.Context) error
}
