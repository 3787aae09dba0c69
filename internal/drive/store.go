// Package drive stores report artifacts and rendered documents on a remote
// object store, keyed by a deterministic per-student path scheme.
package drive

import (
	"context"
	"errors"
	"io"
)

// ErrNoCredential is returned when the teacher has no storage credential
// configured. Callers report it and abort before any mutation.
var ErrNoCredential = errors.New("no drive credential configured for teacher")

// Store is the remote artifact storage contract. Implementations must treat
// WriteOver as create-or-overwrite so callers see a single atomic replace.
type Store interface {
	// Read fetches the object at path. The bool reports whether the
	// object exists; a missing object is not an error.
	Read(ctx context.Context, path string) ([]byte, bool, error)

	// WriteOver creates or overwrites the object at path.
	WriteOver(ctx context.Context, path string, data []byte) error

	// Upload streams a rendered document to path.
	Upload(ctx context.Context, path string, r io.Reader, size int64) error

	// List returns object paths under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
