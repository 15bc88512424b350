// Package sojourner is the client side of the Sojourner storage backend:
// files are grouped under client-name directories, each upload carries a
// free-text manifest, and every store attempt yields exactly one Outcome.
package sojourner

import "context"

// Client is the boundary with the storage backend. Store must be safe to
// call with a filename that already exists for that client; the collision is
// reported as OutcomeBlobExists, not an error terminating the caller. The
// backend is the single source of truth for collision detection, so two
// negotiations racing on the same name need no in-process locking here.
type Client interface {
	Store(ctx context.Context, clientName, filename string, content []byte, manifest string) Outcome
	ListAllDirectories(ctx context.Context) ([]string, error)
}
