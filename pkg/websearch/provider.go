// Package websearch contains the external search adapters the agent can
// escalate to when the local corpus has no answer. Adapters degrade to an
// empty result set on failure so a broken provider never fails a turn.
package websearch

import (
	"context"

	"github.com/yuw136/paper-helper/pkg/store"
)

// Provider is a pluggable external search backend.
type Provider interface {
	// Name returns the source tag the provider stamps on its documents.
	Name() string
	Search(ctx context.Context, query string, limit int) ([]store.Document, error)
}
