package catalog

import (
	"context"

	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

type lister interface {
	ListSellable(ctx context.Context, search string) ([]Event, error)
	ListUpcoming(ctx context.Context) ([]Event, error)
}

// Lookup is the read boundary the conversation core consults. It filters
// to published events and, when the published catalog is empty, can fall
// back to a broader any-status query so demo and empty-catalog
// deployments still have something to show. Production deployments
// should disable the fallback.
type Lookup struct {
	repo          lister
	allowFallback bool
	logger        *logging.Logger
}

// NewLookup builds the lookup boundary.
func NewLookup(repo lister, allowFallback bool, logger *logging.Logger) *Lookup {
	if logger == nil {
		logger = logging.Default()
	}
	return &Lookup{repo: repo, allowFallback: allowFallback, logger: logger}
}

// ListSellableEvents returns the events a buyer may be offered.
// Non-published events only ever appear through the fallback path and
// keep their status so renderers can label them.
func (l *Lookup) ListSellableEvents(ctx context.Context, search string) ([]Event, error) {
	events, err := l.repo.ListSellable(ctx, search)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 || !l.allowFallback {
		return events, nil
	}

	fallback, err := l.repo.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}
	if len(fallback) > 0 {
		l.logger.Warn("catalog: no published events, serving any-status fallback", "count", len(fallback))
	}
	return fallback, nil
}
