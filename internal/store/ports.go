// Package store defines the ports implemented by the record backends.
package store

import (
	"context"
	"errors"

	"glptrack/internal/core"
)

// ErrUnavailable marks storage that cannot be created or opened, e.g. a data
// directory without write permission. A table that simply does not exist yet
// is not unavailable; listing it yields an empty slice.
var ErrUnavailable = errors.New("storage unavailable")

// Ports for outbound adapters. Append validates the record before writing and
// returns a backend-specific row reference. List returns every row in storage
// order (entry order, not necessarily date order).
type (
	InjectionAppender interface {
		AppendInjection(ctx context.Context, r core.InjectionRecord) (rowRef string, err error)
	}

	InjectionLister interface {
		ListInjections(ctx context.Context) ([]core.InjectionRecord, error)
	}

	SideEffectAppender interface {
		AppendSideEffect(ctx context.Context, r core.SideEffectRecord) (rowRef string, err error)
	}

	SideEffectLister interface {
		ListSideEffects(ctx context.Context) ([]core.SideEffectRecord, error)
	}
)
