package domain

import (
	"context"
	"time"
)

// SourceClient fetches raw product candidates from one retailer. Clients
// may return an empty slice or an error; callers treat both as "no data
// from this source".
type SourceClient interface {
	Source() Source
	FetchCandidates(ctx context.Context, term string) ([]RawCandidate, error)
}

// FallbackProvider supplies synthetic reference offers for a (source, term)
// pair when the real source yields nothing. Providers return nil for terms
// they have no reference price for.
type FallbackProvider interface {
	Offers(source Source, term string) []Offer
}

// SnapshotStore persists price snapshots across restarts.
type SnapshotStore interface {
	Load(ctx context.Context) ([]PriceSnapshot, error)
	Save(ctx context.Context, snapshot PriceSnapshot) error
	SaveLastUpdate(ctx context.Context, at time.Time) error
	LastUpdate(ctx context.Context) (*time.Time, error)
}
