package interfaces

import (
	"context"

	"github.com/bobmcallan/openbell/internal/models"
)

// DigestService generates the full digest document for one user's records
type DigestService interface {
	// GenerateDigest produces the ordered digest text for the given
	// records. Record order is preserved in the output. Model and data
	// failures degrade to placeholders or omitted sections; they are
	// never returned as errors.
	GenerateDigest(ctx context.Context, records []*models.StockRecord, userName string) (string, error)

	// MarketOverview returns the memoized macro overview, generating it
	// on first call. Returns an error when any index is missing data;
	// callers omit the section in that case.
	MarketOverview(ctx context.Context) (*models.MarketOverview, error)
}

// MarketService builds fully-fetched stock records for a watchlist
type MarketService interface {
	// CollectRecords fetches price, news, and earnings for each symbol.
	// A symbol whose fetch fails is skipped; it never aborts the rest.
	CollectRecords(ctx context.Context, symbols []string) []*models.StockRecord
}

// RosterService loads digest recipients and their watchlists
type RosterService interface {
	LoadUsers() ([]models.User, error)
}
