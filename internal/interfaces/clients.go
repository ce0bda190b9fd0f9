// Package interfaces defines collaborator contracts for Opening Bell
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/openbell/internal/models"
)

// MarketDataClient provides access to price, news, and earnings data
type MarketDataClient interface {
	// GetDailyChart retrieves the most recent daily closes for a symbol,
	// newest last, along with the symbol's display name and latest volume
	GetDailyChart(ctx context.Context, symbol string, days int) (*models.ChartResult, error)

	// GetRecentNews retrieves news published within the trailing window,
	// in the order the provider returns it
	GetRecentNews(ctx context.Context, symbol string, window time.Duration) ([]models.NewsItem, error)

	// GetLatestEarnings retrieves the most recent earnings snapshot for a
	// symbol, or nil when the provider has none
	GetLatestEarnings(ctx context.Context, symbol string) (*models.EarningsSnapshot, error)
}

// GenerativeClient produces model text from a prompt. Calls are fallible
// and single request/response; no streaming.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// EmailSender delivers a finished digest to a recipient
type EmailSender interface {
	SendDigest(ctx context.Context, recipient, subject, body string) error
}
