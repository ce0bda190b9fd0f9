// Package market builds fully-fetched stock records for a digest run
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/interfaces"
	"github.com/bobmcallan/openbell/internal/models"
)

const (
	// DefaultNewsWindow bounds how old an article may be and still
	// appear in a digest
	DefaultNewsWindow = 7 * 24 * time.Hour

	// DefaultEarningsWindow bounds how old an earnings report may be
	// and still count as "recent"
	DefaultEarningsWindow = 24 * time.Hour
)

// Service fetches per-symbol market data and assembles StockRecords.
// Each symbol is independent: a fetch failure skips that symbol and the
// run continues.
type Service struct {
	client         interfaces.MarketDataClient
	logger         *common.Logger
	newsWindow     time.Duration
	earningsWindow time.Duration
	now            func() time.Time
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithNewsWindow sets the news recency window
func WithNewsWindow(window time.Duration) ServiceOption {
	return func(s *Service) {
		if window > 0 {
			s.newsWindow = window
		}
	}
}

// WithEarningsWindow sets the earnings recency window
func WithEarningsWindow(window time.Duration) ServiceOption {
	return func(s *Service) {
		if window > 0 {
			s.earningsWindow = window
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithNow replaces the wall clock, for tests
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a market data collection service
func NewService(client interfaces.MarketDataClient, opts ...ServiceOption) *Service {
	s := &Service{
		client:         client,
		logger:         common.NewSilentLogger(),
		newsWindow:     DefaultNewsWindow,
		earningsWindow: DefaultEarningsWindow,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CollectRecords builds one StockRecord per symbol, in input order.
// Symbols whose price data cannot be fetched are skipped with a warning.
// News and earnings failures degrade to an empty section for that stock.
func (s *Service) CollectRecords(ctx context.Context, symbols []string) []*models.StockRecord {
	records := make([]*models.StockRecord, 0, len(symbols))
	for _, symbol := range symbols {
		rec, err := s.collectOne(ctx, symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol")
			continue
		}
		records = append(records, rec)
	}

	s.logger.Info().Int("requested", len(symbols)).Int("collected", len(records)).Msg("Stock data collected")

	return records
}

// collectOne fetches price, news, and earnings for a single symbol.
// Price data is mandatory; news and earnings are best effort.
func (s *Service) collectOne(ctx context.Context, symbol string) (*models.StockRecord, error) {
	chart, err := s.client.GetDailyChart(ctx, symbol, 2)
	if err != nil {
		return nil, fmt.Errorf("chart fetch failed: %w", err)
	}
	if len(chart.Bars) < 2 {
		return nil, fmt.Errorf("need 2 daily closes, got %d", len(chart.Bars))
	}

	last := chart.Bars[len(chart.Bars)-1]
	prev := chart.Bars[len(chart.Bars)-2]
	if prev.Close == 0 {
		return nil, fmt.Errorf("previous close is zero")
	}

	rec := &models.StockRecord{
		Symbol:        symbol,
		Name:          chart.Name,
		CurrentPrice:  last.Close,
		PreviousClose: prev.Close,
		ChangePct:     (last.Close - prev.Close) / prev.Close * 100,
		Volume:        chart.Volume,
	}

	news, err := s.client.GetRecentNews(ctx, symbol, s.newsWindow)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("News fetch failed")
	} else {
		rec.News = news
	}

	earnings, err := s.client.GetLatestEarnings(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Earnings fetch failed")
	} else if s.isRecentEarnings(earnings) {
		rec.Earnings = earnings
	}

	return rec, nil
}

// isRecentEarnings reports whether the snapshot's report date falls
// inside the earnings window. Snapshots without a report date never
// qualify.
func (s *Service) isRecentEarnings(earnings *models.EarningsSnapshot) bool {
	if earnings == nil || earnings.EarningsDate.IsZero() {
		return false
	}
	age := s.now().Sub(earnings.EarningsDate)
	return age >= 0 && age <= s.earningsWindow
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
